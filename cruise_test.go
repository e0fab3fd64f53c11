package fmsim

import (
	"errors"
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestCruiseDistance(t *testing.T) {
	cfg := testModels()
	sg := NewCruise(cfg)
	sg.SetTargetGroundDistance(100e3)

	start := climbStart(10000, 230, 65000)
	start.GroundDistance = 5000
	path, err := sg.ComputeFrom(start)
	if err != nil {
		t.Fatalf("cruise failed: %s", err)
	}
	if !sg.TargetReached() {
		t.Fatal("distance target not reached")
	}
	if !floats.EqualWithinAbs(path.Last().GroundDistance, 105e3, 1e-6) {
		t.Fatalf("cruise ended at %f m", path.Last().GroundDistance)
	}
	for i, fp := range path {
		if !floats.EqualWithinAbs(fp.Altitude, 10000, 1e-6) {
			t.Fatalf("altitude drifted to %f at point %d", fp.Altitude, i)
		}
		if !floats.EqualWithinAbs(fp.Thrust, fp.Drag, 1e-6) {
			t.Fatalf("thrust not regulated at point %d", i)
		}
	}
	// Fuel burn against the closed form: constant speed and nearly constant
	// drag, so SFC * D * t is a tight bound.
	d := path.First().Drag
	approx := 1.5e-5 * d * path.Duration()
	if math.Abs(path.FuelBurned()-approx)/approx > 0.02 {
		t.Fatalf("fuel %f too far from closed form %f", path.FuelBurned(), approx)
	}
}

func TestOptimalCruiseHoldsOptimalCL(t *testing.T) {
	cfg := testModels()
	sg := NewOptimalCruise(cfg)
	sg.SetTargetGroundDistance(200e3)

	path, err := sg.ComputeFrom(climbStart(11000, 235, 60000))
	if err != nil {
		t.Fatalf("optimal cruise failed: %s", err)
	}
	clOpt := cfg.Polar.OptimalCL()
	for i, fp := range path {
		if !floats.EqualWithinAbs(fp.CL, clOpt, 5e-3) {
			t.Fatalf("CL %f off optimum at point %d", fp.CL, i)
		}
	}
	// The cruise climbs as fuel burns off.
	if path.Last().Altitude <= path.First().Altitude {
		t.Fatal("optimal cruise should drift up")
	}
	// Mach held.
	ref := path.First().Mach
	for i, fp := range path {
		if !floats.EqualWithinAbs(fp.Mach, ref, 1e-9) {
			t.Fatalf("Mach drifted to %f at point %d", fp.Mach, i)
		}
	}
}

func TestClimbingCruise(t *testing.T) {
	cfg := testModels()
	sg := NewClimbingCruise(cfg)
	sg.SetTargetGroundDistance(800e3)

	start := climbStart(9500, 240, 60000)
	path, err := sg.ComputeFrom(start)
	if err != nil {
		t.Fatalf("climbing cruise failed: %s", err)
	}
	if !sg.TargetReached() {
		t.Fatal("climbing cruise not reached")
	}
	if !floats.EqualWithinAbs(path.GroundDistance(), 800e3, 1.0) {
		t.Fatalf("covered %f m", path.GroundDistance())
	}
	// The chosen flight level must beat cruising at the entry altitude.
	baseline := NewCruise(testModels())
	baseline.SetTargetGroundDistance(800e3)
	basePath, err := baseline.ComputeFrom(start)
	if err != nil {
		t.Fatal(err)
	}
	if path.FuelBurned() > basePath.FuelBurned() {
		t.Fatalf("climbing cruise burned %f, plain cruise %f", path.FuelBurned(), basePath.FuelBurned())
	}
	if path.Last().Altitude <= start.Altitude {
		t.Fatal("expected a higher cruise level")
	}
}

func TestBreguetCruise(t *testing.T) {
	cfg := testModels()
	sg := NewBreguetCruise(cfg, false)
	sg.SetTargetGroundDistance(1000e3)

	start := climbStart(10000, 230, 65000)
	path, err := sg.ComputeFrom(start)
	if err != nil {
		t.Fatalf("breguet cruise failed: %s", err)
	}
	if len(path) != 2 {
		t.Fatalf("closed form cruise has %d points", len(path))
	}
	first, last := path.First(), path.Last()
	k := first.TrueAirspeed * (first.CL / first.CD) / (g0 * first.SFC)
	want := first.Mass * math.Exp(-1000e3/k)
	if !floats.EqualWithinAbs(last.Mass, want, 1e-6) {
		t.Fatalf("end mass %f, want %f", last.Mass, want)
	}
	if !floats.EqualWithinAbs(last.Time-first.Time, 1000e3/230, 1e-6) {
		t.Fatalf("cruise time %f", last.Time-first.Time)
	}
	if !floats.EqualWithinAbs(last.ConsumedFuel, first.Mass-last.Mass, 1e-9) {
		t.Fatalf("consumed fuel %f", last.ConsumedFuel)
	}
}

func TestBreguetCruiseMaxLiftToDrag(t *testing.T) {
	// With the best CL/CD, the same distance must cost less fuel.
	start := climbStart(10000, 230, 65000)

	realized := NewBreguetCruise(testModels(), false)
	realized.SetTargetGroundDistance(1000e3)
	rp, err := realized.ComputeFrom(start)
	if err != nil {
		t.Fatal(err)
	}
	best := NewBreguetCruise(testModels(), true)
	best.SetTargetGroundDistance(1000e3)
	bp, err := best.ComputeFrom(start)
	if err != nil {
		t.Fatal(err)
	}
	if bp.FuelBurned() > rp.FuelBurned() {
		t.Fatalf("best L/D burned %f, realized %f", bp.FuelBurned(), rp.FuelBurned())
	}
}

func TestBreguetCruiseBackwards(t *testing.T) {
	sg := NewBreguetCruise(testModels(), false)
	sg.targetPoint().GroundDistance = 1000 // absolute, behind the start
	start := climbStart(10000, 230, 65000)
	start.GroundDistance = 5000
	if _, err := sg.ComputeFrom(start); !errors.Is(err, ErrUnreachableTarget) {
		t.Fatalf("expected unreachable target, got %v", err)
	}
}
