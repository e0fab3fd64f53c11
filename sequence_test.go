package fmsim

import (
	"strings"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/gonum/floats"
)

func taxiPart(duration float64) *Taxi {
	cfg := testModels()
	cfg.Target = NewFlightPoint()
	cfg.Target.Time = duration
	cfg.Target.Relative = FieldTime
	return NewTaxi(cfg)
}

func massTargetPart(mass float64) *MassTarget {
	cfg := testModels()
	cfg.Target = NewFlightPoint()
	cfg.Target.Mass = mass
	return NewMassTarget(cfg)
}

func climbPart(altitude float64) *AltitudeChange {
	cfg := testModels()
	cfg.Target = NewFlightPoint()
	cfg.Target.Altitude = altitude
	return NewAltitudeChange(cfg)
}

func TestSequenceContinuity(t *testing.T) {
	seq := NewFlightSequence("flight", log.NewNopLogger()).
		Add("taxi_out", taxiPart(120)).
		Add("climb", climbPart(6000))

	start := NewFlightPoint()
	start.Time = 0
	start.Mass = 70000
	start.TrueAirspeed = 150 // rotation speed carried into the climb
	path, err := seq.ComputeFrom(start)
	if err != nil {
		t.Fatalf("sequence failed: %s", err)
	}
	// One continuous timeline: no duplicated joint point, monotonic time,
	// monotonic cumulative fuel.
	for i := 1; i < len(path); i++ {
		if path[i].Time <= path[i-1].Time {
			t.Fatalf("time not increasing at point %d", i)
		}
		if path[i].ConsumedFuel < path[i-1].ConsumedFuel {
			t.Fatalf("consumed fuel decreasing at point %d", i)
		}
	}
	if !floats.EqualWithinAbs(path.Last().Altitude, 6000, 1e-6) {
		t.Fatalf("sequence ended at %f m", path.Last().Altitude)
	}
	// Qualified names flow down to every point.
	if !strings.HasPrefix(path.First().Name, "flight:taxi_out") {
		t.Fatalf("first point named %q", path.First().Name)
	}
	if !strings.HasPrefix(path.Last().Name, "flight:climb") {
		t.Fatalf("last point named %q", path.Last().Name)
	}
	// Cached result.
	if len(seq.LastPath()) != len(path) {
		t.Fatal("LastPath does not match the returned path")
	}
}

func TestSequenceMassBackPropagation(t *testing.T) {
	const tow = 70000.0
	seq := NewFlightSequence("flight", log.NewNopLogger()).
		Add("taxi_out", taxiPart(540)).
		Add("takeoff_weight", massTargetPart(tow)).
		Add("climb", climbPart(6000))

	start := NewFlightPoint()
	start.Time = 0
	start.Mass = 70600 // rough ramp weight guess, corrected by the waypoint
	start.TrueAirspeed = 150
	path, err := seq.ComputeFrom(start)
	if err != nil {
		t.Fatalf("sequence failed: %s", err)
	}
	taxiBurn := 1.5e-5 * 0.3 * 200000 * 540
	// The mass waypoint pins the take-off weight; the points before it are
	// shifted so that the taxi burn stays physical.
	if !floats.EqualWithinAbs(path.First().Mass, tow+taxiBurn, 1e-6) {
		t.Fatalf("ramp mass %f, want %f", path.First().Mass, tow+taxiBurn)
	}
	if !floats.EqualWithinAbs(seq.ConsumedMassBeforeInputWeight(), taxiBurn, 1e-6) {
		t.Fatalf("consumed before input weight %f, want %f", seq.ConsumedMassBeforeInputWeight(), taxiBurn)
	}
	// Total fuel balance holds across the shift.
	if !floats.EqualWithinAbs(path.FuelBurned(), path.Last().ConsumedFuel, 1e-6) {
		t.Fatalf("fuel %f vs consumed %f", path.FuelBurned(), path.Last().ConsumedFuel)
	}
	// Mass is continuous at the waypoint: no step anywhere in the timeline.
	for i := 1; i < len(path); i++ {
		drop := path[i-1].Mass - path[i].Mass
		if drop < 0 || drop > 50 {
			t.Fatalf("mass discontinuity of %f kg at point %d", drop, i)
		}
	}
}

func TestSequenceDelegatedTarget(t *testing.T) {
	seq := NewFlightSequence("climb_phase", log.NewNopLogger()).
		Add("initial", climbPart(3000)).
		Add("final", climbPart(4000)) // overridden by the delegated target
	seq.setTarget(func() FlightPoint {
		fp := NewFlightPoint()
		fp.Altitude = 8000
		return fp
	}())

	path, err := seq.ComputeFrom(climbStart(500, 150, 70000))
	if err != nil {
		t.Fatalf("sequence failed: %s", err)
	}
	if !floats.EqualWithinAbs(path.Last().Altitude, 8000, 1e-6) {
		t.Fatalf("delegated target ignored, ended at %f", path.Last().Altitude)
	}
}

func TestNestedSequences(t *testing.T) {
	inner := NewFlightSequence("departure", log.NewNopLogger()).
		Add("taxi_out", taxiPart(300)).
		Add("takeoff_weight", massTargetPart(70000))
	outer := NewFlightSequence("flight", log.NewNopLogger()).
		Add("departure", inner).
		Add("climb", climbPart(5000))

	start := NewFlightPoint()
	start.Time = 0
	start.Mass = 70500
	start.TrueAirspeed = 150
	path, err := outer.ComputeFrom(start)
	if err != nil {
		t.Fatalf("nested sequence failed: %s", err)
	}
	// Nesting is reflected in the qualified names.
	if !strings.HasPrefix(path.First().Name, "flight:departure:taxi_out") {
		t.Fatalf("first point named %q", path.First().Name)
	}
	// The inner consumed-before-weight bubbles up.
	taxiBurn := 1.5e-5 * 0.3 * 200000 * 300
	if !floats.EqualWithinAbs(outer.ConsumedMassBeforeInputWeight(), taxiBurn, 1e-6) {
		t.Fatalf("outer consumed before input weight %f", outer.ConsumedMassBeforeInputWeight())
	}
}

func TestSequenceEmpty(t *testing.T) {
	seq := NewFlightSequence("empty", log.NewNopLogger())
	if _, err := seq.ComputeFrom(NewFlightPoint()); err == nil {
		t.Fatal("empty sequence should fail")
	}
}
