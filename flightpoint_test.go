package fmsim

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestNewFlightPointUnset(t *testing.T) {
	fp := NewFlightPoint()
	for _, f := range allFields {
		if isSet(fp.value(f)) {
			t.Fatalf("field %b of a new flight point is set", f)
		}
	}
	if fp.Defined(FieldAltitude | FieldMass) {
		t.Fatal("new flight point claims defined fields")
	}
	fp.Altitude = 5000
	fp.Mass = 70000
	if !fp.Defined(FieldAltitude | FieldMass) {
		t.Fatal("set fields not reported as defined")
	}
}

func TestFlightPointAbsolute(t *testing.T) {
	start := NewFlightPoint()
	start.Time = 100
	start.Altitude = 2000
	start.GroundDistance = 50000

	target := NewFlightPoint()
	target.Time = 600
	target.Altitude = 3000
	target.GroundDistance = 10000
	target.Relative = FieldTime | FieldAltitude | FieldGroundDistance

	abs := target.absolute(start)
	if !floats.EqualWithinAbs(abs.Time, 700, 1e-12) {
		t.Fatalf("relative time resolved to %f", abs.Time)
	}
	if !floats.EqualWithinAbs(abs.Altitude, 5000, 1e-12) {
		t.Fatalf("relative altitude resolved to %f", abs.Altitude)
	}
	if !floats.EqualWithinAbs(abs.GroundDistance, 60000, 1e-12) {
		t.Fatalf("relative distance resolved to %f", abs.GroundDistance)
	}
	if abs.Relative != 0 {
		t.Fatal("resolved point still carries relative flags")
	}
	// The input is untouched.
	if target.Relative == 0 || target.Altitude != 3000 {
		t.Fatal("absolute() mutated its receiver")
	}
}

func TestFlightPointAbsoluteUnsetBase(t *testing.T) {
	start := NewFlightPoint() // no ground distance
	target := NewFlightPoint()
	target.GroundDistance = 10000
	target.Relative = FieldGroundDistance
	abs := target.absolute(start)
	if !floats.EqualWithinAbs(abs.GroundDistance, 10000, 1e-12) {
		t.Fatalf("unset base must count as zero, got %f", abs.GroundDistance)
	}
}

func TestFlightPointRepairFrom(t *testing.T) {
	fp := NewFlightPoint()
	fp.Altitude = 5000
	fp.Mass = 70000

	next := NewFlightPoint()
	next.Altitude = 9999 // must not win over the set value
	next.TrueAirspeed = 150
	next.SFC = 1.5e-5
	next.EngineSetting = SettingClimb

	fp.repairFrom(next)
	if fp.Altitude != 5000 {
		t.Fatal("repairFrom overwrote a set field")
	}
	if fp.TrueAirspeed != 150 || fp.SFC != 1.5e-5 {
		t.Fatal("repairFrom did not fill unset fields")
	}
	if fp.EngineSetting != SettingClimb {
		t.Fatal("repairFrom did not fill the engine setting")
	}
}

func TestFlightPathAccounting(t *testing.T) {
	a := NewFlightPoint()
	a.Time = 0
	a.Mass = 70000
	a.GroundDistance = 0
	b := NewFlightPoint()
	b.Time = 3600
	b.Mass = 67500
	b.GroundDistance = 800e3
	path := FlightPath{a, b}

	if path.Duration() != 3600 {
		t.Fatalf("duration %f", path.Duration())
	}
	if path.GroundDistance() != 800e3 {
		t.Fatalf("distance %f", path.GroundDistance())
	}
	if path.FuelBurned() != 2500 {
		t.Fatalf("fuel %f", path.FuelBurned())
	}
}

func TestLerpPoint(t *testing.T) {
	a := NewFlightPoint()
	a.Time = 0
	a.Altitude = 1000
	b := NewFlightPoint()
	b.Time = 10
	b.Altitude = 2000
	b.Mass = 70000 // unset on a: the defined side wins
	mid := lerpPoint(a, b, 0.5)
	if !floats.EqualWithinAbs(mid.Time, 5, 1e-12) || !floats.EqualWithinAbs(mid.Altitude, 1500, 1e-12) {
		t.Fatalf("midpoint t=%f h=%f", mid.Time, mid.Altitude)
	}
	if mid.Mass != 70000 {
		t.Fatalf("half-defined field interpolated to %f", mid.Mass)
	}
	if !math.IsNaN(mid.SFC) {
		t.Fatal("doubly unset field should stay unset")
	}
}
