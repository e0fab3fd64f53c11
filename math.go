package fmsim

import (
	"math"

	"github.com/gonum/floats"
)

// lerp linearly interpolates between a and b; NaN on either side propagates
// only when both are NaN, otherwise the defined value wins.
func lerp(a, b, t float64) float64 {
	if math.IsNaN(a) {
		return b
	}
	if math.IsNaN(b) {
		return a
	}
	return a + t*(b-a)
}

// lerpPoint interpolates every numeric field between two flight points.
// Non-numeric fields are taken from b.
func lerpPoint(a, b FlightPoint, t float64) FlightPoint {
	out := b
	out.Time = lerp(a.Time, b.Time, t)
	out.Altitude = lerp(a.Altitude, b.Altitude, t)
	out.Mass = lerp(a.Mass, b.Mass, t)
	out.TrueAirspeed = lerp(a.TrueAirspeed, b.TrueAirspeed, t)
	out.EquivalentAirspeed = lerp(a.EquivalentAirspeed, b.EquivalentAirspeed, t)
	out.Mach = lerp(a.Mach, b.Mach, t)
	out.GroundDistance = lerp(a.GroundDistance, b.GroundDistance, t)
	out.Thrust = lerp(a.Thrust, b.Thrust, t)
	out.Drag = lerp(a.Drag, b.Drag, t)
	out.CL = lerp(a.CL, b.CL, t)
	out.CD = lerp(a.CD, b.CD, t)
	out.ThrustRate = lerp(a.ThrustRate, b.ThrustRate, t)
	out.SFC = lerp(a.SFC, b.SFC, t)
	out.ConsumedFuel = lerp(a.ConsumedFuel, b.ConsumedFuel, t)
	return out
}

// safeAsin is the arcsine clamped onto [-1, 1], so that a force imbalance
// slightly beyond the vertical does not turn into NaN.
func safeAsin(x float64) float64 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	return math.Asin(x)
}

// nearZero reports a value indistinguishable from zero.
func nearZero(v float64) bool {
	return floats.EqualWithinAbs(v, 0, 1e-12)
}

// floorToFlightLevel rounds an altitude in meters down to a flight level.
func floorToFlightLevel(altitude float64) float64 {
	return math.Floor(altitude/flightLevel) * flightLevel
}
