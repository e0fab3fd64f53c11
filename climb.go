package fmsim

import (
	"fmt"
	"math"
)

// AltitudeChange is the climb/descent segment: manual thrust, zero
// along-track acceleration, flight path angle from the force balance,
// terminated on an altitude target. The target may be the OptimalAltitude or
// OptimalFlightLevel sentinel, in which case it is recomputed at every step
// from the current mass and Mach number.
type AltitudeChange struct {
	segment
	speedLaw SpeedLaw
}

// NewAltitudeChange returns a climb or descent segment. A zero ThrustRate
// defaults to full thrust; descents want a low rate instead.
func NewAltitudeChange(cfg SegmentConfig) *AltitudeChange {
	cfg = cfg.withDefaults("altitude_change", SettingClimb, fmsimConfig().climbTimeStep)
	if cfg.ThrustRate == 0 {
		cfg.ThrustRate = 1
	}
	sg := &AltitudeChange{segment: newSegment(cfg), speedLaw: cfg.SpeedLaw}
	sg.thrust = manualThrust{cfg.ThrustRate}
	sg.lift = airborneLift{}
	return sg
}

// ComputeFrom implements the FlightPart interface.
func (sg *AltitudeChange) ComputeFrom(start FlightPoint) (FlightPath, error) {
	sg.resolveTarget(start)
	if !isSet(sg.target.Altitude) {
		return nil, fmt.Errorf("%w: %s has no altitude target", ErrIncompleteFlightPoint, sg.name)
	}
	fp := start
	fp.Relative = 0
	if err := sg.complete(&fp); err != nil {
		return nil, err
	}
	kin := &climbKinematics{seg: sg}
	switch sg.speedLaw {
	case ConstantEAS:
		kin.easRef = fp.EquivalentAirspeed
	case ConstantMach:
		kin.machRef = fp.Mach
	}
	path, err := sg.runSteps(fp, kin)
	if err != nil {
		return path, err
	}
	if kin.clamped && sg.lastReached {
		// The ceiling, not the target, terminated the segment.
		sg.lastReached = false
		sg.logger.Log("level", "warning", "status", "altitude capped",
			"ceiling", sg.maxAltitude, "target", sg.target.Altitude)
	}
	return path, nil
}

type climbKinematics struct {
	seg     *AltitudeChange
	easRef  float64
	machRef float64
	clamped bool
}

// targetAltitude resolves the (possibly moving) altitude target at the
// provided point and clamps it onto the ceiling.
func (k *climbKinematics) targetAltitude(fp FlightPoint) float64 {
	var alt float64
	switch k.seg.target.Altitude {
	case OptimalAltitude:
		alt = k.seg.optimalAltitude(fp.Mass, fp.Mach)
	case OptimalFlightLevel:
		alt = floorToFlightLevel(k.seg.optimalAltitude(fp.Mass, fp.Mach))
	default:
		alt = k.seg.target.Altitude
	}
	if alt > k.seg.maxAltitude {
		alt = k.seg.maxAltitude
		k.clamped = true
	}
	return alt
}

func (k *climbKinematics) distanceToTarget(fp FlightPoint) (float64, error) {
	return k.targetAltitude(fp) - fp.Altitude, nil
}

func (k *climbKinematics) rates(fp FlightPoint) (gamma, accel float64) {
	return safeAsin((fp.Thrust - fp.Drag) / (fp.Mass * g0)), 0
}

func (k *climbKinematics) overrideState(fp *FlightPoint) {
	if fp.Altitude > k.seg.maxAltitude {
		fp.Altitude = k.seg.maxAltitude
	}
	nan := math.NaN()
	switch k.seg.speedLaw {
	case ConstantEAS:
		fp.EquivalentAirspeed = k.easRef
		fp.TrueAirspeed = nan
		fp.Mach = nan
	case ConstantMach:
		fp.Mach = k.machRef
		fp.TrueAirspeed = nan
		fp.EquivalentAirspeed = nan
	}
}

func (k *climbKinematics) tolerance() float64 { return 0.1 }
