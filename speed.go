package fmsim

import "fmt"

// SpeedChange is the acceleration/deceleration segment: manual thrust, level
// flight, along-track acceleration from the force balance, terminated on
// whichever speed parameter the target specifies.
type SpeedChange struct {
	segment
}

// NewSpeedChange returns a speed change segment. A zero ThrustRate defaults
// to full thrust.
func NewSpeedChange(cfg SegmentConfig) *SpeedChange {
	cfg = cfg.withDefaults("speed_change", SettingClimb, fmsimConfig().climbTimeStep)
	if cfg.ThrustRate == 0 {
		cfg.ThrustRate = 1
	}
	sg := &SpeedChange{segment: newSegment(cfg)}
	sg.thrust = manualThrust{cfg.ThrustRate}
	sg.lift = airborneLift{}
	return sg
}

// ComputeFrom implements the FlightPart interface.
func (sg *SpeedChange) ComputeFrom(start FlightPoint) (FlightPath, error) {
	sg.resolveTarget(start)
	var field FieldSet
	switch {
	case isSet(sg.target.TrueAirspeed):
		field = FieldTrueAirspeed
	case isSet(sg.target.EquivalentAirspeed):
		field = FieldEquivalentAirspeed
	case isSet(sg.target.Mach):
		field = FieldMach
	default:
		return nil, fmt.Errorf("%w: %s has no speed target", ErrIncompleteFlightPoint, sg.name)
	}
	fp := start
	fp.Relative = 0
	if err := sg.complete(&fp); err != nil {
		return nil, err
	}
	return sg.runSteps(fp, &speedKinematics{seg: sg, field: field})
}

type speedKinematics struct {
	seg   *SpeedChange
	field FieldSet
}

func (k *speedKinematics) distanceToTarget(fp FlightPoint) (float64, error) {
	return k.seg.target.value(k.field) - fp.value(k.field), nil
}

func (k *speedKinematics) rates(fp FlightPoint) (gamma, accel float64) {
	return 0, (fp.Thrust - fp.Drag) / fp.Mass
}

func (k *speedKinematics) overrideState(fp *FlightPoint) {}

func (k *speedKinematics) tolerance() float64 {
	if k.field == FieldMach {
		return 1e-4
	}
	return 1e-2
}
