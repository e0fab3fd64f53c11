package fmsim

import "fmt"

// Hold flies at constant altitude and speed, thrust regulated to balance
// drag, for a fixed duration (the time target, usually flagged relative).
type Hold struct {
	segment
}

// NewHold returns a holding segment.
func NewHold(cfg SegmentConfig) *Hold {
	cfg = cfg.withDefaults("hold", SettingCruise, fmsimConfig().cruiseTimeStep)
	sg := &Hold{segment: newSegment(cfg)}
	sg.thrust = regulatedThrust{}
	sg.lift = airborneLift{}
	return sg
}

// ComputeFrom implements the FlightPart interface.
func (sg *Hold) ComputeFrom(start FlightPoint) (FlightPath, error) {
	sg.resolveTarget(start)
	if !isSet(sg.target.Time) {
		return nil, fmt.Errorf("%w: %s has no time target", ErrIncompleteFlightPoint, sg.name)
	}
	fp := start
	fp.Relative = 0
	if err := sg.complete(&fp); err != nil {
		return nil, err
	}
	return sg.runSteps(fp, &durationKinematics{seg: &sg.segment, altRef: fp.Altitude})
}

// Taxi rolls on the ground at constant speed and prescribed idle thrust rate
// for a fixed duration. A constant-condition special case: no lift balance,
// only fuel bookkeeping.
type Taxi struct {
	segment
}

// NewTaxi returns a taxi segment. A zero ThrustRate defaults to a typical
// ground idle.
func NewTaxi(cfg SegmentConfig) *Taxi {
	cfg = cfg.withDefaults("taxi", SettingIdle, fmsimConfig().taxiTimeStep)
	if cfg.ThrustRate == 0 {
		cfg.ThrustRate = 0.3
	}
	sg := &Taxi{segment: newSegment(cfg)}
	sg.thrust = manualThrust{cfg.ThrustRate}
	sg.lift = groundLift{}
	return sg
}

// ComputeFrom implements the FlightPart interface.
func (sg *Taxi) ComputeFrom(start FlightPoint) (FlightPath, error) {
	sg.resolveTarget(start)
	if !isSet(sg.target.Time) {
		return nil, fmt.Errorf("%w: %s has no time target", ErrIncompleteFlightPoint, sg.name)
	}
	fp := start
	fp.Relative = 0
	if !isSet(fp.Altitude) {
		fp.Altitude = 0
	}
	if err := sg.complete(&fp); err != nil {
		return nil, err
	}
	return sg.runSteps(fp, &durationKinematics{seg: &sg.segment, altRef: fp.Altitude})
}

// durationKinematics terminates on elapsed time, holding altitude and speed
// constant by construction.
type durationKinematics struct {
	seg    *segment
	altRef float64
}

func (k *durationKinematics) distanceToTarget(fp FlightPoint) (float64, error) {
	return k.seg.target.Time - fp.Time, nil
}

func (k *durationKinematics) rates(fp FlightPoint) (gamma, accel float64) { return 0, 0 }

func (k *durationKinematics) overrideState(fp *FlightPoint) {
	fp.Altitude = k.altRef
}

func (k *durationKinematics) tolerance() float64 { return 1e-3 }
