package fmsim

import "fmt"

// MassTarget is the degenerate one-point segment which overwrites the running
// mass with its target value. It does not integrate anything: it is a
// waypoint marker forcing a known absolute mass, typically the take-off
// weight, into the timeline. Enclosing sequences detect the absolute mass
// declaration and shift their already-accumulated points accordingly.
type MassTarget struct {
	segment
}

// NewMassTarget returns a mass waypoint segment.
func NewMassTarget(cfg SegmentConfig) *MassTarget {
	cfg = cfg.withDefaults("mass_target", 0, 1)
	if cfg.Atmosphere == nil {
		cfg.Atmosphere = ISA{}
	}
	return &MassTarget{segment: newSegment(cfg)}
}

// ComputeFrom implements the FlightPart interface.
func (sg *MassTarget) ComputeFrom(start FlightPoint) (FlightPath, error) {
	sg.resolveTarget(start)
	if !isSet(sg.target.Mass) {
		return nil, fmt.Errorf("%w: %s has no mass target", ErrIncompleteFlightPoint, sg.name)
	}
	out := start
	out.Relative = 0
	out.Mass = sg.target.Mass
	out.Name = sg.name
	if !isSet(out.ConsumedFuel) {
		out.ConsumedFuel = 0
	}
	sg.lastReached = true
	return FlightPath{out}, nil
}
