package fmsim

import (
	"fmt"

	"github.com/go-kit/kit/log"
)

// RangedRoute is a flight sequence made of climb phases, one cruise segment
// and descent phases, whose cruise distance is adjusted so that the total
// route ground distance matches a target.
type RangedRoute struct {
	seq     *FlightSequence
	climb   []FlightPart
	cruise  CruisePart
	descent []FlightPart

	flightDistance   float64
	distanceAccuracy float64
	logger           log.Logger

	// SolveDistance disabled lets an enclosing solver drive the cruise
	// distance directly, avoiding nested root finding.
	SolveDistance bool

	// Captured at construction: whether every climb/descent leaf already has
	// a fixed non-zero ground distance target, and their total. When true the
	// cruise distance is plain subtraction and no solver runs.
	legsFixed    bool
	fixedLegDist float64
}

// NewRangedRoute assembles a route. Climb and descent parts keep their
// declaration order; the cruise segment sits in between.
func NewRangedRoute(name string, climb []FlightPart, cruise CruisePart, descent []FlightPart, flightDistance float64, logger log.Logger) *RangedRoute {
	seq := NewFlightSequence(name, logger)
	for i, p := range climb {
		seq.Add(fmt.Sprintf("climb_%d", i+1), p)
	}
	seq.Add("cruise", cruise)
	for i, p := range descent {
		seq.Add(fmt.Sprintf("descent_%d", i+1), p)
	}
	rr := &RangedRoute{
		seq:              seq,
		climb:            climb,
		cruise:           cruise,
		descent:          descent,
		flightDistance:   flightDistance,
		distanceAccuracy: fmsimConfig().distanceAccuracy,
		logger:           log.With(seq.logger, "route", name),
		SolveDistance:    true,
	}
	rr.legsFixed, rr.fixedLegDist = fixedLegDistances(append(append([]FlightPart{}, climb...), descent...))
	return rr
}

// fixedLegDistances walks the given parts down to leaf segments and sums
// their ground distance targets. It reports false as soon as one leaf has no
// distance target, or a zero one (meaning the distance is an output of the
// leg, not an input).
func fixedLegDistances(parts []FlightPart) (bool, float64) {
	total := 0.0
	for _, p := range parts {
		switch v := p.(type) {
		case composite:
			ok, d := fixedLegDistances(v.parts())
			if !ok {
				return false, 0
			}
			total += d
		case targeted:
			d := v.targetPoint().GroundDistance
			if !isSet(d) || d == 0 {
				return false, 0
			}
			total += d
		default:
			return false, 0
		}
	}
	return true, total
}

func (rr *RangedRoute) partName() string { return rr.seq.name }

func (rr *RangedRoute) setPartName(name string) { rr.seq.name = name }

func (rr *RangedRoute) parts() []FlightPart { return rr.seq.parts() }

// Cruise returns the route's cruise segment, for external distance driving.
func (rr *RangedRoute) Cruise() CruisePart { return rr.cruise }

// FlightDistance returns the route's total ground distance target in meters.
func (rr *RangedRoute) FlightDistance() float64 { return rr.flightDistance }

// SetDistanceAccuracy overrides the solver tolerance, in meters.
func (rr *RangedRoute) SetDistanceAccuracy(accuracy float64) { rr.distanceAccuracy = accuracy }

// LastPath returns the path produced by the last ComputeFrom call.
func (rr *RangedRoute) LastPath() FlightPath { return rr.seq.LastPath() }

// ConsumedMassBeforeInputWeight mirrors the underlying sequence.
func (rr *RangedRoute) ConsumedMassBeforeInputWeight() float64 {
	return rr.seq.ConsumedMassBeforeInputWeight()
}

// ComputeFrom implements the FlightPart interface.
func (rr *RangedRoute) ComputeFrom(start FlightPoint) (FlightPath, error) {
	if !rr.SolveDistance {
		// Cruise distance is driven externally.
		return rr.seq.ComputeFrom(start)
	}
	if rr.legsFixed {
		cruiseDist := rr.flightDistance - rr.fixedLegDist
		if cruiseDist <= 0 {
			return nil, fmt.Errorf("%w: route %s climb/descent legs cover %f m of a %f m route",
				ErrUnreachableTarget, rr.seq.name, rr.fixedLegDist, rr.flightDistance)
		}
		rr.cruise.SetTargetGroundDistance(cruiseDist)
		return rr.seq.ComputeFrom(start)
	}
	// Some leg distances are outputs: solve for the cruise distance which
	// closes the total. The converged evaluation is cached by the sequence,
	// so no final recomputation is needed.
	eval := func(cruiseDist float64) (float64, error) {
		rr.cruise.SetTargetGroundDistance(cruiseDist)
		path, err := rr.seq.ComputeFrom(start)
		if err != nil {
			return 0, err
		}
		return rr.flightDistance - path.GroundDistance(), nil
	}
	root, err := secant(eval, 0.5*rr.flightDistance, 0.25*rr.flightDistance, rr.distanceAccuracy, maxSecantIterations)
	if err != nil {
		return rr.seq.LastPath(), fmt.Errorf("route %s distance solver: %w", rr.seq.name, err)
	}
	rr.logger.Log("level", "info", "status", "distance converged",
		"cruise_distance", root, "total", rr.seq.LastPath().GroundDistance())
	return rr.seq.LastPath(), nil
}
