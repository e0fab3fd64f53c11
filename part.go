package fmsim

// FlightPart is the uniform contract exposed by every simulated flight
// element: segments, sequences, routes and missions. ComputeFrom advances the
// provided start point to the part's end condition and returns the ordered
// sequence of flight points covering the whole part, starting with a completed
// copy of the start point. This single contract is what allows arbitrary
// nesting.
type FlightPart interface {
	ComputeFrom(start FlightPoint) (FlightPath, error)
}

// CruisePart is implemented by cruise-type segments whose ground distance
// target can be driven externally, typically by a route or mission solver.
type CruisePart interface {
	FlightPart
	// SetTargetGroundDistance sets the distance to fly, in meters, as an
	// absolute increment from the cruise entry point.
	SetTargetGroundDistance(distance float64)
	// TargetGroundDistance returns the current distance target, NaN when
	// undetermined.
	TargetGroundDistance() float64
}

// targeted is implemented by leaf segments, which expose their target point
// for inspection and in-place resolution.
type targeted interface {
	targetPoint() *FlightPoint
}

// targetable is implemented by parts which accept a delegated target from an
// enclosing sequence.
type targetable interface {
	setTarget(target FlightPoint)
}

// named is implemented by all parts so that sequences can assign qualified
// names down the tree.
type named interface {
	partName() string
	setPartName(name string)
}

// composite is implemented by parts which contain ordered members.
type composite interface {
	parts() []FlightPart
}
