package fmsim

import (
	"fmt"
	"math"
)

// FieldSet is a bit mask of FlightPoint numeric fields.
type FieldSet uint16

const (
	// FieldTime designates FlightPoint.Time.
	FieldTime FieldSet = 1 << iota
	// FieldAltitude designates FlightPoint.Altitude.
	FieldAltitude
	// FieldMass designates FlightPoint.Mass.
	FieldMass
	// FieldTrueAirspeed designates FlightPoint.TrueAirspeed.
	FieldTrueAirspeed
	// FieldEquivalentAirspeed designates FlightPoint.EquivalentAirspeed.
	FieldEquivalentAirspeed
	// FieldMach designates FlightPoint.Mach.
	FieldMach
	// FieldGroundDistance designates FlightPoint.GroundDistance.
	FieldGroundDistance
	// FieldThrust designates FlightPoint.Thrust.
	FieldThrust
	// FieldThrustRate designates FlightPoint.ThrustRate.
	FieldThrustRate
)

// speedFields groups the three equivalent speed parameters.
const speedFields = FieldTrueAirspeed | FieldEquivalentAirspeed | FieldMach

// Has returns whether all provided fields are in the set.
func (fs FieldSet) Has(f FieldSet) bool {
	return fs&f == f
}

// EngineSetting defines the engine rating requested from the propulsion model.
type EngineSetting uint8

const (
	// SettingTakeoff is the take-off rating.
	SettingTakeoff EngineSetting = iota + 1
	// SettingClimb is the max-climb rating.
	SettingClimb
	// SettingCruise is the max-cruise rating.
	SettingCruise
	// SettingIdle is the flight-idle rating.
	SettingIdle
)

func (es EngineSetting) String() string {
	switch es {
	case SettingTakeoff:
		return "takeoff"
	case SettingClimb:
		return "climb"
	case SettingCruise:
		return "cruise"
	case SettingIdle:
		return "idle"
	}
	return "unset"
}

// FlightPoint is the state of the aircraft at one instant of the simulated
// flight. It is the common currency between segments, sequences and missions.
// Unset numeric fields are NaN, meaning "unknown, to be derived". A field
// listed in Relative is a delta to be added to the matching start point value;
// the flag is resolved by whichever part consumes the point as a target.
type FlightPoint struct {
	Name               string  // Hierarchical path of the flight part which produced this point.
	Time               float64 // s
	Altitude           float64 // m
	Mass               float64 // kg
	TrueAirspeed       float64 // m/s
	EquivalentAirspeed float64 // m/s
	Mach               float64
	GroundDistance     float64 // m
	Thrust             float64 // N
	Drag               float64 // N
	CL                 float64
	CD                 float64
	ThrustRate         float64 // in [0,1]
	SFC                float64 // kg/N/s
	ConsumedFuel       float64 // kg, cumulative since the start of the computation
	EngineSetting      EngineSetting
	Relative           FieldSet
}

// NewFlightPoint returns a FlightPoint with every numeric field unset.
func NewFlightPoint() FlightPoint {
	nan := math.NaN()
	return FlightPoint{
		Time: nan, Altitude: nan, Mass: nan,
		TrueAirspeed: nan, EquivalentAirspeed: nan, Mach: nan,
		GroundDistance: nan, Thrust: nan, Drag: nan,
		CL: nan, CD: nan, ThrustRate: nan, SFC: nan, ConsumedFuel: nan,
	}
}

func isSet(v float64) bool {
	return !math.IsNaN(v)
}

// Defined returns whether all the provided fields carry a value.
func (fp FlightPoint) Defined(fields FieldSet) bool {
	for _, f := range allFields {
		if fields.Has(f) && !isSet(fp.value(f)) {
			return false
		}
	}
	return true
}

var allFields = []FieldSet{
	FieldTime, FieldAltitude, FieldMass, FieldTrueAirspeed,
	FieldEquivalentAirspeed, FieldMach, FieldGroundDistance,
	FieldThrust, FieldThrustRate,
}

func (fp FlightPoint) value(f FieldSet) float64 {
	switch f {
	case FieldTime:
		return fp.Time
	case FieldAltitude:
		return fp.Altitude
	case FieldMass:
		return fp.Mass
	case FieldTrueAirspeed:
		return fp.TrueAirspeed
	case FieldEquivalentAirspeed:
		return fp.EquivalentAirspeed
	case FieldMach:
		return fp.Mach
	case FieldGroundDistance:
		return fp.GroundDistance
	case FieldThrust:
		return fp.Thrust
	case FieldThrustRate:
		return fp.ThrustRate
	}
	panic(fmt.Errorf("no such flight point field %b", f))
}

func (fp *FlightPoint) setValue(f FieldSet, v float64) {
	switch f {
	case FieldTime:
		fp.Time = v
	case FieldAltitude:
		fp.Altitude = v
	case FieldMass:
		fp.Mass = v
	case FieldTrueAirspeed:
		fp.TrueAirspeed = v
	case FieldEquivalentAirspeed:
		fp.EquivalentAirspeed = v
	case FieldMach:
		fp.Mach = v
	case FieldGroundDistance:
		fp.GroundDistance = v
	case FieldThrust:
		fp.Thrust = v
	case FieldThrustRate:
		fp.ThrustRate = v
	default:
		panic(fmt.Errorf("no such flight point field %b", f))
	}
}

// absolute returns a copy of fp where every field flagged relative has been
// resolved against the provided start point.
func (fp FlightPoint) absolute(start FlightPoint) FlightPoint {
	out := fp
	for _, f := range allFields {
		if !fp.Relative.Has(f) || !isSet(fp.value(f)) {
			continue
		}
		base := start.value(f)
		if !isSet(base) {
			base = 0
		}
		out.setValue(f, fp.value(f)+base)
	}
	out.Relative = 0
	return out
}

// repairFrom fills the still-unset fields of fp from the provided point.
// Used when stitching sub-results together: the last point of a sub-result may
// be incomplete and is right-censored from the first point of the next one.
func (fp *FlightPoint) repairFrom(next FlightPoint) {
	for _, f := range allFields {
		if !isSet(fp.value(f)) && isSet(next.value(f)) {
			fp.setValue(f, next.value(f))
		}
	}
	if !isSet(fp.Drag) && isSet(next.Drag) {
		fp.Drag = next.Drag
	}
	if !isSet(fp.CL) && isSet(next.CL) {
		fp.CL = next.CL
	}
	if !isSet(fp.CD) && isSet(next.CD) {
		fp.CD = next.CD
	}
	if !isSet(fp.SFC) && isSet(next.SFC) {
		fp.SFC = next.SFC
	}
	if !isSet(fp.ConsumedFuel) && isSet(next.ConsumedFuel) {
		fp.ConsumedFuel = next.ConsumedFuel
	}
	if fp.EngineSetting == 0 {
		fp.EngineSetting = next.EngineSetting
	}
}

func (fp FlightPoint) String() string {
	return fmt.Sprintf("%s: t=%.1fs h=%.1fm tas=%.2fm/s m=%.1fkg x=%.1fm", fp.Name, fp.Time, fp.Altitude, fp.TrueAirspeed, fp.Mass, fp.GroundDistance)
}

// FlightPath is an ordered sequence of flight points, the output of every
// ComputeFrom call.
type FlightPath []FlightPoint

// First returns the first point of the path.
func (p FlightPath) First() FlightPoint {
	return p[0]
}

// Last returns the last point of the path.
func (p FlightPath) Last() FlightPoint {
	return p[len(p)-1]
}

// Duration returns the elapsed time covered by the path in seconds.
func (p FlightPath) Duration() float64 {
	if len(p) == 0 {
		return 0
	}
	return p.Last().Time - p.First().Time
}

// GroundDistance returns the ground distance covered by the path in meters.
func (p FlightPath) GroundDistance() float64 {
	if len(p) == 0 {
		return 0
	}
	return p.Last().GroundDistance - p.First().GroundDistance
}

// FuelBurned returns the fuel mass consumed over the path in kg.
func (p FlightPath) FuelBurned() float64 {
	if len(p) == 0 {
		return 0
	}
	return p.First().Mass - p.Last().Mass
}
