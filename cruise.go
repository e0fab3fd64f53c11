package fmsim

import (
	"fmt"
	"math"
)

// CruiseSegment flies at constant altitude and speed, thrust regulated to
// balance drag, until a ground distance target is covered.
type CruiseSegment struct {
	segment
}

// NewCruise returns a constant-altitude cruise segment.
func NewCruise(cfg SegmentConfig) *CruiseSegment {
	cfg = cfg.withDefaults("cruise", SettingCruise, fmsimConfig().cruiseTimeStep)
	sg := &CruiseSegment{segment: newSegment(cfg)}
	sg.thrust = regulatedThrust{}
	sg.lift = airborneLift{}
	return sg
}

// SetTargetGroundDistance implements the CruisePart interface.
func (sg *CruiseSegment) SetTargetGroundDistance(distance float64) {
	sg.target.GroundDistance = distance
	sg.target.Relative |= FieldGroundDistance
}

// TargetGroundDistance implements the CruisePart interface.
func (sg *CruiseSegment) TargetGroundDistance() float64 { return sg.target.GroundDistance }

// ComputeFrom implements the FlightPart interface.
func (sg *CruiseSegment) ComputeFrom(start FlightPoint) (FlightPath, error) {
	sg.resolveTarget(start)
	if !isSet(sg.target.GroundDistance) {
		return nil, fmt.Errorf("%w: %s has no ground distance target", ErrIncompleteFlightPoint, sg.name)
	}
	fp := start
	fp.Relative = 0
	if err := sg.complete(&fp); err != nil {
		return nil, err
	}
	return sg.runSteps(fp, &cruiseKinematics{seg: &sg.segment, altRef: fp.Altitude})
}

type cruiseKinematics struct {
	seg    *segment
	altRef float64
}

func (k *cruiseKinematics) distanceToTarget(fp FlightPoint) (float64, error) {
	return k.seg.target.GroundDistance - fp.GroundDistance, nil
}

func (k *cruiseKinematics) rates(fp FlightPoint) (gamma, accel float64) { return 0, 0 }

func (k *cruiseKinematics) overrideState(fp *FlightPoint) {
	fp.Altitude = k.altRef
}

func (k *cruiseKinematics) tolerance() float64 { return 0.5 }

// OptimalCruise is a cruise at constant Mach where the altitude is not
// integrated: at every step it is set to the altitude giving the polar's
// optimal CL for the current mass, capped by the segment ceiling (in which
// case CL, not altitude, drops below optimum).
type OptimalCruise struct {
	segment
}

// NewOptimalCruise returns an optimal-altitude cruise segment.
func NewOptimalCruise(cfg SegmentConfig) *OptimalCruise {
	cfg = cfg.withDefaults("optimal_cruise", SettingCruise, fmsimConfig().cruiseTimeStep)
	sg := &OptimalCruise{segment: newSegment(cfg)}
	sg.thrust = regulatedThrust{}
	sg.lift = airborneLift{}
	return sg
}

// SetTargetGroundDistance implements the CruisePart interface.
func (sg *OptimalCruise) SetTargetGroundDistance(distance float64) {
	sg.target.GroundDistance = distance
	sg.target.Relative |= FieldGroundDistance
}

// TargetGroundDistance implements the CruisePart interface.
func (sg *OptimalCruise) TargetGroundDistance() float64 { return sg.target.GroundDistance }

// ComputeFrom implements the FlightPart interface.
func (sg *OptimalCruise) ComputeFrom(start FlightPoint) (FlightPath, error) {
	sg.resolveTarget(start)
	if !isSet(sg.target.GroundDistance) {
		return nil, fmt.Errorf("%w: %s has no ground distance target", ErrIncompleteFlightPoint, sg.name)
	}
	fp := start
	fp.Relative = 0
	if err := sg.complete(&fp); err != nil {
		return nil, err
	}
	machRef := fp.Mach
	opt := sg.optimalAltitude(fp.Mass, machRef)
	if math.Abs(opt-fp.Altitude) > 0.1 {
		// Possible physical discontinuity with the previous part.
		sg.logger.Log("level", "warning", "status", "cruise altitude discontinuity",
			"entry", fp.Altitude, "optimal", opt)
	}
	fp.Altitude = opt
	fp.TrueAirspeed = math.NaN()
	fp.EquivalentAirspeed = math.NaN()
	fp.Mach = machRef
	if err := sg.complete(&fp); err != nil {
		return nil, err
	}
	return sg.runSteps(fp, &optimalCruiseKinematics{seg: sg, machRef: machRef})
}

type optimalCruiseKinematics struct {
	seg     *OptimalCruise
	machRef float64
}

func (k *optimalCruiseKinematics) distanceToTarget(fp FlightPoint) (float64, error) {
	return k.seg.target.GroundDistance - fp.GroundDistance, nil
}

func (k *optimalCruiseKinematics) rates(fp FlightPoint) (gamma, accel float64) { return 0, 0 }

func (k *optimalCruiseKinematics) overrideState(fp *FlightPoint) {
	fp.Altitude = k.seg.optimalAltitude(fp.Mass, k.machRef)
	fp.Mach = k.machRef
	fp.TrueAirspeed = math.NaN()
	fp.EquivalentAirspeed = math.NaN()
}

func (k *optimalCruiseKinematics) tolerance() float64 { return 0.5 }

// ClimbingCruise covers its distance at the most economical flight level: it
// tries successive flight levels above the entry altitude, each one as a
// climb to that level followed by a cruise at it over the full target
// distance, and keeps the level minimizing total mass loss. The search stops
// when mass loss stops improving, when the next level would exceed the CL
// bound, or at the ceiling.
type ClimbingCruise struct {
	segment
	maxCL     float64
	climbRate float64
}

// NewClimbingCruise returns a cruise segment with flight level search.
func NewClimbingCruise(cfg SegmentConfig) *ClimbingCruise {
	cfg = cfg.withDefaults("climbing_cruise", SettingCruise, fmsimConfig().cruiseTimeStep)
	sg := &ClimbingCruise{segment: newSegment(cfg)}
	sg.thrust = regulatedThrust{}
	sg.lift = airborneLift{}
	sg.maxCL = cfg.MaxCL
	if sg.maxCL == 0 && cfg.Polar != nil {
		// Some margin above the optimum: flying slightly beyond it still
		// pays off at higher altitude.
		sg.maxCL = 1.2 * cfg.Polar.OptimalCL()
	}
	sg.climbRate = cfg.ThrustRate
	if sg.climbRate == 0 {
		sg.climbRate = 0.9
	}
	return sg
}

// SetTargetGroundDistance implements the CruisePart interface.
func (sg *ClimbingCruise) SetTargetGroundDistance(distance float64) {
	sg.target.GroundDistance = distance
	sg.target.Relative |= FieldGroundDistance
}

// TargetGroundDistance implements the CruisePart interface.
func (sg *ClimbingCruise) TargetGroundDistance() float64 { return sg.target.GroundDistance }

// levelCL is the lift coefficient needed to hold the given flight condition.
func (sg *ClimbingCruise) levelCL(mass, mach, altitude float64) float64 {
	p := sg.atmosphere.Properties(altitude).Pressure
	return mass * g0 / (0.7 * p * mach * mach * sg.referenceArea)
}

// ComputeFrom implements the FlightPart interface.
func (sg *ClimbingCruise) ComputeFrom(start FlightPoint) (FlightPath, error) {
	sg.resolveTarget(start)
	if !isSet(sg.target.GroundDistance) {
		return nil, fmt.Errorf("%w: %s has no ground distance target", ErrIncompleteFlightPoint, sg.name)
	}
	fp := start
	fp.Relative = 0
	if err := sg.complete(&fp); err != nil {
		return nil, err
	}
	endDistance := sg.target.GroundDistance
	machRef := fp.Mach

	// Baseline: cruise at the entry altitude, no level change.
	best, err := sg.trialAt(fp, fp.Altitude, endDistance)
	if err != nil {
		return nil, err
	}
	bestLoss := best.First().Mass - best.Last().Mass

	for fl := math.Floor(fp.Altitude/flightLevel) + 1; ; fl++ {
		alt := fl * flightLevel
		if alt > sg.maxAltitude {
			sg.logger.Log("level", "info", "status", "flight level search stopped at ceiling", "fl", fl)
			break
		}
		if cl := sg.levelCL(fp.Mass, machRef, alt); cl > sg.maxCL {
			sg.logger.Log("level", "info", "status", "flight level search stopped on CL bound",
				"fl", fl, "cl", cl, "max", sg.maxCL)
			break
		}
		trial, err := sg.trialAt(fp, alt, endDistance)
		if err != nil {
			return nil, err
		}
		loss := trial.First().Mass - trial.Last().Mass
		if loss >= bestLoss {
			break
		}
		best, bestLoss = trial, loss
	}
	sg.lastReached = true
	return best, nil
}

// trialAt computes climb-to-level plus cruise-at-level down to the absolute
// end distance.
func (sg *ClimbingCruise) trialAt(fp FlightPoint, altitude, endDistance float64) (FlightPath, error) {
	models := SegmentConfig{
		Propulsion:     sg.propulsion,
		Polar:          sg.polar,
		Atmosphere:     sg.atmosphere,
		ReferenceArea:  sg.referenceArea,
		MaxFlightLevel: sg.maxAltitude / flightLevel,
		Logger:         sg.logger,
	}
	path := FlightPath{}
	cur := fp
	if altitude > fp.Altitude+0.1 {
		climbCfg := models
		climbCfg.Name = sg.name + ":climb"
		climbCfg.SpeedLaw = ConstantMach
		climbCfg.ThrustRate = sg.climbRate
		climbCfg.Target = NewFlightPoint()
		climbCfg.Target.Altitude = altitude
		climb := NewAltitudeChange(climbCfg)
		cPath, err := climb.ComputeFrom(cur)
		if err != nil {
			return nil, err
		}
		path = append(path, cPath...)
		cur = cPath.Last()
	}
	cruiseCfg := models
	cruiseCfg.Name = sg.name + ":cruise"
	cruiseCfg.TimeStep = sg.timeStep
	cruiseCfg.Target = NewFlightPoint()
	cruise := NewCruise(cruiseCfg)
	cruise.SetTargetGroundDistance(endDistance - cur.GroundDistance)
	crPath, err := cruise.ComputeFrom(cur)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return crPath, nil
	}
	return append(path, crPath[1:]...), nil
}

// BreguetCruise is the closed-form cruise: no time stepping, the end mass
// comes straight from the Breguet range equation. Useful as a cheap stand-in
// for the full integration, e.g. to bootstrap an outer solver.
type BreguetCruise struct {
	segment
	useMaxLiftDrag bool
}

// NewBreguetCruise returns a closed-form cruise segment. With useMaxLiftDrag,
// the polar's best CL/CD is used instead of the one realized at the entry
// point.
func NewBreguetCruise(cfg SegmentConfig, useMaxLiftDrag bool) *BreguetCruise {
	cfg = cfg.withDefaults("breguet_cruise", SettingCruise, fmsimConfig().cruiseTimeStep)
	sg := &BreguetCruise{segment: newSegment(cfg), useMaxLiftDrag: useMaxLiftDrag}
	sg.thrust = regulatedThrust{}
	sg.lift = airborneLift{}
	return sg
}

// SetTargetGroundDistance implements the CruisePart interface.
func (sg *BreguetCruise) SetTargetGroundDistance(distance float64) {
	sg.target.GroundDistance = distance
	sg.target.Relative |= FieldGroundDistance
}

// TargetGroundDistance implements the CruisePart interface.
func (sg *BreguetCruise) TargetGroundDistance() float64 { return sg.target.GroundDistance }

// ComputeFrom implements the FlightPart interface.
func (sg *BreguetCruise) ComputeFrom(start FlightPoint) (FlightPath, error) {
	sg.resolveTarget(start)
	if !isSet(sg.target.GroundDistance) {
		return nil, fmt.Errorf("%w: %s has no ground distance target", ErrIncompleteFlightPoint, sg.name)
	}
	fp := start
	fp.Relative = 0
	if err := sg.complete(&fp); err != nil {
		return nil, err
	}
	distance := sg.target.GroundDistance - fp.GroundDistance
	if distance < 0 {
		return nil, fmt.Errorf("%w: %s asked to cruise backwards (%f m)", ErrUnreachableTarget, sg.name, distance)
	}
	liftToDrag := fp.CL / fp.CD
	if sg.useMaxLiftDrag {
		optCL := sg.polar.OptimalCL()
		liftToDrag = optCL / sg.polar.CD(optCL)
	}
	if liftToDrag <= 0 || nearZero(fp.SFC) || fp.SFC < 0 || fp.TrueAirspeed <= 0 {
		return nil, fmt.Errorf("%w: %s has no usable range factor (L/D=%f, SFC=%g, TAS=%f)",
			ErrUnreachableTarget, sg.name, liftToDrag, fp.SFC, fp.TrueAirspeed)
	}
	rangeFactor := fp.TrueAirspeed * liftToDrag / (g0 * fp.SFC)

	end := NewFlightPoint()
	end.Altitude = fp.Altitude
	end.TrueAirspeed = fp.TrueAirspeed
	end.Mass = fp.Mass * math.Exp(-distance/rangeFactor)
	end.Time = fp.Time + distance/fp.TrueAirspeed
	end.GroundDistance = sg.target.GroundDistance
	end.EngineSetting = fp.EngineSetting
	if err := sg.complete(&end); err != nil {
		return nil, err
	}
	end.ConsumedFuel = fp.ConsumedFuel + (fp.Mass - end.Mass)
	sg.lastReached = true
	return FlightPath{fp, end}, nil
}
