package fmsim

import (
	"math"

	"github.com/ChristopherRabotin/ode"
)

// kinematics is what a time-stepping segment variant provides to the shared
// integration engine: its termination function, its force balance and an
// optional per-step state override. Instances live for one ComputeFrom call.
type kinematics interface {
	// distanceToTarget is the signed scalar whose zero crossing terminates
	// the segment. Pure function of the point.
	distanceToTarget(fp FlightPoint) (float64, error)
	// rates returns the flight path angle (rad) and the along-track
	// acceleration (m/s^2) from the force balance at the point.
	rates(fp FlightPoint) (gamma, accel float64)
	// overrideState may rewrite the raw integrated state before the point is
	// completed, e.g. to enforce a speed law or pin the altitude.
	overrideState(fp *FlightPoint)
	// tolerance is the absolute termination tolerance on distanceToTarget.
	tolerance() float64
}

type stepStatus uint8

const (
	stepRunning stepStatus = iota
	stepReached
	stepDiverged
	stepCapped
)

func (s stepStatus) String() string {
	switch s {
	case stepReached:
		return "target reached"
	case stepDiverged:
		return "diverging from target"
	case stepCapped:
		return "step budget exceeded"
	}
	return "running"
}

// stepper adapts one segment run into an ode.Integrable. The integrated state
// vector is [altitude, TAS, ground distance, mass]; time is the independent
// variable.
type stepper struct {
	seg *segment
	kin kinematics
	dt  float64

	current  FlightPoint
	path     FlightPath
	firstGap float64
	prevGap  float64
	primed   bool
	steps    int
	maxSteps int
	status   stepStatus
	err      error
}

// runSteps integrates from the completed start point until the kinematics
// terminal condition, a divergence interrupt or the step budget. The returned
// path always begins with the start point; on normal termination its last
// point is back-substituted onto the exact target.
func (sg *segment) runSteps(start FlightPoint, kin kinematics) (FlightPath, error) {
	st := &stepper{
		seg:      sg,
		kin:      kin,
		dt:       sg.timeStep,
		current:  start,
		path:     FlightPath{start},
		maxSteps: fmsimConfig().maxSegmentSteps,
	}
	ode.NewRK4(start.Time, sg.timeStep, st).Solve()
	if st.err != nil {
		sg.lastReached = false
		return st.path, st.err
	}
	switch st.status {
	case stepReached:
		sg.lastReached = true
		st.backSubstitute()
	default:
		sg.lastReached = false
		sg.logger.Log("level", "warning", "status", st.status.String(),
			"steps", st.steps, "t", st.current.Time, "altitude", st.current.Altitude)
	}
	return st.path, nil
}

// GetState implements the ode.Integrable interface.
func (st *stepper) GetState() []float64 {
	return []float64{st.current.Altitude, st.current.TrueAirspeed, st.current.GroundDistance, st.current.Mass}
}

// rawPoint rebuilds an uncompleted flight point from the integration state.
func (st *stepper) rawPoint(f []float64, time float64) FlightPoint {
	fp := NewFlightPoint()
	fp.Altitude = f[0]
	fp.TrueAirspeed = f[1]
	fp.GroundDistance = f[2]
	fp.Mass = f[3]
	fp.Time = time
	fp.EngineSetting = st.current.EngineSetting
	return fp
}

// Func implements the ode.Integrable interface. It is a pure function of the
// provided state: dependent fields are re-derived at every evaluation.
func (st *stepper) Func(t float64, f []float64) []float64 {
	if st.err != nil {
		return []float64{0, 0, 0, 0}
	}
	probe := st.rawPoint(f, t)
	if err := st.seg.complete(&probe); err != nil {
		st.err = err
		return []float64{0, 0, 0, 0}
	}
	gamma, accel := st.kin.rates(probe)
	sinG, cosG := math.Sincos(gamma)
	v := probe.TrueAirspeed
	return []float64{
		v * sinG,                  // dh/dt
		accel,                     // dV/dt
		v * cosG,                  // dx/dt, horizontal projection
		-probe.SFC * probe.Thrust, // dm/dt
	}
}

// SetState implements the ode.Integrable interface: it accepts the new state,
// applies the variant override, completes the point and appends it.
func (st *stepper) SetState(t float64, f []float64) {
	if st.err != nil {
		return
	}
	fp := st.rawPoint(f, st.current.Time+st.dt)
	st.kin.overrideState(&fp)
	if err := st.seg.complete(&fp); err != nil {
		st.err = err
		return
	}
	fp.ConsumedFuel = st.current.ConsumedFuel + (st.current.Mass - fp.Mass)
	st.path = append(st.path, fp)
	st.current = fp
}

// Stop implements the ode.Integrable interface and holds the whole
// termination policy.
func (st *stepper) Stop(t float64) bool {
	if st.err != nil {
		return true
	}
	gap, err := st.kin.distanceToTarget(st.current)
	if err != nil {
		st.err = err
		return true
	}
	tol := st.kin.tolerance()
	if !st.primed {
		// First call, on the start point itself.
		st.primed = true
		st.firstGap = math.Abs(gap)
		st.prevGap = gap
		if st.firstGap <= tol {
			st.status = stepReached
			return true
		}
		return false
	}
	if math.Abs(gap) <= tol || gap*st.prevGap < 0 {
		st.status = stepReached
		return true
	}
	// The divergence guard compares to the magnitude at the first step, not
	// to the previous one, so a few steps of local backsliding are allowed.
	if st.seg.interrupt && math.Abs(gap) > st.firstGap {
		st.status = stepDiverged
		return true
	}
	st.steps++
	if st.steps >= st.maxSteps {
		st.status = stepCapped
		return true
	}
	st.prevGap = gap
	return false
}

// backSubstitute replaces the last point so that the distance to target is
// exactly zero, by linear interpolation between the two last steps.
func (st *stepper) backSubstitute() {
	n := len(st.path)
	if n < 2 {
		return
	}
	prev, last := st.path[n-2], st.path[n-1]
	gPrev, errPrev := st.kin.distanceToTarget(prev)
	gLast, errLast := st.kin.distanceToTarget(last)
	if errPrev != nil || errLast != nil || gPrev == gLast {
		return
	}
	lam := gPrev / (gPrev - gLast)
	if lam < 0 {
		lam = 0
	} else if lam > 1 {
		lam = 1
	}
	st.path[n-1] = lerpPoint(prev, last, lam)
}
