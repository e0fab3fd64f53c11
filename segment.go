package fmsim

import (
	"fmt"
	"math"
	"os"

	"github.com/go-kit/kit/log"
)

// Sentinel altitude targets.
const (
	// OptimalAltitude targets the altitude of best lift to drag ratio at the
	// current mass and Mach number. The target moves as fuel is burned.
	OptimalAltitude = -10000.0
	// OptimalFlightLevel is OptimalAltitude rounded down to the nearest
	// standard flight level (multiple of 100 ft).
	OptimalFlightLevel = -20000.0
)

// SpeedLaw defines which speed parameter an altitude-change segment holds
// constant while climbing or descending.
type SpeedLaw uint8

const (
	// ConstantTAS holds the true airspeed.
	ConstantTAS SpeedLaw = iota
	// ConstantEAS holds the equivalent airspeed.
	ConstantEAS
	// ConstantMach holds the Mach number.
	ConstantMach
)

func (sl SpeedLaw) String() string {
	switch sl {
	case ConstantTAS:
		return "constant TAS"
	case ConstantEAS:
		return "constant EAS"
	case ConstantMach:
		return "constant Mach"
	}
	return "unknown speed law"
}

// SegmentConfig gathers the immutable parameters shared by all segment
// variants. Zero values are replaced by variant defaults at construction.
type SegmentConfig struct {
	Name          string
	Target        FlightPoint
	Propulsion    Propulsion
	Polar         Polar
	Atmosphere    Atmosphere // defaults to ISA
	ReferenceArea float64    // m^2
	TimeStep      float64    // s, defaults per variant
	ThrustRate    float64    // manual-thrust segments, in [0,1]
	EngineSetting EngineSetting
	SpeedLaw      SpeedLaw
	// InterruptIfDiverging stops the integration as soon as the distance to
	// target grows beyond its initial magnitude, flagging the target as
	// unreachable instead of stepping forever.
	InterruptIfDiverging bool
	// MaxFlightLevel caps the altitude regardless of target. Zero means the
	// configured default (see Config).
	MaxFlightLevel float64
	// MaxCL bounds the lift coefficient during climbing cruise flight level
	// search. Zero means the polar optimum plus margin.
	MaxCL  float64
	Logger log.Logger
}

func (cfg SegmentConfig) withDefaults(name string, setting EngineSetting, dt float64) SegmentConfig {
	if cfg.Name == "" {
		cfg.Name = name
	}
	if cfg.EngineSetting == 0 {
		cfg.EngineSetting = setting
	}
	if cfg.TimeStep == 0 {
		cfg.TimeStep = dt
	}
	if cfg.Atmosphere == nil {
		cfg.Atmosphere = ISA{}
	}
	if cfg.MaxFlightLevel == 0 {
		cfg.MaxFlightLevel = fmsimConfig().maxFlightLevel
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stdout))
	}
	return cfg
}

// segment is the common state of all leaf segments.
type segment struct {
	name          string
	target        FlightPoint
	propulsion    Propulsion
	polar         Polar
	atmosphere    Atmosphere
	referenceArea float64
	timeStep      float64
	engineSetting EngineSetting
	interrupt     bool
	maxAltitude   float64 // m, from MaxFlightLevel
	logger        log.Logger

	thrust thrustStrategy
	lift   liftStrategy

	// Derived state of the last ComputeFrom call.
	lastReached bool
}

func newSegment(cfg SegmentConfig) segment {
	return segment{
		name:          cfg.Name,
		target:        cfg.Target,
		propulsion:    cfg.Propulsion,
		polar:         cfg.Polar,
		atmosphere:    cfg.Atmosphere,
		referenceArea: cfg.ReferenceArea,
		timeStep:      cfg.TimeStep,
		engineSetting: cfg.EngineSetting,
		interrupt:     cfg.InterruptIfDiverging,
		maxAltitude:   cfg.MaxFlightLevel * flightLevel,
		logger:        log.With(cfg.Logger, "subsys", "segment", "segment", cfg.Name),
	}
}

func (sg *segment) partName() string { return sg.name }

func (sg *segment) setPartName(name string) {
	sg.name = name
	sg.logger = log.With(sg.logger, "segment", name)
}

func (sg *segment) targetPoint() *FlightPoint { return &sg.target }

func (sg *segment) setTarget(target FlightPoint) { sg.target = target }

// TargetReached reports whether the last ComputeFrom call terminated on its
// target condition, as opposed to truncating on divergence or on a ceiling.
func (sg *segment) TargetReached() bool { return sg.lastReached }

// resolveTarget turns relative target fields into absolute ones, in place, so
// that enclosing sequences observe the resolved target after the member call.
func (sg *segment) resolveTarget(start FlightPoint) {
	sg.target = sg.target.absolute(start)
}

// complete fills all derivable fields of the point: the two missing speed
// parameters from the atmosphere, CL/CD/drag from the weight and the polar,
// and thrust/SFC from the propulsion model.
func (sg *segment) complete(fp *FlightPoint) error {
	if !isSet(fp.Time) {
		fp.Time = 0
	}
	if !isSet(fp.GroundDistance) {
		fp.GroundDistance = 0
	}
	if !isSet(fp.ConsumedFuel) {
		fp.ConsumedFuel = 0
	}
	if fp.EngineSetting == 0 {
		fp.EngineSetting = sg.engineSetting
	}
	fp.Name = sg.name
	if _, ground := sg.lift.(groundLift); ground && !isSet(fp.TrueAirspeed) && !isSet(fp.EquivalentAirspeed) && !isSet(fp.Mach) {
		fp.TrueAirspeed = 0
	}
	if err := sg.completeSpeeds(fp); err != nil {
		return err
	}
	if err := sg.lift.apply(sg, fp); err != nil {
		return err
	}
	return sg.thrust.apply(sg, fp)
}

func (sg *segment) completeSpeeds(fp *FlightPoint) error {
	if !isSet(fp.Altitude) {
		return fmt.Errorf("%w: %s needs an altitude", ErrIncompleteFlightPoint, sg.name)
	}
	props := sg.atmosphere.Properties(fp.Altitude)
	rho0 := seaLevelDensity(sg.atmosphere)
	switch {
	case isSet(fp.TrueAirspeed):
		// TAS wins: it is the integrated state.
	case isSet(fp.EquivalentAirspeed):
		fp.TrueAirspeed = fp.EquivalentAirspeed * math.Sqrt(rho0/props.Density)
	case isSet(fp.Mach):
		fp.TrueAirspeed = fp.Mach * props.SpeedOfSound
	default:
		return fmt.Errorf("%w: %s needs one of TAS, EAS or Mach", ErrIncompleteFlightPoint, sg.name)
	}
	fp.EquivalentAirspeed = fp.TrueAirspeed * math.Sqrt(props.Density/rho0)
	fp.Mach = fp.TrueAirspeed / props.SpeedOfSound
	return nil
}

// dynamicPressure at the point, from the segment's atmosphere.
func (sg *segment) dynamicPressure(fp FlightPoint) float64 {
	props := sg.atmosphere.Properties(fp.Altitude)
	return 0.5 * props.Density * fp.TrueAirspeed * fp.TrueAirspeed
}

// optimalAltitude returns the altitude at which the current mass flies at the
// polar's optimal CL for the given Mach number.
func (sg *segment) optimalAltitude(mass, mach float64) float64 {
	// q = 0.7 p M^2, so the optimal CL pins the static pressure.
	clOpt := sg.polar.OptimalCL()
	pressure := mass * g0 / (0.7 * mach * mach * sg.referenceArea * clOpt)
	alt := altitudeForPressure(sg.atmosphere, pressure)
	return math.Min(alt, sg.maxAltitude)
}

/* Thrust strategies: how the thrust fields of a point get filled. */

type thrustStrategy interface {
	apply(sg *segment, fp *FlightPoint) error
}

// manualThrust applies a prescribed thrust rate and reads the resulting
// thrust and SFC off the propulsion deck.
type manualThrust struct {
	rate float64
}

func (ts manualThrust) apply(sg *segment, fp *FlightPoint) error {
	fp.ThrustRate = ts.rate
	fp.Thrust = math.NaN()
	return sg.propulsion.Compute(fp)
}

// regulatedThrust asks the propulsion deck for the thrust rate and SFC
// matching the thrust which balances drag (level flight assumption).
type regulatedThrust struct{}

func (ts regulatedThrust) apply(sg *segment, fp *FlightPoint) error {
	fp.Thrust = fp.Drag
	fp.ThrustRate = math.NaN()
	return sg.propulsion.Compute(fp)
}

/* Lift strategies: where the lift coefficient comes from. */

type liftStrategy interface {
	apply(sg *segment, fp *FlightPoint) error
}

// airborneLift derives CL from the weight and the dynamic pressure, then CD
// and drag from the polar.
type airborneLift struct{}

func (ls airborneLift) apply(sg *segment, fp *FlightPoint) error {
	if !isSet(fp.Mass) {
		return fmt.Errorf("%w: %s needs a mass", ErrIncompleteFlightPoint, sg.name)
	}
	q := sg.dynamicPressure(*fp)
	if q <= 0 {
		return fmt.Errorf("%w: %s has no dynamic pressure (TAS=%f)", ErrIncompleteFlightPoint, sg.name, fp.TrueAirspeed)
	}
	fp.CL = fp.Mass * g0 / (q * sg.referenceArea)
	fp.CD = sg.polar.CD(fp.CL)
	fp.Drag = q * sg.referenceArea * fp.CD
	return nil
}

// groundLift is for parts rolling on the runway: no lift balance, no drag
// bookkeeping, the prescribed thrust rate only burns fuel.
type groundLift struct{}

func (ls groundLift) apply(sg *segment, fp *FlightPoint) error {
	fp.CL = 0
	fp.CD = 0
	fp.Drag = 0
	if !isSet(fp.TrueAirspeed) {
		fp.TrueAirspeed = 0
		fp.EquivalentAirspeed = 0
		fp.Mach = 0
	}
	return nil
}
