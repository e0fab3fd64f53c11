package fmsim

import (
	"fmt"

	"github.com/go-kit/kit/log"
	"github.com/spf13/viper"
)

// Scenario file layout, TOML. The [mission], [aircraft] and [start] tables are
// scalar settings; flight parts are declared in order as [[part]] tables, each
// carrying a `kind` keyword resolved through the segment registry. A part of
// kind "route" nests [[part.climb]], [part.cruise] and [[part.descent]].

type scenarioDef struct {
	Mission  missionDef
	Aircraft aircraftDef
	Start    pointDef
	Parts    []partDef `mapstructure:"part"`
	Export   exportDef
}

type missionDef struct {
	Name         string
	TargetFuel   *float64 `mapstructure:"target_fuel"`
	FuelAccuracy float64  `mapstructure:"fuel_accuracy"`
	ReserveRatio float64  `mapstructure:"reserve_ratio"`
	ReserveRoute string   `mapstructure:"reserve_route"`
}

type aircraftDef struct {
	ReferenceArea     float64 `mapstructure:"reference_area"`
	MaxThrust         float64 `mapstructure:"max_thrust"`
	SFC               float64 `mapstructure:"sfc"`
	CD0               float64 `mapstructure:"cd0"`
	K                 float64 `mapstructure:"k"`
	TemperatureOffset float64 `mapstructure:"temperature_offset"`
}

// pointDef declares the numeric fields of a flight point. Absent keys stay
// unset, so segments derive them instead.
type pointDef struct {
	Time               *float64 `mapstructure:"duration"`
	Altitude           *float64
	Mass               *float64
	TrueAirspeed       *float64 `mapstructure:"true_airspeed"`
	EquivalentAirspeed *float64 `mapstructure:"equivalent_airspeed"`
	Mach               *float64
	GroundDistance     *float64 `mapstructure:"ground_distance"`
	Relative           []string
}

type partDef struct {
	Kind string
	Name string
	// Segment settings.
	Target               pointDef
	SpeedLaw             string  `mapstructure:"speed_law"`
	EngineSetting        string  `mapstructure:"engine_setting"`
	ThrustRate           float64 `mapstructure:"thrust_rate"`
	TimeStep             float64 `mapstructure:"time_step"`
	MaxFlightLevel       float64 `mapstructure:"max_flight_level"`
	MaxCL                float64 `mapstructure:"max_cl"`
	InterruptIfDiverging bool    `mapstructure:"interrupt_if_diverging"`
	UseMaxLiftDrag       bool    `mapstructure:"use_max_lift_drag"`
	// Route settings.
	FlightDistance   float64   `mapstructure:"flight_distance"`
	DistanceAccuracy float64   `mapstructure:"distance_accuracy"`
	Climb            []partDef `mapstructure:"climb"`
	Cruise           *partDef  `mapstructure:"cruise"`
	Descent          []partDef `mapstructure:"descent"`
}

type exportDef struct {
	Filename  string
	CSV       bool
	Timestamp bool
}

var fieldsByKey = map[string]FieldSet{
	"duration":            FieldTime,
	"altitude":            FieldAltitude,
	"mass":                FieldMass,
	"true_airspeed":       FieldTrueAirspeed,
	"equivalent_airspeed": FieldEquivalentAirspeed,
	"mach":                FieldMach,
	"ground_distance":     FieldGroundDistance,
}

func (pd pointDef) toPoint() (FlightPoint, error) {
	fp := NewFlightPoint()
	assign := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&fp.Time, pd.Time)
	assign(&fp.Altitude, pd.Altitude)
	assign(&fp.Mass, pd.Mass)
	assign(&fp.TrueAirspeed, pd.TrueAirspeed)
	assign(&fp.EquivalentAirspeed, pd.EquivalentAirspeed)
	assign(&fp.Mach, pd.Mach)
	assign(&fp.GroundDistance, pd.GroundDistance)
	for _, key := range pd.Relative {
		f, ok := fieldsByKey[key]
		if !ok {
			return fp, fmt.Errorf("%w: relative field %q", ErrUnknownMissionElement, key)
		}
		fp.Relative |= f
	}
	return fp, nil
}

func speedLawFromString(s string) (SpeedLaw, error) {
	switch s {
	case "", "constant_tas":
		return ConstantTAS, nil
	case "constant_eas":
		return ConstantEAS, nil
	case "constant_mach":
		return ConstantMach, nil
	}
	return ConstantTAS, fmt.Errorf("%w: speed law %q", ErrUnknownMissionElement, s)
}

func engineSettingFromString(s string) (EngineSetting, error) {
	switch s {
	case "":
		return 0, nil
	case "takeoff":
		return SettingTakeoff, nil
	case "climb":
		return SettingClimb, nil
	case "cruise":
		return SettingCruise, nil
	case "idle":
		return SettingIdle, nil
	}
	return 0, fmt.Errorf("%w: engine setting %q", ErrUnknownMissionElement, s)
}

// MissionBuilder turns a viper scenario into a computable Mission. The
// aircraft models are shared by every built segment.
type MissionBuilder struct {
	logger log.Logger

	propulsion Propulsion
	polar      Polar
	atmosphere Atmosphere
	refArea    float64
}

// NewMissionBuilder returns a builder logging through the provided logger.
func NewMissionBuilder(logger log.Logger) *MissionBuilder {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &MissionBuilder{logger: logger}
}

// Build reads the scenario held by v and assembles the mission and its start
// point. The returned mission is ready for ComputeFrom.
func (mb *MissionBuilder) Build(v *viper.Viper) (*Mission, FlightPoint, error) {
	var sc scenarioDef
	start := NewFlightPoint()
	if err := v.Unmarshal(&sc); err != nil {
		return nil, start, fmt.Errorf("scenario: %w", err)
	}
	if len(sc.Parts) == 0 {
		return nil, start, fmt.Errorf("scenario: no [[part]] declared")
	}

	mb.propulsion = NewRubberTurbofan(sc.Aircraft.MaxThrust, sc.Aircraft.SFC)
	mb.polar = QuadraticPolar{CD0: sc.Aircraft.CD0, K: sc.Aircraft.K}
	mb.atmosphere = ISA{TemperatureOffset: sc.Aircraft.TemperatureOffset}
	mb.refArea = sc.Aircraft.ReferenceArea

	export := ExportConfig{Filename: sc.Export.Filename, AsCSV: sc.Export.CSV, Timestamp: sc.Export.Timestamp}
	name := sc.Mission.Name
	if name == "" {
		name = "mission"
	}
	mission := NewMission(name, export, mb.logger)

	for i, pd := range sc.Parts {
		partName := pd.Name
		if partName == "" {
			partName = fmt.Sprintf("%s_%d", pd.Kind, i)
		}
		part, err := mb.buildPart(pd)
		if err != nil {
			return nil, start, fmt.Errorf("part %q: %w", partName, err)
		}
		mission.Add(partName, part)
	}

	if sc.Mission.TargetFuel != nil {
		mission.SetTargetFuelConsumption(*sc.Mission.TargetFuel)
	}
	if sc.Mission.FuelAccuracy > 0 {
		mission.SetFuelAccuracy(sc.Mission.FuelAccuracy)
	}
	if sc.Mission.ReserveRatio > 0 {
		mission.SetReserve(sc.Mission.ReserveRatio, sc.Mission.ReserveRoute)
	}

	start, err := sc.Start.toPoint()
	if err != nil {
		return nil, start, err
	}
	if !isSet(start.Mass) {
		return nil, start, fmt.Errorf("%w: [start] must set mass", ErrIncompleteFlightPoint)
	}
	return mission, start, nil
}

func (mb *MissionBuilder) buildPart(pd partDef) (FlightPart, error) {
	if pd.Kind == "route" {
		return mb.buildRoute(pd)
	}
	cfg, err := mb.segmentConfig(pd)
	if err != nil {
		return nil, err
	}
	if pd.Kind == "breguet_cruise" {
		return NewBreguetCruise(cfg, pd.UseMaxLiftDrag), nil
	}
	return NewSegmentFor(pd.Kind, cfg)
}

func (mb *MissionBuilder) buildRoute(pd partDef) (*RangedRoute, error) {
	if pd.Cruise == nil {
		return nil, fmt.Errorf("route needs a [part.cruise] table")
	}
	climb := make([]FlightPart, len(pd.Climb))
	for i, cd := range pd.Climb {
		part, err := mb.buildPart(cd)
		if err != nil {
			return nil, fmt.Errorf("climb[%d]: %w", i, err)
		}
		climb[i] = part
	}
	descent := make([]FlightPart, len(pd.Descent))
	for i, dd := range pd.Descent {
		part, err := mb.buildPart(dd)
		if err != nil {
			return nil, fmt.Errorf("descent[%d]: %w", i, err)
		}
		descent[i] = part
	}
	cruisePart, err := mb.buildPart(*pd.Cruise)
	if err != nil {
		return nil, fmt.Errorf("cruise: %w", err)
	}
	cruise, ok := cruisePart.(CruisePart)
	if !ok {
		return nil, fmt.Errorf("%w: %q cannot hold the route cruise", ErrUnknownMissionElement, pd.Cruise.Kind)
	}
	route := NewRangedRoute(pd.Name, climb, cruise, descent, pd.FlightDistance, mb.logger)
	if pd.DistanceAccuracy > 0 {
		route.SetDistanceAccuracy(pd.DistanceAccuracy)
	}
	return route, nil
}

func (mb *MissionBuilder) segmentConfig(pd partDef) (SegmentConfig, error) {
	target, err := pd.Target.toPoint()
	if err != nil {
		return SegmentConfig{}, err
	}
	law, err := speedLawFromString(pd.SpeedLaw)
	if err != nil {
		return SegmentConfig{}, err
	}
	setting, err := engineSettingFromString(pd.EngineSetting)
	if err != nil {
		return SegmentConfig{}, err
	}
	return SegmentConfig{
		Name:                 pd.Name,
		Target:               target,
		Propulsion:           mb.propulsion,
		Polar:                mb.polar,
		Atmosphere:           mb.atmosphere,
		ReferenceArea:        mb.refArea,
		TimeStep:             pd.TimeStep,
		ThrustRate:           pd.ThrustRate,
		EngineSetting:        setting,
		SpeedLaw:             law,
		InterruptIfDiverging: pd.InterruptIfDiverging,
		MaxFlightLevel:       pd.MaxFlightLevel,
		MaxCL:                pd.MaxCL,
		Logger:               mb.logger,
	}, nil
}
