package fmsim

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

var (
	cfgLoaded = false
	config    = _fmsimconfig{}
)

// _fmsimconfig is a "hidden" struct, just use `fmsimConfig`.
type _fmsimconfig struct {
	outputDir        string
	maxFlightLevel   float64 // ceiling applied to every segment, in flight levels
	maxSegmentSteps  int     // hard limit on one segment integration
	distanceAccuracy float64 // m, route distance solver default tolerance
	fuelAccuracy     float64 // kg, mission fuel solver default tolerance
	climbTimeStep    float64 // s
	cruiseTimeStep   float64 // s
	taxiTimeStep     float64 // s
}

func defaultConfig() _fmsimconfig {
	return _fmsimconfig{
		outputDir:        ".",
		maxFlightLevel:   500,
		maxSegmentSteps:  10000,
		distanceAccuracy: 500,
		fuelAccuracy:     10,
		climbTimeStep:    2,
		cruiseTimeStep:   5,
		taxiTimeStep:     5,
	}
}

// fmsimConfig returns the fmsim configuration. Defaults apply when the
// FMSIM_CONFIG environment variable is unset; otherwise it must point to a
// directory holding a conf.toml overriding them.
func fmsimConfig() _fmsimconfig {
	if cfgLoaded {
		return config
	}
	config = defaultConfig()
	confPath := os.Getenv("FMSIM_CONFIG")
	if confPath == "" {
		cfgLoaded = true
		return config
	}
	v := viper.New()
	v.SetConfigName("conf")
	v.AddConfigPath(confPath)
	if err := v.ReadInConfig(); err != nil {
		panic(fmt.Errorf("%s/conf.toml not found", confPath))
	}
	if v.IsSet("general.output_path") {
		config.outputDir = v.GetString("general.output_path")
	}
	if v.IsSet("defaults.max_flight_level") {
		config.maxFlightLevel = v.GetFloat64("defaults.max_flight_level")
	}
	if v.IsSet("defaults.max_segment_steps") {
		config.maxSegmentSteps = v.GetInt("defaults.max_segment_steps")
	}
	if v.IsSet("defaults.climb_time_step") {
		config.climbTimeStep = v.GetFloat64("defaults.climb_time_step")
	}
	if v.IsSet("defaults.cruise_time_step") {
		config.cruiseTimeStep = v.GetFloat64("defaults.cruise_time_step")
	}
	if v.IsSet("defaults.taxi_time_step") {
		config.taxiTimeStep = v.GetFloat64("defaults.taxi_time_step")
	}
	if v.IsSet("solvers.distance_accuracy") {
		config.distanceAccuracy = v.GetFloat64("solvers.distance_accuracy")
	}
	if v.IsSet("solvers.fuel_accuracy") {
		config.fuelAccuracy = v.GetFloat64("solvers.fuel_accuracy")
	}
	cfgLoaded = true
	return config
}
