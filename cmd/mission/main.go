package main

import (
	"flag"
	"log"
	"os"
	"strings"

	kitlog "github.com/go-kit/kit/log"
	"github.com/fast-aircraft-design/fmsim"
	"github.com/spf13/viper"
)

// This command only reads the scenario file and computes the mission.

const defaultScenario = "~~unset~~"

var (
	scenario string
	verbose  bool
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "mission scenario TOML file")
	flag.BoolVar(&verbose, "verbose", false, "log every segment warning")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	scenario = strings.Replace(scenario, ".toml", "", 1)
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName(scenario)
	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("./%s.toml: Error %s", scenario, err)
	}

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	logger = kitlog.With(logger, "subsys", "mission")
	if !verbose {
		logger = levelFilter(logger)
	}

	mission, start, err := fmsim.NewMissionBuilder(logger).Build(v)
	if err != nil {
		log.Fatalf("./%s.toml: %s", scenario, err)
	}
	path, err := mission.ComputeFrom(start)
	if err != nil {
		log.Fatalf("mission failed: %s", err)
	}

	log.Printf("mission %s: %d points, %.0f s, %.1f km, %.1f kg fuel (reserve %.1f kg)",
		scenario, len(path), path.Duration(), path.GroundDistance()/1e3, path.FuelBurned(), mission.ReserveFuel())
}

// levelFilter drops the per-step warnings and keeps everything else.
func levelFilter(next kitlog.Logger) kitlog.Logger {
	return kitlog.LoggerFunc(func(keyvals ...interface{}) error {
		for i := 0; i+1 < len(keyvals); i += 2 {
			if keyvals[i] == "level" && keyvals[i+1] == "warning" {
				return nil
			}
		}
		return next.Log(keyvals...)
	})
}
