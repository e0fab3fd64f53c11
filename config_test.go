package fmsim

import "testing"

func TestConfigDefaults(t *testing.T) {
	cfg := fmsimConfig()
	if cfg.maxFlightLevel != 500 {
		t.Fatalf("default max flight level %f", cfg.maxFlightLevel)
	}
	if cfg.maxSegmentSteps != 10000 {
		t.Fatalf("default segment step cap %d", cfg.maxSegmentSteps)
	}
	if cfg.distanceAccuracy != 500 || cfg.fuelAccuracy != 10 {
		t.Fatalf("default solver accuracies %f / %f", cfg.distanceAccuracy, cfg.fuelAccuracy)
	}
	if cfg.climbTimeStep != 2 || cfg.cruiseTimeStep != 5 || cfg.taxiTimeStep != 5 {
		t.Fatalf("default time steps %f / %f / %f", cfg.climbTimeStep, cfg.cruiseTimeStep, cfg.taxiTimeStep)
	}
	if cfg.outputDir != "." {
		t.Fatalf("default output dir %q", cfg.outputDir)
	}
}
