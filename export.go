package fmsim

import (
	"fmt"
	"os"
	"time"
)

// ExportConfig configures the exporting of a computed flight path.
type ExportConfig struct {
	Filename  string
	AsCSV     bool
	Timestamp bool // stamp the output file name with the creation time
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV
}

// createPathCSVFile returns a file which requires a defer close statement!
func createPathCSVFile(conf ExportConfig) *os.File {
	config := fmsimConfig()
	var filename string
	if conf.Timestamp {
		t := time.Now()
		filename = fmt.Sprintf("%s/flight-%s-%d-%02d-%02dT%02d.%02d.%02d.csv", config.outputDir, conf.Filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	} else {
		filename = fmt.Sprintf("%s/flight-%s.csv", config.outputDir, conf.Filename)
	}
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	// Header
	f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
# Altitudes and distances in m, speeds in m/s, masses in kg, thrust and drag in N, SFC in kg/N/s
name,time,altitude,mass,true_airspeed,equivalent_airspeed,mach,ground_distance,thrust,drag,CL,CD,thrust_rate,sfc,consumed_fuel`, time.Now().UTC()))
	return f
}

// StreamPath streams the points received on the channel to the configured
// CSV file, one row per point, until the channel closes.
func StreamPath(conf ExportConfig, points <-chan FlightPoint) {
	if conf.IsUseless() {
		for range points {
		}
		return
	}
	f := createPathCSVFile(conf)
	defer f.Close()
	for fp := range points {
		row := fmt.Sprintf("\n%s,%.2f,%.2f,%.2f,%.3f,%.3f,%.5f,%.1f,%.1f,%.1f,%.5f,%.5f,%.4f,%.3e,%.2f",
			fp.Name, fp.Time, fp.Altitude, fp.Mass, fp.TrueAirspeed, fp.EquivalentAirspeed, fp.Mach,
			fp.GroundDistance, fp.Thrust, fp.Drag, fp.CL, fp.CD, fp.ThrustRate, fp.SFC, fp.ConsumedFuel)
		if _, err := f.WriteString(row); err != nil {
			panic(err)
		}
	}
}
