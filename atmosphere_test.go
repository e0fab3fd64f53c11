package fmsim

import (
	"testing"

	"github.com/gonum/floats"
)

func TestISASeaLevel(t *testing.T) {
	props := ISA{}.Properties(0)
	if !floats.EqualWithinAbs(props.Temperature, 288.15, 1e-9) {
		t.Fatalf("sea level temperature %f", props.Temperature)
	}
	if !floats.EqualWithinAbs(props.Pressure, 101325, 1e-6) {
		t.Fatalf("sea level pressure %f", props.Pressure)
	}
	if !floats.EqualWithinAbs(props.Density, 1.225, 1e-3) {
		t.Fatalf("sea level density %f", props.Density)
	}
	if !floats.EqualWithinAbs(props.SpeedOfSound, 340.3, 0.1) {
		t.Fatalf("sea level speed of sound %f", props.SpeedOfSound)
	}
}

func TestISATropopause(t *testing.T) {
	props := ISA{}.Properties(11000)
	// Standard tabulated values at the tropopause.
	if !floats.EqualWithinAbs(props.Temperature, 216.65, 1e-6) {
		t.Fatalf("tropopause temperature %f", props.Temperature)
	}
	if !floats.EqualWithinAbs(props.Pressure, 22632, 20) {
		t.Fatalf("tropopause pressure %f", props.Pressure)
	}
	// Stratosphere: temperature holds, pressure keeps dropping.
	upper := ISA{}.Properties(15000)
	if upper.Temperature != props.Temperature {
		t.Fatalf("stratosphere temperature %f", upper.Temperature)
	}
	if upper.Pressure >= props.Pressure {
		t.Fatal("pressure not decreasing in the stratosphere")
	}
}

func TestISATemperatureOffset(t *testing.T) {
	std := ISA{}.Properties(5000)
	hot := ISA{TemperatureOffset: 15}.Properties(5000)
	if !floats.EqualWithinAbs(hot.Temperature-std.Temperature, 15, 1e-9) {
		t.Fatalf("offset temperature delta %f", hot.Temperature-std.Temperature)
	}
	if hot.Density >= std.Density {
		t.Fatal("hot day should be less dense")
	}
}

func TestAltitudeForPressure(t *testing.T) {
	atm := ISA{}
	for _, alt := range []float64{0, 3000, 8000, 12000, 20000} {
		p := atm.Properties(alt).Pressure
		back := altitudeForPressure(atm, p)
		if !floats.EqualWithinAbs(back, alt, 0.01) {
			t.Fatalf("roundtrip of %f m gave %f m", alt, back)
		}
	}
	// Out of envelope pressures clamp to its edges.
	if altitudeForPressure(atm, 2e5) != 0 {
		t.Fatal("overpressure should clamp to sea level")
	}
	if altitudeForPressure(atm, 1) != 25000 {
		t.Fatal("near-vacuum should clamp to the envelope top")
	}
}
