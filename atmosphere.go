package fmsim

import "math"

// Physical constants (SI).
const (
	g0             = 9.80665  // m/s^2
	airGasConstant = 287.058  // J/(kg.K), dry air
	heatCapRatio   = 1.4      // ratio of specific heats of air
	seaLevelTemp   = 288.15   // K
	seaLevelPress  = 101325.0 // Pa
	tropoLapseRate = 0.0065   // K/m
	tropopause     = 11000.0  // m
	stratoTemp     = 216.65   // K
	footToMeter    = 0.3048
	flightLevel    = 100 * footToMeter // one flight level, m
)

// AtmosphereProperties holds the local air properties at a given altitude.
type AtmosphereProperties struct {
	Pressure     float64 // Pa
	Density      float64 // kg/m^3
	Temperature  float64 // K
	SpeedOfSound float64 // m/s
}

// Atmosphere provides air properties as a pure function of altitude.
type Atmosphere interface {
	Properties(altitude float64) AtmosphereProperties
}

// ISA is the 1976 standard atmosphere, troposphere and lower stratosphere,
// with an optional offset to the standard temperature profile.
type ISA struct {
	TemperatureOffset float64 // K, added to the ISA temperature
}

// Properties implements the Atmosphere interface.
func (a ISA) Properties(altitude float64) AtmosphereProperties {
	var temp, press float64
	if altitude < tropopause {
		temp = seaLevelTemp - tropoLapseRate*altitude
		press = seaLevelPress * math.Pow(temp/seaLevelTemp, g0/(tropoLapseRate*airGasConstant))
	} else {
		temp = stratoTemp
		pressTropo := seaLevelPress * math.Pow(stratoTemp/seaLevelTemp, g0/(tropoLapseRate*airGasConstant))
		press = pressTropo * math.Exp(-g0*(altitude-tropopause)/(airGasConstant*stratoTemp))
	}
	temp += a.TemperatureOffset
	density := press / (airGasConstant * temp)
	return AtmosphereProperties{
		Pressure:     press,
		Density:      density,
		Temperature:  temp,
		SpeedOfSound: math.Sqrt(heatCapRatio * airGasConstant * temp),
	}
}

// seaLevelDensity of the provided atmosphere, used for EAS conversions.
func seaLevelDensity(atm Atmosphere) float64 {
	return atm.Properties(0).Density
}

// altitudeForPressure inverts the atmosphere pressure profile by bisection.
// The atmosphere interface only exposes the forward function, and pressure is
// strictly decreasing with altitude, so bisection over the flight envelope is
// enough.
func altitudeForPressure(atm Atmosphere, pressure float64) float64 {
	lo, hi := 0.0, 25000.0
	if pressure >= atm.Properties(lo).Pressure {
		return lo
	}
	if pressure <= atm.Properties(hi).Pressure {
		return hi
	}
	for i := 0; i < 60; i++ {
		mid := 0.5 * (lo + hi)
		if atm.Properties(mid).Pressure > pressure {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}
