package fmsim

import (
	"fmt"
	"math"
)

// Propulsion defines the engine deck consumed by flight segments.
//
// Compute fills in the missing one of {Thrust, ThrustRate} plus SFC on the
// provided point: with ThrustRate set, the resulting thrust is read off the
// deck (manual thrust); with Thrust set, the rate needed to produce it is
// computed (regulated thrust). Implementations may keep internal caches but
// must be safe to call repeatedly with the same input.
type Propulsion interface {
	Compute(fp *FlightPoint) error
}

/* Available engine decks */

// RubberTurbofan is a simple scalable turbofan deck: sea level static thrust
// lapsed with density ratio and Mach number, and a constant-core SFC degraded
// with altitude. It is good enough for design-loop mission studies where no
// manufacturer deck is available.
type RubberTurbofan struct {
	MaxThrust float64 // N, sea level static, all engines
	SFC       float64 // kg/N/s at cruise conditions
	LapseExp  float64 // density ratio exponent, typically 0.7-1.0
}

// NewRubberTurbofan returns a rubber turbofan deck with the usual lapse.
func NewRubberTurbofan(maxThrust, sfc float64) *RubberTurbofan {
	return &RubberTurbofan{MaxThrust: maxThrust, SFC: sfc, LapseExp: 0.85}
}

// available returns the max thrust at the point's flight condition.
func (t *RubberTurbofan) available(fp *FlightPoint) float64 {
	sigma := ISA{}.Properties(fp.Altitude).Density / ISA{}.Properties(0).Density
	lapse := math.Pow(sigma, t.LapseExp)
	mach := fp.Mach
	if !isSet(mach) {
		mach = 0
	}
	// Ram drag penalty grows with Mach.
	return t.MaxThrust * lapse * (1 - 0.25*mach)
}

// Compute implements the Propulsion interface.
func (t *RubberTurbofan) Compute(fp *FlightPoint) error {
	if !isSet(fp.Altitude) {
		return fmt.Errorf("%w: propulsion deck needs an altitude", ErrIncompleteFlightPoint)
	}
	avail := t.available(fp)
	switch {
	case isSet(fp.ThrustRate) && !isSet(fp.Thrust):
		fp.Thrust = fp.ThrustRate * avail
	case isSet(fp.Thrust) && !isSet(fp.ThrustRate):
		fp.ThrustRate = fp.Thrust / avail
	case !isSet(fp.Thrust) && !isSet(fp.ThrustRate):
		return fmt.Errorf("%w: propulsion deck needs thrust or thrust rate", ErrIncompleteFlightPoint)
	}
	// SFC degrades slightly off the cruise altitude and improves at idle.
	fp.SFC = t.SFC * (1 + 0.1*math.Abs(fp.Altitude-10000)/10000)
	if fp.EngineSetting == SettingIdle {
		fp.SFC *= 0.85
	}
	return nil
}

// ConstantPropulsion is a degenerate deck with fixed available thrust and SFC,
// mostly of interest for tests and closed-form checks.
type ConstantPropulsion struct {
	MaxThrust float64 // N
	SFCValue  float64 // kg/N/s
}

// Compute implements the Propulsion interface.
func (t ConstantPropulsion) Compute(fp *FlightPoint) error {
	switch {
	case isSet(fp.ThrustRate) && !isSet(fp.Thrust):
		fp.Thrust = fp.ThrustRate * t.MaxThrust
	case isSet(fp.Thrust) && !isSet(fp.ThrustRate):
		fp.ThrustRate = fp.Thrust / t.MaxThrust
	case !isSet(fp.Thrust) && !isSet(fp.ThrustRate):
		return fmt.Errorf("%w: propulsion deck needs thrust or thrust rate", ErrIncompleteFlightPoint)
	}
	fp.SFC = t.SFCValue
	return nil
}
