package fmsim

import (
	"fmt"
	"math"

	"github.com/gonum/matrix/mat64"
)

// Polar gives the drag coefficient of the aircraft as a function of its lift
// coefficient. Implementations must be immutable and pure.
type Polar interface {
	// CD returns the drag coefficient for the provided lift coefficient.
	CD(cl float64) float64
	// OptimalCL returns the lift coefficient which maximizes CL/CD.
	OptimalCL() float64
}

// QuadraticPolar is the usual parabolic drag polar CD = CD0 + K*CL^2.
type QuadraticPolar struct {
	CD0 float64
	K   float64
}

// CD implements the Polar interface.
func (p QuadraticPolar) CD(cl float64) float64 {
	return p.CD0 + p.K*cl*cl
}

// OptimalCL implements the Polar interface.
func (p QuadraticPolar) OptimalCL() float64 {
	return math.Sqrt(p.CD0 / p.K)
}

// MaxLiftToDrag returns the best achievable CL/CD ratio.
func (p QuadraticPolar) MaxLiftToDrag() float64 {
	return p.OptimalCL() / p.CD(p.OptimalCL())
}

func (p QuadraticPolar) String() string {
	return fmt.Sprintf("CD = %.4f + %.4f CL^2", p.CD0, p.K)
}

// FitQuadraticPolar least-squares fits a parabolic polar onto tabulated
// (CL, CD) points, e.g. coming from a higher fidelity aerodynamic code.
func FitQuadraticPolar(cl, cd []float64) (QuadraticPolar, error) {
	if len(cl) != len(cd) {
		return QuadraticPolar{}, fmt.Errorf("fmsim: polar fit needs matching CL/CD tables, got %d and %d points", len(cl), len(cd))
	}
	if len(cl) < 2 {
		return QuadraticPolar{}, fmt.Errorf("fmsim: polar fit needs at least two points, got %d", len(cl))
	}
	a := mat64.NewDense(len(cl), 2, nil)
	b := mat64.NewVector(len(cd), nil)
	for i := range cl {
		a.Set(i, 0, 1)
		a.Set(i, 1, cl[i]*cl[i])
		b.SetVec(i, cd[i])
	}
	var qr mat64.QR
	qr.Factorize(a)
	var sol mat64.Dense
	if err := sol.SolveQR(&qr, false, b); err != nil {
		return QuadraticPolar{}, fmt.Errorf("fmsim: polar fit failed: %s", err)
	}
	fit := QuadraticPolar{CD0: sol.At(0, 0), K: sol.At(1, 0)}
	if fit.CD0 <= 0 || fit.K <= 0 {
		return fit, fmt.Errorf("fmsim: polar fit returned non physical coefficients (%s)", fit)
	}
	return fit, nil
}
