package fmsim

import (
	"fmt"
	"math"

	"github.com/gonum/floats"
)

// maxSecantIterations bounds both the distance and the fuel matching solvers.
const maxSecantIterations = 30

// secant finds x such that |f(x)| <= tol using the secant method, seeded with
// x0 and x1. The root finder is deliberately a small local utility so that its
// iteration cap and tolerance are visible invariants.
//
// On success, the returned abscissa is always the one of the latest call to f:
// callers caching state from their last evaluation may reuse it directly.
func secant(f func(x float64) (float64, error), x0, x1, tol float64, maxIter int) (float64, error) {
	fPrev, err := f(x0)
	if err != nil {
		return x0, err
	}
	if math.Abs(fPrev) <= tol {
		return x0, nil
	}
	xPrev, x := x0, x1
	for i := 0; i < maxIter; i++ {
		fx, err := f(x)
		if err != nil {
			return x, err
		}
		if math.Abs(fx) <= tol {
			return x, nil
		}
		if floats.EqualWithinAbs(fx, fPrev, 1e-12) {
			return x, fmt.Errorf("%w: flat objective at x=%g", ErrSolverNonConvergence, x)
		}
		next := x - fx*(x-xPrev)/(fx-fPrev)
		xPrev, fPrev = x, fx
		x = next
	}
	return x, fmt.Errorf("%w: %d iterations, tolerance %g", ErrSolverNonConvergence, maxIter, tol)
}
