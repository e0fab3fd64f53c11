package fmsim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecantSimpleRoot(t *testing.T) {
	evals := 0
	f := func(x float64) (float64, error) {
		evals++
		return x*x - 4, nil
	}
	root, err := secant(f, 1, 3, 1e-9, maxSecantIterations)
	require.NoError(t, err)
	assert.InDelta(t, 2, root, 1e-6)
	assert.Less(t, evals, 10, "secant should converge fast on a smooth objective")
}

func TestSecantAlreadyConverged(t *testing.T) {
	f := func(x float64) (float64, error) { return 0.1 * (x - 5), nil }
	root, err := secant(f, 5, 100, 0.5, maxSecantIterations)
	require.NoError(t, err)
	assert.Equal(t, 5.0, root, "a converged seed returns without iterating")
}

func TestSecantNonConvergence(t *testing.T) {
	// No root: the objective is bounded away from zero.
	f := func(x float64) (float64, error) { return math.Atan(x) + 2, nil }
	_, err := secant(f, 0, 1, 1e-9, maxSecantIterations)
	require.ErrorIs(t, err, ErrSolverNonConvergence)
}

func TestSecantFlatObjective(t *testing.T) {
	f := func(x float64) (float64, error) { return 1, nil }
	_, err := secant(f, 0, 1, 1e-9, maxSecantIterations)
	require.ErrorIs(t, err, ErrSolverNonConvergence)
}

func TestSecantPropagatesErrors(t *testing.T) {
	boom := errors.New("model blew up")
	f := func(x float64) (float64, error) { return 0, boom }
	_, err := secant(f, 0, 1, 1e-9, maxSecantIterations)
	require.ErrorIs(t, err, boom)
}

func TestSecantReportsLastEvaluation(t *testing.T) {
	// The returned abscissa is the one of the latest call to f, so callers
	// may reuse state cached during that evaluation.
	var lastX float64
	f := func(x float64) (float64, error) {
		lastX = x
		return x - 7, nil
	}
	root, err := secant(f, 0, 1, 1e-9, maxSecantIterations)
	require.NoError(t, err)
	assert.Equal(t, lastX, root)
}
