package fmsim

import "errors"

// Sentinel errors of the mission computation core. Wrapped errors carry the
// offending part name and values; match with errors.Is.
var (
	// ErrIncompleteFlightPoint reports that a segment cannot establish its
	// distance to target because a required field is defined neither on the
	// target nor on the start point. Fatal to the segment computation.
	ErrIncompleteFlightPoint = errors.New("incomplete flight point")

	// ErrUnreachableTarget reports that the integration diverged from its
	// target or hit a ceiling. Segments do not fail on it: they truncate to
	// their best partial result and record the error on the path; sequences
	// propagate the partial result.
	ErrUnreachableTarget = errors.New("unreachable target")

	// ErrUnknownMissionElement reports a segment or phase keyword with no
	// registered implementation.
	ErrUnknownMissionElement = errors.New("unknown mission element")

	// ErrSolverNonConvergence reports that a root finder exhausted its
	// iteration budget. Always a hard failure: distances and fuel totals
	// downstream would be silently wrong.
	ErrSolverNonConvergence = errors.New("solver did not converge")
)
