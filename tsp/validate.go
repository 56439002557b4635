// Package tsp - validation utilities shared by the exact and heuristic solvers.
//
// Design principles:
//   - Deterministic, side-effect free functions.
//   - No logging, no panics on user input - only sentinel errors from types.go.
//   - O(n²) worst-case where n is the matrix size.
package tsp

import (
	"math"

	"github.com/katalvlaran/lineseq/matrix"
)

// validateDist checks shape and values of a changeover matrix and returns n.
//
// Contract:
//   - dist must be non-nil and square; n==0 is valid (empty instance).
//   - Off-diagonal entries must be non-negative and not NaN; +Inf is allowed.
//   - The diagonal is ignored: a path never uses self-transitions.
//
// Complexity: O(n²).
func validateDist(dist matrix.Matrix) (int, error) {
	if dist == nil {
		return 0, ErrDimensionMismatch
	}
	var (
		nr = dist.Rows()
		nc = dist.Cols()
	)
	if nr != nc {
		return 0, ErrNonSquare
	}

	var (
		n    = nr
		i, j int
		w    float64
		err  error
	)
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			if i == j {
				continue
			}
			w, err = dist.At(i, j)
			if err != nil {
				return 0, ErrDimensionMismatch
			}
			if math.IsNaN(w) {
				return 0, ErrDimensionMismatch
			}
			if w < 0 {
				return 0, ErrNegativeWeight
			}
		}
	}

	return n, nil
}

// validateOptions rejects negative knobs and MaxExactNodes beyond the hard limit.
// Zero values are legal: they select defaults (see Options.withDefaults).
//
// Complexity: O(1).
func validateOptions(opts Options) error {
	switch {
	case opts.TimeBudget < 0,
		opts.Eps < 0 || math.IsNaN(opts.Eps),
		opts.TwoOptMaxPasses < 0,
		opts.ThreeOptMinIters < 0,
		opts.ThreeOptItersPerNode < 0,
		opts.MaxExactNodes < 0 || opts.MaxExactNodes > hardExactLimit,
		opts.ProgressStep < 0 || opts.ProgressStep > 1:
		return ErrInvalidOptions
	}

	return nil
}

// loadWeights prefetches dist into a dense row-major buffer w[i*n+j] to remove
// interface indirection from hot loops. *matrix.Dense rows are copied directly.
// Diagonal entries are forced to 0.
//
// Complexity: O(n²) time and space.
func loadWeights(dist matrix.Matrix, n int) ([]float64, error) {
	w := make([]float64, n*n)

	var (
		i, j int
		x    float64
		err  error
	)
	if d, ok := dist.(*matrix.Dense); ok {
		var row []float64
		for i = 0; i < n; i++ {
			if row, err = d.Row(i); err != nil {
				return nil, ErrDimensionMismatch
			}
			copy(w[i*n:(i+1)*n], row)
			w[i*n+i] = 0
		}

		return w, nil
	}

	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			if i == j {
				continue
			}
			if x, err = dist.At(i, j); err != nil {
				return nil, ErrDimensionMismatch
			}
			w[i*n+j] = x
		}
	}

	return w, nil
}
