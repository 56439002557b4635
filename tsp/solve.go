// Package tsp - unified dispatcher for path solvers.
//
// SolvePath validates inputs and routes to the solver selected by opts.Algo:
//
//   - HeldKarp:  exact DP, bounded by MaxExactNodes.
//   - Heuristic: multi-start nearest neighbor + 2-opt/3-opt within TimeBudget.
//
// Design principles:
//   - Deterministic: randomness comes only from opts.Rand / opts.Seed.
//   - Strict sentinels: only errors from types.go (possibly wrapped).
//   - Stable cost: all returned costs are rounded to 1e−9.
package tsp

import (
	"context"

	"github.com/katalvlaran/lineseq/matrix"
)

// SolvePath validates inputs and routes to the chosen algorithm.
//
// Errors: ErrUnsupportedAlgorithm for an unknown opts.Algo, otherwise those of
// HeldKarpPath and HeuristicPath.
//
// Complexity: per algorithm (see exact.go, heuristic.go).
func SolvePath(ctx context.Context, dist matrix.Matrix, opts Options) (Result, error) {
	switch opts.Algo {
	case HeldKarp:
		return HeldKarpPath(ctx, dist, opts)
	case Heuristic:
		return HeuristicPath(ctx, dist, opts)
	default:
		return Result{}, ErrUnsupportedAlgorithm
	}
}
