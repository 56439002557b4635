// Package tsp — cost utilities shared by exact/heuristic solvers.
//
// Two representations are used:
//   - PathCost: the public, strictly validated sum over an Order.
//   - pathCost: an internal (infinite-edge count, finite sum) pair that keeps
//     comparisons well defined when some transitions are +Inf. Fewer infinite
//     edges always wins; ties are broken by the finite sum.
package tsp

import (
	"math"

	"github.com/katalvlaran/lineseq/matrix"
)

// roundScale controls final cost stabilization precision (1e-9).
const roundScale = 1e9

// PathCost returns Σ dist[order[i]][order[i+1]] over the n−1 consecutive pairs.
//
// Contract:
//   - order must be a permutation of 0..n-1 where n = dist.Rows().
//   - Returns ErrNonSquare, ErrDimensionMismatch, ErrIncompleteGraph (+Inf
//     edge on the path) or ErrNegativeWeight.
//
// Complexity: O(n).
func PathCost(dist matrix.Matrix, order []int) (float64, error) {
	if dist == nil {
		return 0, ErrDimensionMismatch
	}
	if dist.Rows() != dist.Cols() {
		return 0, ErrNonSquare
	}
	n := dist.Rows()
	if err := ValidateOrder(order, n); err != nil {
		return 0, err
	}

	var (
		sum float64
		w   float64
		err error
		i   int
	)
	for i = 0; i+1 < n; i++ {
		w, err = dist.At(order[i], order[i+1])
		if err != nil || math.IsNaN(w) {
			return 0, ErrDimensionMismatch
		}
		if math.IsInf(w, 0) {
			return 0, ErrIncompleteGraph
		}
		if w < 0 {
			return 0, ErrNegativeWeight
		}
		sum += w
	}

	return round1e9(sum), nil
}

// pathCost is a lexicographic cost: number of +Inf edges, then finite sum.
type pathCost struct {
	inf int
	sum float64
}

// add accumulates a single edge weight.
func (c pathCost) add(w float64) pathCost {
	if math.IsInf(w, 1) {
		c.inf++
	} else {
		c.sum += w
	}

	return c
}

// less reports whether c improves on o by more than eps.
func (c pathCost) less(o pathCost, eps float64) bool {
	if c.inf != o.inf {
		return c.inf < o.inf
	}

	return c.sum < o.sum-eps
}

// value collapses the pair to a float (+Inf when any edge is infinite).
func (c pathCost) value() float64 {
	if c.inf > 0 {
		return math.Inf(1)
	}

	return round1e9(c.sum)
}

// costOf evaluates order on the prefetched weights.
//
// Complexity: O(n).
func costOf(w []float64, n int, order []int) pathCost {
	var (
		c pathCost
		i int
	)
	for i = 0; i+1 < len(order); i++ {
		c = c.add(w[order[i]*n+order[i+1]])
	}

	return c
}

// round1e9 returns x rounded to 1e-9 absolute precision.
// This keeps costs stable across platforms without affecting algorithmic correctness.
//
// Complexity: O(1).
func round1e9(x float64) float64 {
	if math.IsInf(x, 0) {
		return x
	}

	return math.Round(x*roundScale) / roundScale
}
