// Package tsp - 2-opt local search for open, asymmetric paths.
//
// Move: reverse the segment order[i..k], 0 ≤ i < k ≤ n−1.
//
//	before: … a → o[i] → … → o[k] → b …
//	after:  … a → o[k] → … → o[i] → b …
//
// With asymmetric weights every inner edge changes direction, so the exact
// delta needs the backward cost of the segment. Prefix sums of forward and
// backward edge costs give it in O(1). Boundary edges that do not exist
// (i == 0 or k == n−1) contribute nothing.
//
// Infinite edges are counted, not summed, so a move that removes a forbidden
// transition is always an improvement.
package tsp

import (
	"github.com/katalvlaran/lineseq/matrix"
)

// deadlineCheckMask throttles deadline checks in move loops.
const deadlineCheckMask = 1<<8 - 1

// edgePrefix holds prefix sums of forward and backward edge costs along an order.
// fwd[t] covers edges (o[s], o[s+1]) for s < t; bwd[t] covers (o[s+1], o[s]).
type edgePrefix struct {
	fwdInf, bwdInf []int
	fwdSum, bwdSum []float64
}

func newEdgePrefix(n int) *edgePrefix {
	return &edgePrefix{
		fwdInf: make([]int, n),
		bwdInf: make([]int, n),
		fwdSum: make([]float64, n),
		bwdSum: make([]float64, n),
	}
}

// rebuild recomputes the prefix sums for order.
//
// Complexity: O(n).
func (p *edgePrefix) rebuild(w []float64, n int, order []int) {
	var (
		t    int
		f, b pathCost
	)
	for t = 0; t < n; t++ {
		p.fwdInf[t], p.fwdSum[t] = f.inf, f.sum
		p.bwdInf[t], p.bwdSum[t] = b.inf, b.sum
		if t+1 < n {
			f = f.add(w[order[t]*n+order[t+1]])
			b = b.add(w[order[t+1]*n+order[t]])
		}
	}
}

// segment returns the forward and backward cost of the inner edges of o[i..k].
func (p *edgePrefix) segment(i, k int) (fwd, bwd pathCost) {
	fwd = pathCost{inf: p.fwdInf[k] - p.fwdInf[i], sum: p.fwdSum[k] - p.fwdSum[i]}
	bwd = pathCost{inf: p.bwdInf[k] - p.bwdInf[i], sum: p.bwdSum[k] - p.bwdSum[i]}

	return fwd, bwd
}

// twoOptPath improves order in place with first-improvement 2-opt.
// It stops after maxPasses full scans without improvement, or when dl expires.
// Returns true if at least one move was applied.
//
// Complexity: O(passes·n²).
func twoOptPath(w []float64, n int, order []int, eps float64, maxPasses int, dl *deadline, nodes *int64) bool {
	if n < 2 {
		return false
	}

	var (
		pre      = newEdgePrefix(n)
		improved bool
		changed  bool
		pass     int
		i, k     int
		a, b     int
		oldC     pathCost
		newC     pathCost
		fwd, bwd pathCost
		evals    int
	)
	pre.rebuild(w, n, order)

	for pass = 0; pass < maxPasses; pass++ {
		improved = false
		for i = 0; i < n-1; i++ {
			for k = i + 1; k < n; k++ {
				evals++
				*nodes++
				if evals&deadlineCheckMask == 0 && dl.expired() {
					return changed
				}

				fwd, bwd = pre.segment(i, k)
				oldC, newC = fwd, bwd
				if i > 0 {
					a = order[i-1]
					oldC = oldC.add(w[a*n+order[i]])
					newC = newC.add(w[a*n+order[k]])
				}
				if k < n-1 {
					b = order[k+1]
					oldC = oldC.add(w[order[k]*n+b])
					newC = newC.add(w[order[i]*n+b])
				}
				if newC.less(oldC, eps) {
					reverseInPlace(order, i, k)
					pre.rebuild(w, n, order)
					improved = true
					changed = true
				}
			}
		}
		if !improved {
			break
		}
	}

	return changed
}

// TwoOptPath runs path 2-opt on a copy of order without a time limit
// (bounded by opts.TwoOptMaxPasses) and returns the improved order with its cost.
//
// Errors: validation errors of dist, ErrDimensionMismatch for a bad order,
// ErrIncompleteGraph when the result still uses a +Inf edge.
//
// Complexity: O(passes·n²).
func TwoOptPath(dist matrix.Matrix, order []int, opts Options) ([]int, float64, error) {
	if err := validateOptions(opts); err != nil {
		return nil, 0, err
	}
	opts = opts.withDefaults()

	n, err := validateDist(dist)
	if err != nil {
		return nil, 0, err
	}
	if err = ValidateOrder(order, n); err != nil {
		return nil, 0, err
	}
	w, err := loadWeights(dist, n)
	if err != nil {
		return nil, 0, err
	}

	var nodes int64
	out := copyOrder(order)
	twoOptPath(w, n, out, opts.Eps, opts.TwoOptMaxPasses, noDeadline(), &nodes)

	c := costOf(w, n, out)
	if c.inf > 0 {
		return out, c.value(), ErrIncompleteGraph
	}

	return out, c.value(), nil
}
