// Package tsp - randomized 3-opt for open, asymmetric paths.
//
// Three cuts 1 ≤ i < j < k ≤ n−2 split the order into
//
//	A = o[:i], B = o[i:j], C = o[j:k], D = o[k:]
//
// and four reconnections are tried:
//
//	A + rev(B) + C + D
//	A + B + rev(C) + D
//	A + rev(B) + rev(C) + D
//	A + C + B + D          (segment swap, no reversal)
//
// Candidates are evaluated on the full path, which keeps the asymmetric cost exact.
package tsp

import (
	"math/rand"

	"github.com/katalvlaran/lineseq/matrix"
)

// threeOptMinNodes is the smallest n with at least one valid cut triple.
const threeOptMinNodes = 5

// threeOptVariants is the number of reconnections tried per cut triple.
const threeOptVariants = 4

// buildVariant writes reconnection v of order at cuts (i, j, k) into dst.
func buildVariant(dst, order []int, i, j, k, v int) {
	copy(dst, order)
	switch v {
	case 0:
		reverseInPlace(dst, i, j-1)
	case 1:
		reverseInPlace(dst, j, k-1)
	case 2:
		reverseInPlace(dst, i, j-1)
		reverseInPlace(dst, j, k-1)
	case 3:
		// A + C + B + D
		n := copy(dst[i:], order[j:k])
		copy(dst[i+n:], order[i:j])
	}
}

// threeOptPath applies iters random 3-opt attempts to order in place. Per cut
// triple the cheapest improving variant is kept. Returns true if order changed.
//
// Complexity: O(iters·n).
func threeOptPath(w []float64, n int, order []int, eps float64, iters int, rng *rand.Rand, dl *deadline, nodes *int64) bool {
	if n < threeOptMinNodes {
		return false
	}

	var (
		cand    = make([]int, n)
		bestBuf = make([]int, n)
		cur     = costOf(w, n, order)
		best    pathCost
		c       pathCost
		found   bool
		changed bool
		it, v   int
		i, j, k int
	)
	for it = 0; it < iters; it++ {
		if it > 0 && dl.expired() {
			break
		}
		i, j, k = threeCuts(n, rng)
		found = false
		for v = 0; v < threeOptVariants; v++ {
			*nodes++
			buildVariant(cand, order, i, j, k, v)
			c = costOf(w, n, cand)
			if c.less(cur, eps) && (!found || c.less(best, 0)) {
				copy(bestBuf, cand)
				best = c
				found = true
			}
		}
		if found {
			copy(order, bestBuf)
			cur = best
			changed = true
		}
	}

	return changed
}

// threeOptIters returns max(minIters, perNode·n).
func threeOptIters(n int, opts Options) int {
	it := opts.ThreeOptItersPerNode * n
	if it < opts.ThreeOptMinIters {
		it = opts.ThreeOptMinIters
	}

	return it
}

// ThreeOptPath runs randomized 3-opt on a copy of order. Randomness comes from
// opts.Rand or opts.Seed. Orders with fewer than five nodes are returned unchanged.
//
// Errors: validation errors of dist, ErrDimensionMismatch for a bad order,
// ErrIncompleteGraph when the result still uses a +Inf edge.
//
// Complexity: O(iters·n).
func ThreeOptPath(dist matrix.Matrix, order []int, opts Options) ([]int, float64, error) {
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
	threeOptPath(w, n, out, opts.Eps, threeOptIters(n, opts), rngFor(opts), noDeadline(), &nodes)

	c := costOf(w, n, out)
	if c.inf > 0 {
		return out, c.value(), ErrIncompleteGraph
	}

	return out, c.value(), nil
}
