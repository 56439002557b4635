// Package tsp - exact minimum Hamiltonian path via Held–Karp dynamic programming.
//
// State:
//
//	dp[mask][j] = minimal cost of a path that visits exactly the nodes of mask
//	              and ends at j ∈ mask. Every singleton {i} is a valid start.
//
// Transition:
//
//	dp[mask ∪ {k}][k] = min_j dp[mask][j] + w[j][k],  k ∉ mask, w[j][k] finite.
//
// The answer is min_j dp[full][j]; no closing edge is added.
//
// Memory layout: a flat []float64 of size 2ⁿ·n and a []int8 parent table, so
// the hard limit (24 nodes) stays addressable on 64-bit hosts.
package tsp

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/lineseq/matrix"
)

// ctxPollMask throttles cancellation checks to once every 1024 masks.
const ctxPollMask = 1<<10 - 1

// HeldKarpPath returns the optimal open path over dist.
//
// Contract:
//   - dist is square with non-negative entries; +Inf marks a forbidden transition.
//   - n ≤ opts.MaxExactNodes, otherwise ErrTooManyNodes (checked before allocation).
//   - Ties resolve to the first candidate found in mask order, then lowest end node.
//   - ctx cancellation is polled every 1024 masks and returns ctx.Err().
//   - opts.Progress, when set, receives fractions of the mask space in [0,1].
//
// Errors: ErrNonSquare, ErrDimensionMismatch, ErrNegativeWeight, ErrInvalidOptions,
// ErrTooManyNodes, ErrIncompleteGraph, context errors.
//
// Complexity: O(n²·2ⁿ) time, O(n·2ⁿ) memory.
func HeldKarpPath(ctx context.Context, dist matrix.Matrix, opts Options) (Result, error) {
	if err := validateOptions(opts); err != nil {
		return Result{}, err
	}
	opts = opts.withDefaults()

	n, err := validateDist(dist)
	if err != nil {
		return Result{}, err
	}
	if n > opts.MaxExactNodes {
		return Result{}, fmt.Errorf("%w: n=%d, max=%d", ErrTooManyNodes, n, opts.MaxExactNodes)
	}

	progress := newProgressReporter(opts.Progress, opts.ProgressStep)
	switch n {
	case 0:
		progress.finish(0)

		return Result{Order: []int{}, Cost: 0}, nil
	case 1:
		progress.finish(0)

		return Result{Order: []int{0}, Cost: 0}, nil
	}

	w, err := loadWeights(dist, n)
	if err != nil {
		return Result{}, err
	}

	var (
		full   = 1<<n - 1
		size   = (full + 1) * n
		dp     = make([]float64, size)
		parent = make([]int8, size)
		inf    = math.Inf(1)
		nodes  int64
	)
	for idx := range dp {
		dp[idx] = inf
		parent[idx] = -1
	}

	var i int
	for i = 0; i < n; i++ {
		dp[(1<<i)*n+i] = 0
	}

	var (
		mask, next int
		j, k       int
		cur, cand  float64
		rowJ, base int
		nextOff    int
	)
	totalMasks := float64(full)
	for mask = 1; mask <= full; mask++ {
		if mask&ctxPollMask == 0 {
			if err = ctx.Err(); err != nil {
				return Result{NodesExplored: nodes}, err
			}
			progress.report(float64(mask)/totalMasks, nodes)
		}
		base = mask * n
		for j = 0; j < n; j++ {
			if mask&(1<<j) == 0 {
				continue
			}
			cur = dp[base+j]
			if math.IsInf(cur, 1) {
				continue
			}
			rowJ = j * n
			for k = 0; k < n; k++ {
				if mask&(1<<k) != 0 {
					continue
				}
				if math.IsInf(w[rowJ+k], 1) {
					continue
				}
				nodes++
				cand = cur + w[rowJ+k]
				next = mask | 1<<k
				nextOff = next*n + k
				if cand < dp[nextOff] {
					dp[nextOff] = cand
					parent[nextOff] = int8(j)
				}
			}
		}
	}

	var (
		bestEnd  = -1
		bestCost = inf
		fullOff  = full * n
	)
	for j = 0; j < n; j++ {
		if dp[fullOff+j] < bestCost {
			bestCost = dp[fullOff+j]
			bestEnd = j
		}
	}
	if bestEnd < 0 {
		return Result{NodesExplored: nodes}, ErrIncompleteGraph
	}

	order := make([]int, n)
	var (
		pos  = n - 1
		node = bestEnd
		prev int8
	)
	mask = full
	for node >= 0 {
		order[pos] = node
		pos--
		prev = parent[mask*n+node]
		mask &^= 1 << node
		node = int(prev)
	}

	progress.finish(nodes)

	return Result{Order: order, Cost: round1e9(bestCost), NodesExplored: nodes}, nil
}
