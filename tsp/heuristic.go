// Package tsp - time-bounded heuristic for the minimum Hamiltonian path.
//
// Pipeline:
//  1. Multi-start nearest neighbor from every node; keep the best path.
//  2. Local search on it: 2-opt to a local optimum, then randomized 3-opt,
//     repeated while 3-opt finds improvements.
//  3. Until the deadline: shuffle a random order, run the same local search,
//     keep it when strictly better.
//
// The first construction always completes, so even a zero budget yields a
// full permutation. Everything after it obeys the deadline.
package tsp

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/katalvlaran/lineseq/matrix"
)

// exhaustiveMaxNodes is the largest n solved by enumerating every order.
const exhaustiveMaxNodes = 3

// deadline combines a wall-clock limit and a context.
// A nil *deadline never expires.
type deadline struct {
	ctx context.Context
	at  time.Time
}

func noDeadline() *deadline { return nil }

func (d *deadline) expired() bool {
	if d == nil {
		return false
	}
	if d.ctx != nil && d.ctx.Err() != nil {
		return true
	}

	return !d.at.IsZero() && !time.Now().Before(d.at)
}

// HeuristicPath returns a good open path within opts.TimeBudget.
//
// Contract:
//   - n ≤ 3 is solved exactly by enumeration.
//   - Randomness comes only from opts.Rand or opts.Seed; with a fixed seed and
//     a budget large enough to finish the same work, results are reproducible.
//   - opts.Progress receives elapsed/budget capped at 0.95, then 1.0 at the end.
//   - On ctx cancellation the best order found so far is returned with ctx.Err().
//
// Errors: validation errors, ErrIncompleteGraph when every order found uses a
// +Inf edge, context errors.
//
// Complexity: O(n³) for construction plus budgeted local search.
func HeuristicPath(ctx context.Context, dist matrix.Matrix, opts Options) (Result, error) {
	if err := validateOptions(opts); err != nil {
		return Result{}, err
	}
	opts = opts.withDefaults()

	n, err := validateDist(dist)
	if err != nil {
		return Result{}, err
	}
	w, err := loadWeights(dist, n)
	if err != nil {
		return Result{}, err
	}

	progress := newProgressReporter(opts.Progress, opts.ProgressStep)
	if n <= exhaustiveMaxNodes {
		order, c, nodes := exhaustivePath(w, n)
		progress.finish(nodes)

		return finishHeuristic(order, c, nodes)
	}

	var (
		start = time.Now()
		dl    = &deadline{ctx: ctx, at: start.Add(opts.TimeBudget)}
		rng   = rngFor(opts)
		nodes int64
		best  []int
		bestC pathCost
		cand  []int
		c     pathCost
		s     int
	)
	tick := func() {
		f := float64(time.Since(start)) / float64(opts.TimeBudget)
		progress.report(math.Min(f, heuristicProgressCap), nodes)
	}

	// 1. multi-start nearest neighbor
	for s = 0; s < n; s++ {
		if s > 0 && dl.expired() {
			break
		}
		cand = nearestNeighborPath(w, n, s)
		nodes += int64(n)
		c = costOf(w, n, cand)
		if best == nil || c.less(bestC, opts.Eps) {
			best, bestC = cand, c
		}
	}
	tick()

	// 2. local search on the constructed path
	bestC = localSearch(w, n, best, opts, rng, dl, &nodes)
	tick()

	// 3. random restarts
	cand = make([]int, n)
	for !dl.expired() {
		copy(cand, identityOrder(n))
		shuffleOrder(cand, rng)
		c = localSearch(w, n, cand, opts, rng, dl, &nodes)
		if c.less(bestC, opts.Eps) {
			copy(best, cand)
			bestC = c
		}
		tick()
	}

	if err = ctx.Err(); err != nil {
		return Result{Order: best, Cost: bestC.value(), NodesExplored: nodes}, err
	}
	progress.finish(nodes)

	return finishHeuristic(best, bestC, nodes)
}

// localSearch alternates 2-opt and 3-opt on order in place until 3-opt stops
// improving or dl expires. Returns the final cost.
func localSearch(w []float64, n int, order []int, opts Options, rng *rand.Rand, dl *deadline, nodes *int64) pathCost {
	iters := threeOptIters(n, opts)
	for {
		twoOptPath(w, n, order, opts.Eps, opts.TwoOptMaxPasses, dl, nodes)
		if dl.expired() {
			break
		}
		if !threeOptPath(w, n, order, opts.Eps, iters, rng, dl, nodes) || dl.expired() {
			break
		}
	}

	return costOf(w, n, order)
}

// exhaustivePath enumerates every permutation (n ≤ 3) in lexicographic order
// and keeps the first minimum.
func exhaustivePath(w []float64, n int) ([]int, pathCost, int64) {
	var (
		perm  = identityOrder(n)
		best  = copyOrder(perm)
		bestC = costOf(w, n, perm)
		c     pathCost
		nodes int64 = 1
	)
	for nextPermutation(perm) {
		nodes++
		c = costOf(w, n, perm)
		if c.less(bestC, 0) {
			copy(best, perm)
			bestC = c
		}
	}

	return best, bestC, nodes
}

// nextPermutation advances a to its lexicographic successor. Returns false on the last one.
func nextPermutation(a []int) bool {
	i := len(a) - 2
	for i >= 0 && a[i] >= a[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(a) - 1
	for a[j] <= a[i] {
		j--
	}
	a[i], a[j] = a[j], a[i]
	reverseInPlace(a, i+1, len(a)-1)

	return true
}

func finishHeuristic(order []int, c pathCost, nodes int64) (Result, error) {
	if c.inf > 0 {
		return Result{Order: order, Cost: c.value(), NodesExplored: nodes}, ErrIncompleteGraph
	}

	return Result{Order: order, Cost: c.value(), NodesExplored: nodes}, nil
}
