// Package tsp - shared types, options and sentinel errors.
package tsp

import (
	"errors"
	"math/rand"
	"time"
)

// Sentinel errors. Solvers return them directly or wrapped with %w.
var (
	// ErrDimensionMismatch indicates an invalid shape: nil matrix, an order
	// that is not a permutation of 0..n-1, or a NaN weight.
	ErrDimensionMismatch = errors.New("tsp: dimension mismatch")

	// ErrNonSquare indicates that the distance matrix is not square.
	ErrNonSquare = errors.New("tsp: matrix is not square")

	// ErrNegativeWeight indicates a negative changeover cost.
	ErrNegativeWeight = errors.New("tsp: negative weight")

	// ErrIncompleteGraph is returned when no Hamiltonian path avoids +Inf edges.
	ErrIncompleteGraph = errors.New("tsp: no finite Hamiltonian path")

	// ErrTooManyNodes is returned by HeldKarpPath when n exceeds Options.MaxExactNodes.
	ErrTooManyNodes = errors.New("tsp: instance too large for exact solver")

	// ErrUnsupportedAlgorithm is returned by SolvePath for an unknown Algorithm.
	ErrUnsupportedAlgorithm = errors.New("tsp: unsupported algorithm")

	// ErrInvalidOptions is returned when Options carry negative or out-of-range knobs.
	ErrInvalidOptions = errors.New("tsp: invalid options")
)

// Algorithm selects a solver in SolvePath.
type Algorithm uint8

const (
	// HeldKarp is the exact bitmask dynamic program.
	HeldKarp Algorithm = iota
	// Heuristic is the time-bounded multi-start local search.
	Heuristic
)

// String returns the wire name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case HeldKarp:
		return "heldKarp"
	case Heuristic:
		return "heuristic"
	default:
		return "unknown"
	}
}

// Defaults applied to zero-valued Options fields.
const (
	DefaultTimeBudget           = 2500 * time.Millisecond
	DefaultEps                  = 1e-9
	DefaultTwoOptMaxPasses      = 50
	DefaultThreeOptMinIters     = 40
	DefaultThreeOptItersPerNode = 4
	DefaultMaxExactNodes        = 20
	DefaultProgressStep         = 0.02

	// hardExactLimit bounds MaxExactNodes: n·2ⁿ float64 + int8 tables at n=24
	// already take ~3.6 GiB.
	hardExactLimit = 24
)

// ProgressFunc receives a completion fraction in [0,1] and the number of
// search nodes explored so far. Calls for one solve are non-decreasing in
// fraction and happen on the solver's goroutine.
type ProgressFunc func(fraction float64, nodesExplored int64)

// Options configures the solvers. Zero values select the defaults above.
type Options struct {
	// Algo is used by SolvePath only.
	Algo Algorithm

	// TimeBudget is the wall-clock budget of HeuristicPath.
	TimeBudget time.Duration

	// Rand, when non-nil, is the random source of the heuristic. It must not
	// be shared with another goroutine while a solve runs.
	Rand *rand.Rand

	// Seed seeds a private source when Rand is nil; 0 behaves like 1.
	Seed int64

	// Eps is the minimal improvement accepted by local search.
	Eps float64

	// TwoOptMaxPasses caps full 2-opt scans per local search.
	TwoOptMaxPasses int

	// ThreeOptMinIters and ThreeOptItersPerNode give the randomized 3-opt
	// iteration count max(ThreeOptMinIters, ThreeOptItersPerNode·n).
	ThreeOptMinIters     int
	ThreeOptItersPerNode int

	// MaxExactNodes is the largest n HeldKarpPath accepts.
	MaxExactNodes int

	// ProgressStep is the minimal fraction increase between two Progress calls.
	ProgressStep float64

	// Progress is optional.
	Progress ProgressFunc
}

// DefaultOptions returns Options with every knob set to its default.
func DefaultOptions() Options {
	return Options{
		Algo:                 Heuristic,
		TimeBudget:           DefaultTimeBudget,
		Eps:                  DefaultEps,
		TwoOptMaxPasses:      DefaultTwoOptMaxPasses,
		ThreeOptMinIters:     DefaultThreeOptMinIters,
		ThreeOptItersPerNode: DefaultThreeOptItersPerNode,
		MaxExactNodes:        DefaultMaxExactNodes,
		ProgressStep:         DefaultProgressStep,
	}
}

// withDefaults returns a copy of o where zero-valued knobs take their defaults.
func (o Options) withDefaults() Options {
	if o.TimeBudget == 0 {
		o.TimeBudget = DefaultTimeBudget
	}
	if o.Eps == 0 {
		o.Eps = DefaultEps
	}
	if o.TwoOptMaxPasses == 0 {
		o.TwoOptMaxPasses = DefaultTwoOptMaxPasses
	}
	if o.ThreeOptMinIters == 0 {
		o.ThreeOptMinIters = DefaultThreeOptMinIters
	}
	if o.ThreeOptItersPerNode == 0 {
		o.ThreeOptItersPerNode = DefaultThreeOptItersPerNode
	}
	if o.MaxExactNodes == 0 {
		o.MaxExactNodes = DefaultMaxExactNodes
	}
	if o.ProgressStep == 0 {
		o.ProgressStep = DefaultProgressStep
	}

	return o
}

// Result holds the outcome of a path solver.
type Result struct {
	// Order is a permutation of 0..n-1: the visiting sequence.
	Order []int

	// Cost is the sum of the n−1 edge weights along Order.
	Cost float64

	// NodesExplored counts DP relaxations (exact) or evaluated moves (heuristic).
	NodesExplored int64
}
