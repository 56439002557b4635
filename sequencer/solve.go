package sequencer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/katalvlaran/lineseq/changeover"
	"github.com/katalvlaran/lineseq/matrix"
	"github.com/katalvlaran/lineseq/tsp"
)

// Error kinds reported to MetricsCollector.RecordError.
const (
	errKindInvalidRequest  = "invalid_request"
	errKindMissingRule     = "missing_rule"
	errKindTooManyNodes    = "too_many_nodes"
	errKindIncompleteGraph = "incomplete_graph"
	errKindCancelled       = "cancelled"
	errKindInternal        = "internal"
	errKindSolver          = "solver"
)

// errorKind classifies err for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, changeover.ErrInvalidRule),
		errors.Is(err, changeover.ErrNegativeDuration):
		return errKindInvalidRequest
	case errors.Is(err, changeover.ErrMissingRule):
		return errKindMissingRule
	case errors.Is(err, tsp.ErrTooManyNodes):
		return errKindTooManyNodes
	case errors.Is(err, tsp.ErrIncompleteGraph):
		return errKindIncompleteGraph
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errKindCancelled
	case errors.Is(err, ErrInternal):
		return errKindInternal
	default:
		return errKindSolver
	}
}

// Optimize runs one optimize request synchronously on the caller's goroutine.
// It does not touch the engine state or subscribers.
//
// Parameters:
//   - ctx: cancels the solver cooperatively
//   - req: the request (req.Type is ignored)
//
// Returns:
//   - *SequenceResult: the sequence, or an empty one for empty input
//   - error: ErrInvalidRequest, changeover and tsp errors, or ctx.Err()
func (e *Engine) Optimize(ctx context.Context, req Request) (*SequenceResult, error) {
	return e.optimize(ctx, req, nil)
}

// Compare runs Held–Karp and the heuristic on the same instance synchronously.
//
// Returns:
//   - *CompareResult: both sequences and the better algorithm ("heldKarp" on ties)
//   - error: as Optimize; Held–Karp capacity errors fail the whole comparison
func (e *Engine) Compare(ctx context.Context, req Request) (*CompareResult, error) {
	return e.compare(ctx, req, nil)
}

// debugMatrixMaxRows bounds the cost matrices written to the debug log.
const debugMatrixMaxRows = 12

// prepare validates req and builds its cost matrix.
func (e *Engine) prepare(req *Request) (*matrix.Dense, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m, report, err := changeover.BuildMatrixWithReport(req.Products, req.Transitions, req.CipDurations, e.cfg.MissingRulePolicy)
	if len(report.MissingKeys) > 0 {
		e.logger.Warn("products without transition rule",
			"requestId", req.ID,
			"policy", e.cfg.MissingRulePolicy.String(),
			"missing", report.MissingKeys,
		)
	}
	if len(report.DuplicateRules) > 0 {
		e.logger.Warn("duplicate transition rules, last wins",
			"requestId", req.ID,
			"products", report.DuplicateRules,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("build cost matrix: %w", err)
	}
	if m.Rows() <= debugMatrixMaxRows {
		e.logger.Debug("cost matrix", "requestId", req.ID, "products", req.Products, "minutes", m.ToRows())
	}

	return m, nil
}

// resolveAlgorithm maps the request's choice and size to a solver.
func (e *Engine) resolveAlgorithm(req *Request, n int) tsp.Algorithm {
	switch req.Algorithm {
	case AlgorithmHeldKarp:
		return tsp.HeldKarp
	case AlgorithmHeuristic:
		return tsp.Heuristic
	default:
		if n <= e.cfg.ExactThreshold {
			return tsp.HeldKarp
		}

		return tsp.Heuristic
	}
}

// solverOptions builds tsp.Options for req.
func (e *Engine) solverOptions(req *Request, algo tsp.Algorithm, progress tsp.ProgressFunc) tsp.Options {
	return tsp.Options{
		Algo:                 algo,
		TimeBudget:           req.budget(e.cfg),
		Seed:                 e.seedFor(req),
		TwoOptMaxPasses:      e.cfg.TwoOptMaxPasses,
		ThreeOptMinIters:     e.cfg.ThreeOptMinIters,
		ThreeOptItersPerNode: e.cfg.ThreeOptItersPerNode,
		MaxExactNodes:        e.cfg.MaxExactNodes,
		ProgressStep:         e.cfg.ProgressStep,
		Progress:             progress,
	}
}

// seedFor picks the heuristic seed: request, then config, then the engine source.
func (e *Engine) seedFor(req *Request) int64 {
	if req.Seed != 0 {
		return req.Seed
	}
	if e.cfg.Seed != 0 {
		return e.cfg.Seed
	}

	e.randMu.Lock()
	defer e.randMu.Unlock()
	s := e.rand.Int63()
	if s == 0 {
		s = 1
	}

	return s
}

// runSolver runs one solver and converts its result to batch keys.
func (e *Engine) runSolver(ctx context.Context, req *Request, m *matrix.Dense, algo tsp.Algorithm, progress tsp.ProgressFunc) (*SequenceResult, error) {
	opts := e.solverOptions(req, algo, progress)
	start := time.Now()
	res, err := tsp.SolvePath(ctx, m, opts)
	elapsed := time.Since(start)
	e.metrics.RecordSolveDuration(algo.String(), elapsed.Seconds())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", algo, err)
	}

	out := &SequenceResult{
		Order:         make([]string, len(res.Order)),
		Indices:       res.Order,
		TotalCost:     res.Cost,
		Algorithm:     algo.String(),
		NodesExplored: res.NodesExplored,
	}
	for i, idx := range res.Order {
		out.Order[i] = req.Products[idx]
	}
	e.metrics.RecordCost(out.Algorithm, out.TotalCost)
	e.logger.Debug("solver finished",
		"requestId", req.ID,
		"algorithm", out.Algorithm,
		"n", len(res.Order),
		"cost", out.TotalCost,
		"nodesExplored", out.NodesExplored,
		"seed", opts.Seed,
		"elapsed", elapsed,
	)

	return out, nil
}

// emptyResult is the answer for an empty product list.
func emptyResult() *SequenceResult {
	return &SequenceResult{Order: []string{}, Indices: []int{}, TotalCost: 0, Algorithm: algorithmNone}
}

func (e *Engine) optimize(ctx context.Context, req Request, progress tsp.ProgressFunc) (*SequenceResult, error) {
	m, err := e.prepare(&req)
	if err != nil {
		return nil, err
	}

	n := len(req.Products)
	if n == 0 {
		e.metrics.RecordRequest(string(RequestOptimize), algorithmNone)

		return emptyResult(), nil
	}

	algo := e.resolveAlgorithm(&req, n)
	e.metrics.RecordRequest(string(RequestOptimize), algo.String())
	e.logger.Info("optimizing",
		"requestId", req.ID,
		"fingerprint", fingerprintHex(Fingerprint(req)),
		"n", n,
		"algorithm", algo.String(),
	)

	return e.runSolver(ctx, &req, m, algo, progress)
}

// scaledProgress maps a solver's [0,1] progress onto [lo, hi].
func scaledProgress(fn tsp.ProgressFunc, lo, hi float64) tsp.ProgressFunc {
	if fn == nil {
		return nil
	}

	return func(f float64, nodes int64) {
		fn(lo+f*(hi-lo), nodes)
	}
}

func (e *Engine) compare(ctx context.Context, req Request, progress tsp.ProgressFunc) (*CompareResult, error) {
	m, err := e.prepare(&req)
	if err != nil {
		return nil, err
	}

	n := len(req.Products)
	e.metrics.RecordRequest(string(RequestCompare), "both")
	if n == 0 {
		return &CompareResult{HeldKarp: *emptyResult(), Heuristic: *emptyResult(), Best: tsp.HeldKarp.String()}, nil
	}

	e.logger.Info("comparing",
		"requestId", req.ID,
		"fingerprint", fingerprintHex(Fingerprint(req)),
		"n", n,
	)

	hk, err := e.runSolver(ctx, &req, m, tsp.HeldKarp, scaledProgress(progress, 0, 0.5))
	if err != nil {
		return nil, err
	}
	heur, err := e.runSolver(ctx, &req, m, tsp.Heuristic, scaledProgress(progress, 0.5, 1))
	if err != nil {
		return nil, err
	}

	best := tsp.HeldKarp.String()
	if heur.TotalCost < hk.TotalCost-tsp.DefaultEps {
		best = tsp.Heuristic.String()
	}

	return &CompareResult{HeldKarp: *hk, Heuristic: *heur, Best: best}, nil
}
