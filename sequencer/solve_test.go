package sequencer_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lineseq/changeover"
	"github.com/katalvlaran/lineseq/internal/logging"
	"github.com/katalvlaran/lineseq/sequencer"
	"github.com/katalvlaran/lineseq/tsp"
)

func TestOptimize_Scenario(t *testing.T) {
	eng := newEngine(t, sequencer.DefaultConfig())

	res, err := eng.Optimize(context.Background(), scenarioRequest())
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a", "c"}, res.Order)
	require.Equal(t, []int{1, 0, 2}, res.Indices)
	require.InDelta(t, 20.0, res.TotalCost, 1e-9)
	require.Equal(t, "heldKarp", res.Algorithm)
	require.Positive(t, res.NodesExplored)
}

func TestOptimize_ForcedHeuristicOnScenario(t *testing.T) {
	eng := newEngine(t, sequencer.DefaultConfig())

	req := scenarioRequest()
	req.Algorithm = sequencer.AlgorithmHeuristic
	req.TimeBudgetMs = 20
	res, err := eng.Optimize(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a", "c"}, res.Order)
	require.Equal(t, "heuristic", res.Algorithm)
}

func TestOptimize_AutoSelection(t *testing.T) {
	cfg := sequencer.DefaultConfig()
	cfg.ExactThreshold = 6
	eng := newEngine(t, cfg)

	small := lineRequest(6)
	res, err := eng.Optimize(context.Background(), small)
	require.NoError(t, err)
	require.Equal(t, "heldKarp", res.Algorithm)

	large := lineRequest(7)
	large.TimeBudgetMs = 30
	res, err = eng.Optimize(context.Background(), large)
	require.NoError(t, err)
	require.Equal(t, "heuristic", res.Algorithm)
	require.Len(t, res.Order, 7)
	require.ElementsMatch(t, large.Products, res.Order)
}

func TestOptimize_HeuristicNeverBeatsExact(t *testing.T) {
	eng := newEngine(t, sequencer.DefaultConfig())
	ctx := context.Background()

	for _, n := range []int{5, 8, 9} {
		req := lineRequest(n)
		req.Algorithm = sequencer.AlgorithmHeldKarp
		exact, err := eng.Optimize(ctx, req)
		require.NoError(t, err)

		req.Algorithm = sequencer.AlgorithmHeuristic
		req.TimeBudgetMs = 30
		heur, err := eng.Optimize(ctx, req)
		require.NoError(t, err)
		require.GreaterOrEqual(t, heur.TotalCost, exact.TotalCost-1e-9, "n=%d", n)
	}
}

func TestOptimize_Empty(t *testing.T) {
	eng := newEngine(t, sequencer.DefaultConfig())

	res, err := eng.Optimize(context.Background(), sequencer.Request{})
	require.NoError(t, err)
	require.Empty(t, res.Order)
	require.NotNil(t, res.Order)
	require.Zero(t, res.TotalCost)
	require.Equal(t, "none", res.Algorithm)
}

func TestOptimize_SingleProduct(t *testing.T) {
	eng := newEngine(t, sequencer.DefaultConfig())

	res, err := eng.Optimize(context.Background(), sequencer.Request{Products: []string{"only"}})
	require.NoError(t, err)
	require.Equal(t, []string{"only"}, res.Order)
	require.Zero(t, res.TotalCost)
}

func TestOptimize_MissingRulePolicies(t *testing.T) {
	req := scenarioRequest()
	req.Products = append(req.Products, "d") // d has no rule

	t.Run("zero", func(t *testing.T) {
		eng := newEngine(t, sequencer.DefaultConfig())
		res, err := eng.Optimize(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, res.Order, 4)
	})

	t.Run("reject", func(t *testing.T) {
		cfg := sequencer.DefaultConfig()
		cfg.MissingRulePolicy = changeover.MissingReject
		eng := newEngine(t, cfg)
		_, err := eng.Optimize(context.Background(), req)
		require.ErrorIs(t, err, changeover.ErrMissingRule)
	})

	t.Run("infinite", func(t *testing.T) {
		cfg := sequencer.DefaultConfig()
		cfg.MissingRulePolicy = changeover.MissingInfinite
		eng := newEngine(t, cfg)
		_, err := eng.Optimize(context.Background(), req)
		require.ErrorIs(t, err, tsp.ErrIncompleteGraph)
	})
}

func TestOptimize_Errors(t *testing.T) {
	cfg := sequencer.DefaultConfig()
	cfg.MaxExactNodes = 8
	cfg.ExactThreshold = 8
	eng := newEngine(t, cfg)

	req := lineRequest(9)
	req.Algorithm = sequencer.AlgorithmHeldKarp
	_, err := eng.Optimize(context.Background(), req)
	require.ErrorIs(t, err, tsp.ErrTooManyNodes)

	bad := scenarioRequest()
	bad.Algorithm = "annealing"
	_, err = eng.Optimize(context.Background(), bad)
	require.ErrorIs(t, err, sequencer.ErrInvalidRequest)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	heur := lineRequest(30)
	heur.Algorithm = sequencer.AlgorithmHeuristic
	_, err = eng.Optimize(ctx, heur)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCompare_Scenario(t *testing.T) {
	eng := newEngine(t, sequencer.DefaultConfig())

	req := scenarioRequest()
	req.Type = sequencer.RequestCompare
	req.TimeBudgetMs = 20
	res, err := eng.Compare(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a", "c"}, res.HeldKarp.Order)
	require.InDelta(t, 20.0, res.HeldKarp.TotalCost, 1e-9)
	require.InDelta(t, 20.0, res.Heuristic.TotalCost, 1e-9)
	require.Equal(t, "heldKarp", res.Best, "ties go to the exact solver")
}

func TestCompare_HeuristicNeverWinsStrictly(t *testing.T) {
	eng := newEngine(t, sequencer.DefaultConfig())

	req := lineRequest(9)
	req.TimeBudgetMs = 30
	res, err := eng.Compare(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "heldKarp", res.Best)
	require.LessOrEqual(t, res.HeldKarp.TotalCost, res.Heuristic.TotalCost+1e-9)
}

func TestCompare_Empty(t *testing.T) {
	eng := newEngine(t, sequencer.DefaultConfig())

	res, err := eng.Compare(context.Background(), sequencer.Request{Type: sequencer.RequestCompare})
	require.NoError(t, err)
	require.Empty(t, res.HeldKarp.Order)
	require.Empty(t, res.Heuristic.Order)
	require.Equal(t, "heldKarp", res.Best)
}

func TestOptimize_LogsSmallCostMatrix(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	eng, err := sequencer.NewEngine(sequencer.DefaultConfig(), sequencer.WithLogger(logging.NewSlog(slog.New(handler))))
	require.NoError(t, err)

	req := scenarioRequest()
	req.ID = "m-1"
	_, err = eng.Optimize(context.Background(), req)
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, `"msg":"cost matrix"`)
	require.Contains(t, out, `"minutes":[[0,10,10],[10,0,240],[300,300,0]]`)
}
