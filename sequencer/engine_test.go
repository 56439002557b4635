package sequencer_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lineseq/sequencer"
)

func TestNewEngine_InvalidConfig(t *testing.T) {
	cfg := sequencer.DefaultConfig()
	cfg.ExactThreshold = 30
	_, err := sequencer.NewEngine(cfg)
	require.ErrorIs(t, err, sequencer.ErrInvalidConfig)
}

func TestEngine_Lifecycle(t *testing.T) {
	eng := newEngine(t, sequencer.Config{})
	require.Equal(t, sequencer.StateIdle, eng.State())

	_, err := eng.Submit(scenarioRequest())
	require.ErrorIs(t, err, sequencer.ErrNotStarted)
	require.ErrorIs(t, eng.Stop(), sequencer.ErrNotStarted)

	require.NoError(t, eng.Start(t.Context()))
	require.ErrorIs(t, eng.Start(t.Context()), sequencer.ErrAlreadyStarted)

	require.NoError(t, eng.Stop())
	require.NoError(t, eng.Stop(), "Stop is idempotent")

	_, err = eng.Submit(scenarioRequest())
	require.ErrorIs(t, err, sequencer.ErrStopped)
	require.ErrorIs(t, eng.Start(t.Context()), sequencer.ErrStopped)
}

func TestEngine_SubmitDeliversResult(t *testing.T) {
	rec := &recordingMetrics{}
	eng := startEngine(t, sequencer.DefaultConfig(), sequencer.WithMetrics(rec))
	events, unsubscribe := eng.Subscribe()
	defer unsubscribe()

	id, err := eng.Submit(scenarioRequest())
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err, "generated ids are UUIDs")

	seen := waitTerminal(t, events, id, 5*time.Second)
	last := seen[len(seen)-1]
	require.Equal(t, sequencer.EventResult, last.Type)
	require.Equal(t, []string{"b", "a", "c"}, last.Result.Order)
	require.InDelta(t, 20.0, last.Result.TotalCost, 1e-9)

	require.Eventually(t, func() bool {
		return eng.State() == sequencer.StateDone
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"Idle->Running", "Running->Done"}, rec.snapshotTransitions())
}

func TestEngine_KeepsCallerID(t *testing.T) {
	eng := startEngine(t, sequencer.DefaultConfig())
	events, unsubscribe := eng.Subscribe()
	defer unsubscribe()

	req := scenarioRequest()
	req.ID = "batch-42"
	id, err := eng.Submit(req)
	require.NoError(t, err)
	require.Equal(t, "batch-42", id)

	seen := waitTerminal(t, events, id, 5*time.Second)
	require.Equal(t, "batch-42", seen[len(seen)-1].RequestID)
}

func TestEngine_CompareRequest(t *testing.T) {
	eng := startEngine(t, sequencer.DefaultConfig())
	events, unsubscribe := eng.Subscribe()
	defer unsubscribe()

	req := scenarioRequest()
	req.Type = sequencer.RequestCompare
	req.TimeBudgetMs = 20
	id, err := eng.Submit(req)
	require.NoError(t, err)

	seen := waitTerminal(t, events, id, 5*time.Second)
	last := seen[len(seen)-1]
	require.Equal(t, sequencer.EventCompare, last.Type)
	require.Equal(t, "heldKarp", last.Compare.Best)
}

func TestEngine_ErrorEvent(t *testing.T) {
	rec := &recordingMetrics{}
	eng := startEngine(t, sequencer.DefaultConfig(), sequencer.WithMetrics(rec))
	events, unsubscribe := eng.Subscribe()
	defer unsubscribe()

	req := scenarioRequest()
	req.TimeBudgetMs = -1
	id, err := eng.Submit(req)
	require.NoError(t, err)

	seen := waitTerminal(t, events, id, 5*time.Second)
	last := seen[len(seen)-1]
	require.Equal(t, sequencer.EventError, last.Type)
	require.Contains(t, last.Message, "timeBudgetMs")

	require.Eventually(t, func() bool {
		return eng.State() == sequencer.StateError
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"invalid_request"}, rec.snapshotErrors())
}

func TestEngine_RecoversPanics(t *testing.T) {
	rec := &recordingMetrics{}
	rec.panicking.Store(true)
	eng := startEngine(t, sequencer.DefaultConfig(), sequencer.WithMetrics(rec))
	events, unsubscribe := eng.Subscribe()
	defer unsubscribe()

	id, err := eng.Submit(scenarioRequest())
	require.NoError(t, err)

	seen := waitTerminal(t, events, id, 5*time.Second)
	last := seen[len(seen)-1]
	require.Equal(t, sequencer.EventError, last.Type)
	require.Contains(t, last.Message, "metrics exploded")

	// the engine keeps serving after a panic
	rec.panicking.Store(false)
	id2, err := eng.Submit(scenarioRequest())
	require.NoError(t, err)
	seen = waitTerminal(t, events, id2, 5*time.Second)
	require.Equal(t, sequencer.EventResult, seen[len(seen)-1].Type)
}

func TestEngine_SupersedeSuppressesStaleEvents(t *testing.T) {
	rec := &recordingMetrics{}
	cfg := sequencer.DefaultConfig()
	cfg.ProgressStep = 0.01
	eng := startEngine(t, cfg, sequencer.WithMetrics(rec), sequencer.WithRandSource(rand.NewSource(1)))
	events, unsubscribe := eng.Subscribe()
	defer unsubscribe()

	slow := lineRequest(40)
	slow.ID = "R1"
	slow.Algorithm = sequencer.AlgorithmHeuristic
	slow.TimeBudgetMs = 5000
	_, err := eng.Submit(slow)
	require.NoError(t, err)

	// wait until R1 is visibly running
	select {
	case ev := <-events:
		require.Equal(t, "R1", ev.RequestID)
		require.Equal(t, sequencer.EventProgress, ev.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("no progress from R1")
	}

	fast := scenarioRequest()
	fast.ID = "R2"
	_, err = eng.Submit(fast)
	require.NoError(t, err)

	seen := waitTerminal(t, events, "R2", 5*time.Second)

	// Events of R1 queued before Submit(R2) returned may still be read, but
	// none may follow the first R2 event.
	sawR2 := false
	for _, ev := range seen {
		if ev.RequestID == "R2" {
			sawR2 = true
			continue
		}
		require.False(t, sawR2, "stale %s event for R1 after R2 started", ev.Type)
		require.NotEqual(t, sequencer.EventResult, ev.Type, "R1 must not produce a result")
	}
	require.Equal(t, sequencer.EventResult, seen[len(seen)-1].Type)

	// nothing else arrives for R1 afterwards
	select {
	case ev := <-events:
		t.Fatalf("unexpected event after R2 result: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}

	require.Equal(t, []string{
		"Idle->Running",
		"Running->Cancelled",
		"Cancelled->Idle",
		"Idle->Running",
		"Running->Done",
	}, rec.snapshotTransitions())
	require.Equal(t, 1, rec.snapshotSuperseded())
}

func TestEngine_ProgressIsMonotonic(t *testing.T) {
	eng := startEngine(t, sequencer.DefaultConfig())
	events, unsubscribe := eng.Subscribe()
	defer unsubscribe()

	req := lineRequest(25)
	req.Algorithm = sequencer.AlgorithmHeuristic
	req.TimeBudgetMs = 150
	id, err := eng.Submit(req)
	require.NoError(t, err)

	seen := waitTerminal(t, events, id, 5*time.Second)
	last := -1.0
	for _, ev := range seen {
		if ev.Type != sequencer.EventProgress {
			continue
		}
		require.GreaterOrEqual(t, ev.Progress, 0.0)
		require.LessOrEqual(t, ev.Progress, 1.0)
		require.GreaterOrEqual(t, ev.Progress, last)
		last = ev.Progress
	}
	require.Positive(t, last)
}

func TestEngine_StopClosesSubscribers(t *testing.T) {
	eng := newEngine(t, sequencer.DefaultConfig())
	require.NoError(t, eng.Start(t.Context()))
	events, unsubscribe := eng.Subscribe()
	defer unsubscribe()

	req := lineRequest(30)
	req.Algorithm = sequencer.AlgorithmHeuristic
	req.TimeBudgetMs = 10000
	_, err := eng.Submit(req)
	require.NoError(t, err)

	require.NoError(t, eng.Stop())
	require.Equal(t, sequencer.StateCancelled, eng.State())

	require.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-events:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, time.Second, 5*time.Millisecond)
}

// returnsWithin runs fn and fails the test if it does not return in time.
func returnsWithin(t *testing.T, d time.Duration, what string, fn func() error) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		require.NoError(t, err, what)
	case <-time.After(d):
		t.Fatalf("%s blocked for %v", what, d)
	}
}

func TestEngine_StalledSubscriberDoesNotBlock(t *testing.T) {
	cfg := sequencer.DefaultConfig()
	cfg.EventBuffer = 1
	eng := newEngine(t, cfg)
	require.NoError(t, eng.Start(t.Context()))

	// never read: the first progress event fills the buffer
	_, unsubscribe := eng.Subscribe()
	defer unsubscribe()

	req := lineRequest(20)
	req.Algorithm = sequencer.AlgorithmHeuristic
	req.TimeBudgetMs = 50
	_, err := eng.Submit(req)
	require.NoError(t, err)

	// let the solver finish and park on the full subscriber
	time.Sleep(300 * time.Millisecond)

	returnsWithin(t, 2*time.Second, "Submit", func() error {
		_, err := eng.Submit(scenarioRequest())
		return err
	})
	returnsWithin(t, 2*time.Second, "Stop", eng.Stop)
	require.NotEqual(t, sequencer.StateRunning, eng.State())
}

func TestEngine_StartContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	eng := newEngine(t, sequencer.DefaultConfig())
	require.NoError(t, eng.Start(ctx))
	cancel()

	req := lineRequest(12)
	req.Algorithm = sequencer.AlgorithmHeuristic
	req.TimeBudgetMs = 20
	require.Eventually(t, func() bool {
		_, err := eng.Submit(req)
		return errors.Is(err, sequencer.ErrStopped)
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, eng.Stop())
	require.NotEqual(t, sequencer.StateRunning, eng.State())
}
