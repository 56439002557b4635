package sequencer_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lineseq/changeover"
	"github.com/katalvlaran/lineseq/internal/logging"
	"github.com/katalvlaran/lineseq/sequencer"
	"github.com/katalvlaran/lineseq/types"
)

// scenarioRequest is the a/b/c line; the unique optimum is b→a→c with 20 minutes.
func scenarioRequest() sequencer.Request {
	return sequencer.Request{
		Type:     sequencer.RequestOptimize,
		Products: []string{"a", "b", "c"},
		Transitions: []changeover.TransitionRule{
			changeover.NewRule("a", changeover.CIP1),
			changeover.NewRule("b", changeover.CIP2).WithException(changeover.CIP1, "a"),
			changeover.NewRule("c", changeover.CIP3),
		},
		CipDurations: changeover.Durations{CIP1: 10, CIP2: 240, CIP3: 300},
	}
}

// lineRequest builds n products p0..p(n-1) with mixed rules and exceptions.
func lineRequest(n int) sequencer.Request {
	req := sequencer.Request{CipDurations: changeover.Durations{CIP1: 10, CIP2: 60, CIP3: 240}}
	classes := []changeover.CipClass{changeover.CIP1, changeover.CIP2, changeover.CIP3}
	for i := 0; i < n; i++ {
		req.Products = append(req.Products, fmt.Sprintf("p%d", i))
	}
	for i := 0; i < n; i++ {
		r := changeover.NewRule(req.Products[i], classes[(i*7)%3])
		r = r.WithException(changeover.CIP1, req.Products[(i+1)%n])
		if i%2 == 0 {
			r = r.WithException(changeover.CIP2, req.Products[(i+3)%n])
		}
		req.Transitions = append(req.Transitions, r)
	}

	return req
}

// newEngine creates an engine with a test logger; it is not started.
func newEngine(t *testing.T, cfg sequencer.Config, opts ...sequencer.Option) *sequencer.Engine {
	t.Helper()
	opts = append([]sequencer.Option{sequencer.WithLogger(logging.NewTest(t))}, opts...)
	eng, err := sequencer.NewEngine(cfg, opts...)
	require.NoError(t, err)

	return eng
}

// startEngine creates and starts an engine, stopping it on cleanup.
func startEngine(t *testing.T, cfg sequencer.Config, opts ...sequencer.Option) *sequencer.Engine {
	t.Helper()
	eng := newEngine(t, cfg, opts...)
	require.NoError(t, eng.Start(t.Context()))
	t.Cleanup(func() { _ = eng.Stop() })

	return eng
}

// waitTerminal reads events until the terminal event of id arrives.
// It returns every event read, in order.
func waitTerminal(t *testing.T, ch <-chan sequencer.Event, id string, timeout time.Duration) []sequencer.Event {
	t.Helper()
	deadline := time.After(timeout)

	var seen []sequencer.Event
	for {
		select {
		case ev, ok := <-ch:
			require.True(t, ok, "event channel closed before terminal event of %s", id)
			seen = append(seen, ev)
			if ev.RequestID == id && ev.Type.Terminal() {
				return seen
			}
		case <-deadline:
			t.Fatalf("no terminal event for %s within %v (saw %d events)", id, timeout, len(seen))
		}
	}
}

// recordingMetrics captures calls for assertions.
type recordingMetrics struct {
	mu          sync.Mutex
	transitions []string
	requests    []string
	errors      []string
	superseded  int
	panicking   atomic.Bool
}

var _ types.MetricsCollector = (*recordingMetrics)(nil)

func (m *recordingMetrics) RecordRequest(kind, algorithm string) {
	if m.panicking.Load() {
		panic("metrics exploded")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, kind+"/"+algorithm)
}

func (m *recordingMetrics) RecordSolveDuration(string, float64) {}

func (m *recordingMetrics) RecordStateTransition(from, to types.EngineState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, from.String()+"->"+to.String())
}

func (m *recordingMetrics) RecordSuperseded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.superseded++
}

func (m *recordingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, kind)
}

func (m *recordingMetrics) RecordCost(string, float64) {}

func (m *recordingMetrics) snapshotTransitions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.transitions...)
}

func (m *recordingMetrics) snapshotErrors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.errors...)
}

func (m *recordingMetrics) snapshotSuperseded() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.superseded
}
