package sequencer

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/katalvlaran/lineseq/changeover"
)

// RequestType selects what a request computes.
type RequestType string

const (
	// RequestOptimize produces one sequence.
	RequestOptimize RequestType = "optimize"
	// RequestCompare runs both solvers on the same instance.
	RequestCompare RequestType = "compare"
)

// AlgorithmChoice selects the solver of an optimize request.
type AlgorithmChoice string

const (
	// AlgorithmAuto picks Held–Karp up to Config.ExactThreshold nodes, else the heuristic.
	AlgorithmAuto AlgorithmChoice = "auto"
	// AlgorithmHeldKarp forces the exact solver.
	AlgorithmHeldKarp AlgorithmChoice = "heldKarp"
	// AlgorithmHeuristic forces the heuristic solver.
	AlgorithmHeuristic AlgorithmChoice = "heuristic"
)

// algorithmNone labels results produced without a solver (empty input).
const algorithmNone = "none"

// Request is one sequencing job.
type Request struct {
	// ID correlates events with the request; the engine assigns one when empty.
	ID string `json:"id,omitempty"`

	// Type defaults to RequestOptimize when empty.
	Type RequestType `json:"type,omitempty"`

	// Products are the batch keys to sequence. Each position is one node;
	// duplicates are allowed.
	Products []string `json:"products"`

	// Transitions holds at most one rule per product key (last wins).
	Transitions []changeover.TransitionRule `json:"transitions"`

	// CipDurations are the minutes charged per CIP class.
	CipDurations changeover.Durations `json:"cipDurations"`

	// TimeBudgetMs bounds the heuristic; 0 selects Config.DefaultTimeBudget.
	TimeBudgetMs int64 `json:"timeBudgetMs,omitempty"`

	// Algorithm defaults to AlgorithmAuto when empty.
	Algorithm AlgorithmChoice `json:"algorithm,omitempty"`

	// Seed pins the heuristic random stream; 0 defers to the engine.
	Seed int64 `json:"seed,omitempty"`
}

// Validate checks request fields that do not need the solvers.
//
// Returns:
//   - error: wraps ErrInvalidRequest, nil if valid
func (r *Request) Validate() error {
	switch r.Type {
	case "", RequestOptimize, RequestCompare:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidRequest, r.Type)
	}
	switch r.Algorithm {
	case "", AlgorithmAuto, AlgorithmHeldKarp, AlgorithmHeuristic:
	default:
		return fmt.Errorf("%w: unknown algorithm %q", ErrInvalidRequest, r.Algorithm)
	}
	if r.TimeBudgetMs < 0 {
		return fmt.Errorf("%w: timeBudgetMs must be non-negative, got %d", ErrInvalidRequest, r.TimeBudgetMs)
	}
	if err := r.CipDurations.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	for i := range r.Transitions {
		if err := r.Transitions[i].Validate(); err != nil {
			return fmt.Errorf("%w: transition #%d: %w", ErrInvalidRequest, i, err)
		}
	}

	return nil
}

// kind returns the effective request type.
func (r *Request) kind() RequestType {
	if r.Type == "" {
		return RequestOptimize
	}

	return r.Type
}

// budget returns the effective heuristic budget.
func (r *Request) budget(cfg Config) time.Duration {
	if r.TimeBudgetMs > 0 {
		return time.Duration(r.TimeBudgetMs) * time.Millisecond
	}

	return cfg.DefaultTimeBudget
}

// EventType tags an Event.
type EventType string

const (
	EventProgress EventType = "progress"
	EventResult   EventType = "result"
	EventCompare  EventType = "compare"
	EventError    EventType = "error"
)

// Terminal reports whether no further events follow for the same request.
func (t EventType) Terminal() bool {
	return t == EventResult || t == EventCompare || t == EventError
}

// SequenceResult is the outcome of an optimize request.
type SequenceResult struct {
	// Order lists batch keys in production order.
	Order []string `json:"order"`
	// Indices lists the positions of Order within Request.Products.
	Indices []int `json:"indices"`
	// TotalCost is the sum of changeover minutes along Order.
	TotalCost float64 `json:"totalCost"`
	// Algorithm is "heldKarp", "heuristic" or "none" for empty input.
	Algorithm string `json:"algorithm"`
	// NodesExplored is the solver's search effort.
	NodesExplored int64 `json:"nodesExplored,omitempty"`
}

// CompareResult is the outcome of a compare request.
type CompareResult struct {
	HeldKarp  SequenceResult `json:"heldKarp"`
	Heuristic SequenceResult `json:"heuristic"`
	// Best is "heldKarp" or "heuristic"; ties go to "heldKarp".
	Best string `json:"best"`
}

// Event is emitted to subscribers and transports.
// Exactly one of the payload groups is meaningful, selected by Type.
type Event struct {
	Type      EventType
	RequestID string

	// progress
	Progress      float64
	NodesExplored int64

	// result
	Result *SequenceResult

	// compare
	Compare *CompareResult

	// error
	Message string
}

// eventWire is the flat JSON shape of every event type.
type eventWire struct {
	Type      EventType `json:"type"`
	RequestID string    `json:"requestId"`

	Progress      *float64 `json:"progress,omitempty"`
	NodesExplored int64    `json:"nodesExplored,omitempty"`

	Order     []string `json:"order,omitempty"`
	Indices   []int    `json:"indices,omitempty"`
	TotalCost *float64 `json:"totalCost,omitempty"`
	Algorithm string   `json:"algorithm,omitempty"`

	HeldKarp  *SequenceResult `json:"heldKarp,omitempty"`
	Heuristic *SequenceResult `json:"heuristic,omitempty"`
	Best      string          `json:"best,omitempty"`

	Message string `json:"message,omitempty"`
}

// MarshalJSON renders the event in its wire shape.
func (e Event) MarshalJSON() ([]byte, error) {
	w := eventWire{Type: e.Type, RequestID: e.RequestID}

	switch e.Type {
	case EventProgress:
		p := e.Progress
		w.Progress = &p
		w.NodesExplored = e.NodesExplored
	case EventResult:
		if e.Result == nil {
			return nil, fmt.Errorf("sequencer: result event without payload")
		}
		if math.IsInf(e.Result.TotalCost, 0) || math.IsNaN(e.Result.TotalCost) {
			return nil, fmt.Errorf("sequencer: non-finite total cost")
		}

		return marshalResultWire(e.RequestID, e.Result)
	case EventCompare:
		if e.Compare == nil {
			return nil, fmt.Errorf("sequencer: compare event without payload")
		}
		hk, heur := e.Compare.HeldKarp, e.Compare.Heuristic
		w.HeldKarp, w.Heuristic, w.Best = &hk, &heur, e.Compare.Best
	case EventError:
		w.Message = e.Message
	}

	return json.Marshal(w)
}

// marshalResultWire keeps "order" and "indices" present for empty sequences.
func marshalResultWire(id string, r *SequenceResult) ([]byte, error) {
	type resultWire struct {
		Type          EventType `json:"type"`
		RequestID     string    `json:"requestId"`
		Order         []string  `json:"order"`
		Indices       []int     `json:"indices"`
		TotalCost     float64   `json:"totalCost"`
		Algorithm     string    `json:"algorithm"`
		NodesExplored int64     `json:"nodesExplored,omitempty"`
	}
	out := resultWire{
		Type:          EventResult,
		RequestID:     id,
		Order:         r.Order,
		Indices:       r.Indices,
		TotalCost:     r.TotalCost,
		Algorithm:     r.Algorithm,
		NodesExplored: r.NodesExplored,
	}
	if out.Order == nil {
		out.Order = []string{}
	}
	if out.Indices == nil {
		out.Indices = []int{}
	}

	return json.Marshal(out)
}

// UnmarshalJSON decodes any event wire shape.
func (e *Event) UnmarshalJSON(b []byte) error {
	var w eventWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	out := Event{Type: w.Type, RequestID: w.RequestID}
	switch w.Type {
	case EventProgress:
		if w.Progress != nil {
			out.Progress = *w.Progress
		}
		out.NodesExplored = w.NodesExplored
	case EventResult:
		r := &SequenceResult{
			Order:         w.Order,
			Indices:       w.Indices,
			Algorithm:     w.Algorithm,
			NodesExplored: w.NodesExplored,
		}
		if r.Order == nil {
			r.Order = []string{}
		}
		if r.Indices == nil {
			r.Indices = []int{}
		}
		if w.TotalCost != nil {
			r.TotalCost = *w.TotalCost
		}
		out.Result = r
	case EventCompare:
		c := &CompareResult{Best: w.Best}
		if w.HeldKarp != nil {
			c.HeldKarp = *w.HeldKarp
		}
		if w.Heuristic != nil {
			c.Heuristic = *w.Heuristic
		}
		out.Compare = c
	case EventError:
		out.Message = w.Message
	default:
		return fmt.Errorf("sequencer: unknown event type %q", w.Type)
	}
	*e = out

	return nil
}

// progressEvent, resultEvent, compareEvent and errorEvent build events.
func progressEvent(id string, fraction float64, nodes int64) Event {
	return Event{Type: EventProgress, RequestID: id, Progress: fraction, NodesExplored: nodes}
}

func resultEvent(id string, r *SequenceResult) Event {
	return Event{Type: EventResult, RequestID: id, Result: r}
}

func compareEvent(id string, c *CompareResult) Event {
	return Event{Type: EventCompare, RequestID: id, Compare: c}
}

// ErrorEvent builds an error event. Transports use it for requests that never
// reach the engine, such as malformed JSON (with an empty id).
func ErrorEvent(id string, err error) Event {
	return Event{Type: EventError, RequestID: id, Message: err.Error()}
}
