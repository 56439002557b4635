package sequencer

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/katalvlaran/lineseq/internal/logging"
	"github.com/katalvlaran/lineseq/internal/metrics"
)

// job is one accepted submission.
type job struct {
	id     string
	req    Request
	ctx    context.Context
	cancel context.CancelFunc
}

// Engine runs sequencing requests for one production line.
//
// At most one computation runs at a time on the engine's worker goroutine.
// Submit supersedes the in-flight computation; events of superseded requests
// are never emitted after the superseding Submit returns.
type Engine struct {
	cfg     Config
	logger  Logger
	metrics MetricsCollector

	randMu sync.Mutex
	rand   *rand.Rand

	// deliverMu serializes terminal-event delivery with the second phase of
	// Submit. It is taken before mu, never after.
	deliverMu sync.Mutex

	// mu guards the fields below. It is never held while blocking on a
	// subscriber.
	mu       sync.Mutex
	started  bool
	stopped  bool
	latestID string
	current  *job
	pending  *job
	baseCtx  context.Context
	stopBase context.CancelFunc

	state atomic.Int32 // types.EngineState, written under mu

	subscribers      *xsync.Map[uint64, *subscriber]
	nextSubscriberID atomic.Uint64

	wake   chan struct{}
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewEngine creates an engine in the Idle state.
//
// Parameters:
//   - cfg: configuration; zero fields take defaults, then it is validated
//   - opts: optional logger, metrics collector and seed source
//
// Returns:
//   - *Engine: engine ready to Start
//   - error: wraps ErrInvalidConfig
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := engineOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}
	if o.source == nil {
		o.source = rand.NewSource(time.Now().UnixNano())
	}

	e := &Engine{
		cfg:         cfg,
		logger:      o.logger,
		metrics:     o.metrics,
		rand:        rand.New(o.source),
		subscribers: xsync.NewMap[uint64, *subscriber](),
		wake:        make(chan struct{}, 1),
		stopCh:      make(chan struct{}),
	}
	e.state.Store(int32(StateIdle))

	return e, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// State returns the current engine state. Safe for concurrent use.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Start launches the worker goroutine. Cancelling ctx stops the engine as
// Stop does.
//
// Returns:
//   - error: ErrAlreadyStarted, or ErrStopped after Stop
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return ErrStopped
	}
	if e.started {
		return ErrAlreadyStarted
	}
	e.started = true
	e.baseCtx, e.stopBase = context.WithCancel(ctx)

	e.wg.Add(1)
	go e.loop()
	go e.stopOnDone(ctx)
	e.logger.Info("engine started")

	return nil
}

// stopOnDone stops the engine when the Start context ends.
func (e *Engine) stopOnDone(ctx context.Context) {
	select {
	case <-ctx.Done():
		e.logger.Info("start context done, stopping engine", "err", ctx.Err())
		_ = e.Stop()
	case <-e.stopCh:
	}
}

// Stop cancels the in-flight computation, waits for the worker to exit and
// closes every subscriber channel. Stop is idempotent.
//
// Returns:
//   - error: ErrNotStarted if Start was never called
func (e *Engine) Stop() error {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()

		return ErrNotStarted
	}
	if e.stopped {
		e.mu.Unlock()

		return nil
	}
	e.stopped = true
	e.mu.Unlock()

	close(e.stopCh)
	e.stopBase()

	e.wg.Wait()

	e.mu.Lock()
	if e.State() == StateRunning {
		e.transition(StateCancelled)
	}
	e.current, e.pending = nil, nil
	e.mu.Unlock()

	e.subscribers.Range(func(id uint64, sub *subscriber) bool {
		e.removeSubscriber(id)
		return true
	})
	e.logger.Info("engine stopped")

	return nil
}

// Submit queues req, superseding any in-flight or queued request.
//
// Parameters:
//   - req: request; an empty req.ID is replaced by a new UUID
//
// Returns:
//   - string: the request id events will carry
//   - error: ErrNotStarted or ErrStopped
func (e *Engine) Submit(req Request) (string, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	// Cancel first: a terminal event blocked on a slow subscriber gives up
	// once its job is cancelled, which releases deliverMu.
	e.mu.Lock()
	if err := e.acceptingLocked(); err != nil {
		e.mu.Unlock()

		return "", err
	}
	e.cancelJobsLocked()
	e.mu.Unlock()

	e.deliverMu.Lock()
	defer e.deliverMu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.acceptingLocked(); err != nil {
		return "", err
	}
	if e.State() == StateRunning {
		e.logger.Info("superseding request", "previous", e.latestID, "next", req.ID)
		e.metrics.RecordSuperseded()
		e.cancelJobsLocked()
		e.transition(StateCancelled)
	}
	if e.State() != StateIdle {
		e.transition(StateIdle)
	}

	ctx, cancel := context.WithCancel(e.baseCtx)
	e.pending = &job{id: req.ID, req: req, ctx: ctx, cancel: cancel}
	e.latestID = req.ID
	e.transition(StateRunning)

	select {
	case e.wake <- struct{}{}:
	default:
	}

	return req.ID, nil
}

// acceptingLocked reports why Submit cannot queue a job. Caller holds e.mu.
func (e *Engine) acceptingLocked() error {
	if !e.started {
		return ErrNotStarted
	}
	if e.stopped {
		return ErrStopped
	}

	return nil
}

// cancelJobsLocked cancels the running and the queued job. Caller holds e.mu.
func (e *Engine) cancelJobsLocked() {
	if e.current != nil {
		e.current.cancel()
	}
	if e.pending != nil {
		e.pending.cancel()
	}
}

// Subscribe returns a channel that receives every emitted event.
//
// Progress events are dropped when the channel buffer (Config.EventBuffer)
// is full; terminal events wait for the subscriber until the request is
// superseded or the engine stops. Unsubscribe, or Stop, closes the channel.
//
// Returns:
//   - <-chan Event: event stream
//   - func(): unsubscribe function
func (e *Engine) Subscribe() (<-chan Event, func()) {
	id := e.nextSubscriberID.Add(1)
	sub := newSubscriber(e.cfg.EventBuffer)
	e.subscribers.Store(id, sub)

	return sub.ch, func() {
		e.removeSubscriber(id)
	}
}

func (e *Engine) removeSubscriber(id uint64) {
	if sub, ok := e.subscribers.LoadAndDelete(id); ok {
		sub.close()
	}
}

// transition moves the state machine. Caller holds e.mu.
func (e *Engine) transition(to State) {
	from := e.State()
	if from == to {
		return
	}
	e.metrics.RecordStateTransition(from, to)
	e.state.Store(int32(to)) //nolint:gosec // bounded enum
	e.logger.Debug("state transition", "from", from.String(), "to", to.String())
}

// loop is the worker goroutine.
func (e *Engine) loop() {
	defer e.wg.Done()

	for {
		select {
		case <-e.stopCh:
			return
		case <-e.wake:
		}

		e.mu.Lock()
		j := e.pending
		e.pending = nil
		e.current = j
		e.mu.Unlock()

		if j != nil {
			e.run(j)
		}
	}
}

// run executes one job and emits its terminal event.
func (e *Engine) run(j *job) {
	start := time.Now()
	defer j.cancel()

	progress := func(f float64, nodes int64) {
		e.emitProgress(progressEvent(j.id, f, nodes))
	}

	ev, err := e.execute(j, progress)
	if err != nil {
		// Only Submit and Stop cancel a job, and they move the state machine.
		if j.ctx.Err() != nil {
			e.logger.Debug("cancelled request finished", "requestId", j.id, "err", err)
			e.finish(j, Event{}, false)

			return
		}
		e.metrics.RecordError(errorKind(err))
		e.logger.Warn("request failed", "requestId", j.id, "err", err, "elapsed", time.Since(start))
		e.finish(j, ErrorEvent(j.id, err), false)

		return
	}

	e.logger.Info("request done", "requestId", j.id, "type", string(ev.Type), "elapsed", time.Since(start))
	e.finish(j, ev, true)
}

// execute runs the job, converting panics into ErrInternal.
func (e *Engine) execute(j *job, progress func(float64, int64)) (ev Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("recovered panic", "requestId", j.id, "panic", r)
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	switch j.req.kind() {
	case RequestCompare:
		c, cerr := e.compare(j.ctx, j.req, progress)
		if cerr != nil {
			return Event{}, cerr
		}

		return compareEvent(j.id, c), nil
	default:
		r, rerr := e.optimize(j.ctx, j.req, progress)
		if rerr != nil {
			return Event{}, rerr
		}

		return resultEvent(j.id, r), nil
	}
}

// emitProgress delivers a progress event to every subscriber without blocking,
// if the request is still the latest.
func (e *Engine) emitProgress(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ev.RequestID != e.latestID || e.stopped {
		return
	}
	e.subscribers.Range(func(_ uint64, sub *subscriber) bool {
		sub.trySend(ev)
		return true
	})
}

// finish delivers the terminal event and settles the state machine, both
// only if j is still the latest request and was not cancelled.
//
// The blocking send runs under deliverMu only, so Submit and Stop stay
// responsive; Submit cancels j first, which aborts the send.
func (e *Engine) finish(j *job, ev Event, ok bool) {
	e.deliverMu.Lock()
	defer e.deliverMu.Unlock()

	e.mu.Lock()
	settles := e.settlesLocked(j)
	e.mu.Unlock()

	if settles && ev.Type != "" {
		e.subscribers.Range(func(_ uint64, sub *subscriber) bool {
			sub.send(ev, j.ctx.Done(), e.stopCh)
			return true
		})
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !settles || !e.settlesLocked(j) {
		if e.current == j {
			e.current = nil
		}

		return
	}
	e.current = nil
	if ok {
		e.transition(StateDone)
	} else {
		e.transition(StateError)
	}
}

// settlesLocked reports whether j may still emit its terminal event.
// Caller holds e.mu.
func (e *Engine) settlesLocked(j *job) bool {
	return e.current == j &&
		e.pending == nil &&
		j.id == e.latestID &&
		j.ctx.Err() == nil &&
		!e.stopped &&
		e.State() == StateRunning
}
