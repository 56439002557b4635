package natsworker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/katalvlaran/lineseq/internal/logging"
	"github.com/katalvlaran/lineseq/sequencer"
	"github.com/katalvlaran/lineseq/types"
)

// Sentinel errors returned by the Worker.
var (
	ErrAlreadyStarted = errors.New("natsworker: worker already started")
	ErrNotStarted     = errors.New("natsworker: worker not started")
)

// Worker bridges a NATS connection and one sequencer.Engine.
//
// The engine's lifecycle belongs to the caller: the worker only submits
// requests and forwards events.
type Worker struct {
	nc     *nats.Conn
	engine *sequencer.Engine
	cfg    Config
	logger types.Logger

	mu      sync.Mutex
	started bool
	sub     *nats.Subscription
	unsub   func()
	replies map[string]string // request id -> reply subject

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a worker. A nil logger discards logs.
//
// Returns:
//   - *Worker: worker ready to Start
//   - error: wraps ErrInvalidConfig
func New(nc *nats.Conn, engine *sequencer.Engine, cfg Config, logger types.Logger) (*Worker, error) {
	if nc == nil || engine == nil {
		return nil, fmt.Errorf("%w: connection and engine are required", ErrInvalidConfig)
	}
	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Worker{
		nc:      nc,
		engine:  engine,
		cfg:     cfg,
		logger:  logger,
		replies: make(map[string]string),
		done:    make(chan struct{}),
	}, nil
}

// Start subscribes to engine events and to the request subject.
// Cancelling ctx has the same effect as Stop.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	events, unsub := w.engine.Subscribe()
	sub, err := w.nc.QueueSubscribe(w.cfg.RequestSubject(), w.cfg.QueueGroup, w.handleRequest)
	if err != nil {
		unsub()
		return fmt.Errorf("failed to subscribe to %s: %w", w.cfg.RequestSubject(), err)
	}

	w.started = true
	w.sub = sub
	w.unsub = unsub

	w.wg.Add(1)
	go w.forward(events)

	go func() {
		select {
		case <-ctx.Done():
			_ = w.Stop()
		case <-w.done:
		}
	}()

	w.logger.Info("nats worker started",
		"subject", w.cfg.RequestSubject(),
		"queue", w.cfg.QueueGroup,
	)

	return nil
}

// Stop drains the request subscription and stops forwarding events.
// It is idempotent once started.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return ErrNotStarted
	}
	sub, unsub := w.sub, w.unsub
	w.sub, w.unsub = nil, nil
	w.mu.Unlock()

	w.stopOnce.Do(func() { close(w.done) })

	var err error
	if sub != nil {
		if drainErr := sub.Drain(); drainErr != nil && !errors.Is(drainErr, nats.ErrConnectionClosed) {
			err = fmt.Errorf("failed to drain %s: %w", w.cfg.RequestSubject(), drainErr)
		}
	}
	if unsub != nil {
		unsub()
		w.logger.Info("nats worker stopped", "subject", w.cfg.RequestSubject())
	}
	w.wg.Wait()

	return err
}

func (w *Worker) handleRequest(msg *nats.Msg) {
	var req sequencer.Request
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		w.logger.Warn("malformed request", "subject", msg.Subject, "error", err)
		w.publish(msg.Reply, sequencer.ErrorEvent("", fmt.Errorf("%w: %w", sequencer.ErrInvalidRequest, err)))
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	// The route exists before Submit: events may arrive before it returns.
	w.mu.Lock()
	if msg.Reply != "" {
		w.replies[req.ID] = msg.Reply
	}
	w.mu.Unlock()

	if _, err := w.engine.Submit(req); err != nil {
		w.logger.Error("submit failed", "requestId", req.ID, "error", err)
		w.mu.Lock()
		delete(w.replies, req.ID)
		w.mu.Unlock()
		w.publish(msg.Reply, sequencer.ErrorEvent(req.ID, err))
		return
	}

	// Requests superseded by this one emit nothing after Submit returns.
	w.mu.Lock()
	w.dropRoutesExcept(req.ID)
	w.mu.Unlock()

	w.logger.Debug("request accepted", "requestId", req.ID, "products", len(req.Products))
}

// dropRoutesExcept forgets every reply route but id's. Caller holds w.mu.
func (w *Worker) dropRoutesExcept(id string) {
	for k := range w.replies {
		if k != id {
			delete(w.replies, k)
		}
	}
}

func (w *Worker) forward(events <-chan sequencer.Event) {
	defer w.wg.Done()

	for ev := range events {
		w.mu.Lock()
		reply := w.replies[ev.RequestID]
		if ev.Type.Terminal() {
			delete(w.replies, ev.RequestID)
		}
		w.mu.Unlock()

		w.publish(reply, ev)
	}
}

// publish sends ev to subject, or to the events subject when subject is empty.
func (w *Worker) publish(subject string, ev sequencer.Event) {
	if subject == "" {
		subject = w.cfg.EventsSubject()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		w.logger.Error("failed to encode event", "requestId", ev.RequestID, "type", ev.Type, "error", err)
		data, err = json.Marshal(sequencer.ErrorEvent(ev.RequestID, err))
		if err != nil {
			return
		}
	}

	if err := w.nc.Publish(subject, data); err != nil {
		w.logger.Warn("failed to publish event", "subject", subject, "requestId", ev.RequestID, "error", err)
	}
}
