package natsworker_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lineseq/internal/logging"
	"github.com/katalvlaran/lineseq/sequencer"
	"github.com/katalvlaran/lineseq/transport/natsworker"
)

const scenarioJSON = `{
	"id": %q,
	"products": ["a", "b", "c"],
	"transitions": [
		{"productName": "a", "baseCip": "cip1"},
		{"productName": "b", "baseCip": "cip2", "exceptions": {"cip1": ["a"]}},
		{"productName": "c", "baseCip": "cip3"}
	],
	"cipDurations": {"cip1": 10, "cip2": 240, "cip3": 300}
}`

// startNATS runs an in-process server on a random port and connects to it.
func startNATS(t *testing.T) *nats.Conn {
	t.Helper()

	opts := &server.Options{
		Host:  "127.0.0.1",
		Port:  -1,
		NoLog: true,
	}
	ns, err := server.NewServer(opts)
	require.NoError(t, err)

	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("embedded NATS server not ready within timeout")
	}

	nc, err := nats.Connect(ns.ClientURL(), nats.Timeout(2*time.Second))
	if err != nil {
		ns.Shutdown()
		t.Fatalf("failed to connect to embedded NATS server: %v", err)
	}

	t.Cleanup(func() {
		nc.Close()
		ns.Shutdown()
		ns.WaitForShutdown()
	})

	return nc
}

// startWorker starts an engine and a worker for line "l1".
func startWorker(t *testing.T, nc *nats.Conn) *natsworker.Worker {
	t.Helper()

	eng, err := sequencer.NewEngine(sequencer.Config{}, sequencer.WithLogger(logging.NewTest(t)))
	require.NoError(t, err)
	require.NoError(t, eng.Start(t.Context()))
	t.Cleanup(func() { _ = eng.Stop() })

	w, err := natsworker.New(nc, eng, natsworker.Config{Line: "l1"}, logging.NewTest(t))
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context()))
	t.Cleanup(func() { _ = w.Stop() })
	require.NoError(t, nc.Flush())

	return w
}

// nextTerminal reads events from sub until a terminal one arrives.
func nextTerminal(t *testing.T, sub *nats.Subscription) (sequencer.Event, []sequencer.Event) {
	t.Helper()

	var seen []sequencer.Event
	for {
		msg, err := sub.NextMsg(5 * time.Second)
		require.NoError(t, err)

		var ev sequencer.Event
		require.NoError(t, json.Unmarshal(msg.Data, &ev))
		seen = append(seen, ev)
		if ev.Type.Terminal() {
			return ev, seen
		}
	}
}

func TestWorker_ReplySubject(t *testing.T) {
	nc := startNATS(t)
	startWorker(t, nc)

	inbox := nats.NewInbox()
	sub, err := nc.SubscribeSync(inbox)
	require.NoError(t, err)

	body := []byte(fmt.Sprintf(scenarioJSON, "r-1"))
	require.NoError(t, nc.PublishRequest("lineseq.l1.request", inbox, body))

	ev, seen := nextTerminal(t, sub)
	require.Equal(t, sequencer.EventResult, ev.Type)
	require.Equal(t, "r-1", ev.RequestID)
	require.NotNil(t, ev.Result)
	require.Equal(t, []string{"b", "a", "c"}, ev.Result.Order)
	require.InDelta(t, 20.0, ev.Result.TotalCost, 1e-9)
	require.Equal(t, "heldKarp", ev.Result.Algorithm)

	for _, e := range seen {
		require.Equal(t, "r-1", e.RequestID)
	}
}

func TestWorker_MalformedRequest(t *testing.T) {
	nc := startNATS(t)
	startWorker(t, nc)

	inbox := nats.NewInbox()
	sub, err := nc.SubscribeSync(inbox)
	require.NoError(t, err)

	require.NoError(t, nc.PublishRequest("lineseq.l1.request", inbox, []byte(`{"products": [`)))

	ev, _ := nextTerminal(t, sub)
	require.Equal(t, sequencer.EventError, ev.Type)
	require.Empty(t, ev.RequestID)
	require.NotEmpty(t, ev.Message)
}

func TestWorker_InvalidRequestReachesEngine(t *testing.T) {
	nc := startNATS(t)
	startWorker(t, nc)

	inbox := nats.NewInbox()
	sub, err := nc.SubscribeSync(inbox)
	require.NoError(t, err)

	body := []byte(`{"id": "bad", "type": "optimize", "products": ["a"], "algorithm": "genetic"}`)
	require.NoError(t, nc.PublishRequest("lineseq.l1.request", inbox, body))

	ev, _ := nextTerminal(t, sub)
	require.Equal(t, sequencer.EventError, ev.Type)
	require.Equal(t, "bad", ev.RequestID)
}

func TestWorker_EventsSubjectWithoutReply(t *testing.T) {
	nc := startNATS(t)
	startWorker(t, nc)

	sub, err := nc.SubscribeSync("lineseq.l1.events")
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	require.NoError(t, nc.Publish("lineseq.l1.request", []byte(fmt.Sprintf(scenarioJSON, "r-2"))))

	ev, _ := nextTerminal(t, sub)
	require.Equal(t, sequencer.EventResult, ev.Type)
	require.Equal(t, "r-2", ev.RequestID)
	require.Equal(t, []int{1, 0, 2}, ev.Result.Indices)
}

func TestWorker_Lifecycle(t *testing.T) {
	nc := startNATS(t)

	eng, err := sequencer.NewEngine(sequencer.Config{})
	require.NoError(t, err)

	w, err := natsworker.New(nc, eng, natsworker.Config{Line: "l1"}, nil)
	require.NoError(t, err)
	require.ErrorIs(t, w.Stop(), natsworker.ErrNotStarted)

	require.NoError(t, w.Start(t.Context()))
	require.ErrorIs(t, w.Start(t.Context()), natsworker.ErrAlreadyStarted)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestNew_RequiresConnectionAndEngine(t *testing.T) {
	_, err := natsworker.New(nil, nil, natsworker.Config{Line: "l1"}, nil)
	require.ErrorIs(t, err, natsworker.ErrInvalidConfig)
}

func TestWorker_SupersedeKeepsReplyRoutes(t *testing.T) {
	nc := startNATS(t)
	startWorker(t, nc)

	stray, err := nc.SubscribeSync("lineseq.l1.events")
	require.NoError(t, err)
	inbox1, inbox2 := nats.NewInbox(), nats.NewInbox()
	sub1, err := nc.SubscribeSync(inbox1)
	require.NoError(t, err)
	sub2, err := nc.SubscribeSync(inbox2)
	require.NoError(t, err)

	slow := []byte(`{"id": "R1", "algorithm": "heuristic", "timeBudgetMs": 5000,
		"products": ["p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9", "p10", "p11"],
		"cipDurations": {"cip1": 10, "cip2": 60, "cip3": 240}}`)
	require.NoError(t, nc.PublishRequest("lineseq.l1.request", inbox1, slow))

	msg, err := sub1.NextMsg(5 * time.Second)
	require.NoError(t, err)
	var first sequencer.Event
	require.NoError(t, json.Unmarshal(msg.Data, &first))
	require.Equal(t, "R1", first.RequestID)

	require.NoError(t, nc.PublishRequest("lineseq.l1.request", inbox2, []byte(fmt.Sprintf(scenarioJSON, "R2"))))

	ev, seen := nextTerminal(t, sub2)
	require.Equal(t, sequencer.EventResult, ev.Type)
	for _, e := range seen {
		require.Equal(t, "R2", e.RequestID)
	}

	// R1 never leaks onto the shared events subject
	_, err = stray.NextMsg(200 * time.Millisecond)
	require.ErrorIs(t, err, nats.ErrTimeout)
}
