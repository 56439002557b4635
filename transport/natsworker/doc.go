// Package natsworker exposes a sequencer.Engine over NATS.
//
// A Worker hosts the engine of one production line. Requests arrive as JSON
// on "<prefix>.<line>.request" (queue subscription); events are published as
// JSON to the request's reply subject, or to "<prefix>.<line>.events" when
// the request carried none.
//
// Example:
//
//	nc, _ := nats.Connect(nats.DefaultURL)
//	w, _ := natsworker.New(nc, engine, natsworker.Config{Line: "line-1"}, logger)
//	_ = w.Start(ctx)
//	defer w.Stop()
package natsworker
