// Package sequencer orchestrates changeover-minimizing sequencing requests for
// one production line.
//
// An Engine owns a single worker goroutine. Requests submitted with Submit run
// there one at a time; a newer submission cancels the in-flight computation
// and its remaining events are suppressed. Results and progress are fanned out
// to subscribers as Events.
//
// Optimize and Compare are the synchronous counterparts used by transports
// that handle one request per call.
//
// Basic usage:
//
//	eng, err := sequencer.NewEngine(sequencer.DefaultConfig(), sequencer.WithLogger(logger))
//	if err != nil { ... }
//	if err := eng.Start(ctx); err != nil { ... }
//	defer eng.Stop()
//
//	events, unsubscribe := eng.Subscribe()
//	defer unsubscribe()
//
//	id, _ := eng.Submit(req)
//	for ev := range events {
//	    if ev.RequestID == id && ev.Type.Terminal() {
//	        break
//	    }
//	}
package sequencer
