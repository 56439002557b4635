// Package metrics provides types.MetricsCollector implementations: a no-op
// collector and a Prometheus-backed one.
package metrics

import "github.com/katalvlaran/lineseq/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Example:
//
//	eng, _ := sequencer.NewEngine(cfg, sequencer.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordRequest discards the request counter.
func (n *NopMetrics) RecordRequest(_ /* kind */, _ /* algorithm */ string) {}

// RecordSolveDuration discards the solve duration.
func (n *NopMetrics) RecordSolveDuration(_ /* algorithm */ string, _ /* seconds */ float64) {}

// RecordStateTransition discards the state transition.
func (n *NopMetrics) RecordStateTransition(_ /* from */, _ /* to */ types.EngineState) {}

// RecordSuperseded discards the supersede counter.
func (n *NopMetrics) RecordSuperseded() {}

// RecordError discards the error counter.
func (n *NopMetrics) RecordError(_ /* kind */ string) {}

// RecordCost discards the sequence cost.
func (n *NopMetrics) RecordCost(_ /* algorithm */ string, _ /* minutes */ float64) {}
