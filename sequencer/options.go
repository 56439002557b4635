package sequencer

import "math/rand"

// Option configures an Engine with optional dependencies.
type Option func(*engineOptions)

// engineOptions holds optional Engine configuration.
type engineOptions struct {
	logger  Logger
	metrics MetricsCollector
	source  rand.Source
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (see internal/logging for slog and test loggers)
//
// Returns:
//   - Option: Functional option for NewEngine
func WithLogger(logger Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewEngine
//
// Example:
//
//	collector := metrics.NewPrometheus(prometheus.DefaultRegisterer, "lineseq")
//	eng, _ := sequencer.NewEngine(cfg, sequencer.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *engineOptions) {
		o.metrics = metrics
	}
}

// WithRandSource sets the source used to draw per-request heuristic seeds
// when neither the request nor Config.Seed pins one. The Engine serializes
// access to src.
//
// Parameters:
//   - src: rand.Source (e.g. rand.NewSource(42) for reproducible tests)
//
// Returns:
//   - Option: Functional option for NewEngine
func WithRandSource(src rand.Source) Option {
	return func(o *engineOptions) {
		o.source = src
	}
}
