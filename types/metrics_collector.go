package types

// MetricsCollector defines methods for recording sequencing metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods are called from engine goroutines and must be thread-safe.
type MetricsCollector interface {
	// RecordRequest counts an accepted request by kind ("optimize", "compare")
	// and resolved algorithm ("heldKarp", "heuristic", "both", "none").
	RecordRequest(kind, algorithm string)

	// RecordSolveDuration records the wall-clock duration of one solver run.
	RecordSolveDuration(algorithm string, seconds float64)

	// RecordStateTransition records an engine state transition.
	RecordStateTransition(from, to EngineState)

	// RecordSuperseded counts requests cancelled by a newer submission.
	RecordSuperseded()

	// RecordError counts failed requests by error kind.
	RecordError(kind string)

	// RecordCost records the total changeover minutes of a produced sequence.
	RecordCost(algorithm string, minutes float64)
}
