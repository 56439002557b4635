package sequencer

import "github.com/katalvlaran/lineseq/types"

// Re-exported contracts; see package types.
type (
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
	State            = types.EngineState
)

// Re-exported engine states.
const (
	StateIdle      = types.EngineIdle
	StateRunning   = types.EngineRunning
	StateDone      = types.EngineDone
	StateError     = types.EngineError
	StateCancelled = types.EngineCancelled
)
