package types

// EngineState represents the lifecycle state of a sequencing engine.
//
// Normal progression:
//
//	Idle → Running → Done | Error
//
// A submission while Running supersedes the current computation:
//
//	Running → Cancelled → Idle → Running
//
// Done, Error and Cancelled are not terminal for the engine; the next
// submission starts a new Running phase.
type EngineState int

const (
	// EngineIdle indicates no computation is in flight.
	EngineIdle EngineState = iota

	// EngineRunning indicates a computation is in flight.
	EngineRunning

	// EngineDone indicates the last computation produced a result.
	EngineDone

	// EngineError indicates the last computation failed.
	EngineError

	// EngineCancelled indicates the last computation was superseded or stopped.
	EngineCancelled
)

// String returns the string representation of the state.
func (s EngineState) String() string {
	switch s {
	case EngineIdle:
		return "Idle"
	case EngineRunning:
		return "Running"
	case EngineDone:
		return "Done"
	case EngineError:
		return "Error"
	case EngineCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}
