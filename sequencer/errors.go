package sequencer

import "errors"

// Sentinel errors returned by the Engine.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("sequencer: invalid configuration")

	// ErrInvalidRequest is returned when a request fails validation.
	ErrInvalidRequest = errors.New("sequencer: invalid request")

	// ErrAlreadyStarted is returned when Start is called on a running engine.
	ErrAlreadyStarted = errors.New("sequencer: engine already started")

	// ErrNotStarted is returned when Submit or Stop is called before Start.
	ErrNotStarted = errors.New("sequencer: engine not started")

	// ErrStopped is returned when Submit is called after Stop.
	ErrStopped = errors.New("sequencer: engine stopped")

	// ErrInternal wraps a recovered panic.
	ErrInternal = errors.New("sequencer: internal error")
)
