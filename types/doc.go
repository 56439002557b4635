// Package types holds the interfaces and enums shared by the sequencer, its
// transports and the internal logging/metrics implementations.
//
// Keeping them here lets internal packages depend on the contracts without
// importing the sequencer package itself. The sequencer package re-exports
// them with type aliases.
package types
