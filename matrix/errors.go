// Package matrix: sentinel error set.
// All constructors and accessors return these sentinels (optionally wrapped
// with coordinates); callers match them with errors.Is.
package matrix

import "errors"

var (
	// ErrInvalidDimensions indicates that requested matrix dimensions are negative
	// or that row slices passed to FromRows are ragged.
	ErrInvalidDimensions = errors.New("matrix: invalid dimensions")

	// ErrIndexOutOfBounds indicates that a row or column index is outside valid range.
	ErrIndexOutOfBounds = errors.New("matrix: index out of bounds")

	// ErrNaN signals a NaN value where a number (possibly +Inf) is required.
	ErrNaN = errors.New("matrix: NaN value")
)
