package changeover

import "errors"

var (
	// ErrUnknownCipClass is returned when a CIP class name cannot be parsed.
	ErrUnknownCipClass = errors.New("changeover: unknown CIP class")

	// ErrUnknownPolicy is returned when a missing-rule policy name cannot be parsed.
	ErrUnknownPolicy = errors.New("changeover: unknown missing-rule policy")

	// ErrInvalidRule is returned for malformed rules (empty key, unset base class).
	ErrInvalidRule = errors.New("changeover: invalid transition rule")

	// ErrNegativeDuration is returned when a CIP duration is negative, NaN or infinite.
	ErrNegativeDuration = errors.New("changeover: CIP duration must be a finite non-negative number")

	// ErrMissingRule is returned under MissingReject when a product has no rule.
	ErrMissingRule = errors.New("changeover: no transition rule for product")
)
