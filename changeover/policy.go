package changeover

import (
	"fmt"
	"strings"
)

// MissingRulePolicy decides the cost of a transition involving a product
// that has no TransitionRule.
type MissingRulePolicy uint8

const (
	// MissingZero charges nothing for the transition. This is the historical
	// behavior and the default.
	MissingZero MissingRulePolicy = iota
	// MissingInfinite makes the transition unusable (+Inf). Solvers avoid such
	// edges and fail with tsp.ErrIncompleteGraph if no path avoids them.
	MissingInfinite
	// MissingReject fails the build with ErrMissingRule.
	MissingReject
)

// String returns "zero", "infinite" or "reject".
func (p MissingRulePolicy) String() string {
	switch p {
	case MissingZero:
		return "zero"
	case MissingInfinite:
		return "infinite"
	case MissingReject:
		return "reject"
	default:
		return fmt.Sprintf("MissingRulePolicy(%d)", uint8(p))
	}
}

// ParsePolicy parses a policy name case-insensitively; "" yields MissingZero.
func ParsePolicy(s string) (MissingRulePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zero":
		return MissingZero, nil
	case "infinite", "inf":
		return MissingInfinite, nil
	case "reject":
		return MissingReject, nil
	default:
		return MissingZero, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p MissingRulePolicy) MarshalText() ([]byte, error) {
	if p > MissingReject {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, uint8(p))
	}

	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *MissingRulePolicy) UnmarshalText(b []byte) error {
	parsed, err := ParsePolicy(string(b))
	if err != nil {
		return err
	}
	*p = parsed

	return nil
}
