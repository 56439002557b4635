package changeover

import (
	"fmt"
	"strings"
)

// CipClass identifies a Clean-In-Place procedure class.
// The zero value is CipUnset and never resolves to a duration.
type CipClass uint8

const (
	// CipUnset marks a missing class; rules with an unset base class are invalid.
	CipUnset CipClass = iota
	// CIP1 is the lightest cleaning class (typically a rinse).
	CIP1
	// CIP2 is the intermediate cleaning class.
	CIP2
	// CIP3 is the full cleaning class.
	CIP3
)

// resolutionOrder is the priority in which exception sets are consulted.
var resolutionOrder = [...]CipClass{CIP1, CIP2, CIP3}

// String returns the canonical lower-case name ("cip1", "cip2", "cip3").
func (c CipClass) String() string {
	switch c {
	case CIP1:
		return "cip1"
	case CIP2:
		return "cip2"
	case CIP3:
		return "cip3"
	default:
		return "unset"
	}
}

// Valid reports whether c is one of CIP1, CIP2 or CIP3.
func (c CipClass) Valid() bool {
	return c >= CIP1 && c <= CIP3
}

// ParseCipClass parses "cip1".."cip3" case-insensitively. Bare digits
// ("1", "2", "3") are accepted as well.
func ParseCipClass(s string) (CipClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cip1", "1":
		return CIP1, nil
	case "cip2", "2":
		return CIP2, nil
	case "cip3", "3":
		return CIP3, nil
	default:
		return CipUnset, fmt.Errorf("%w: %q", ErrUnknownCipClass, s)
	}
}

// MarshalText implements encoding.TextMarshaler (used by JSON and YAML).
func (c CipClass) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCipClass, uint8(c))
	}

	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler (used by JSON and YAML).
func (c *CipClass) UnmarshalText(b []byte) error {
	parsed, err := ParseCipClass(string(b))
	if err != nil {
		return err
	}
	*c = parsed

	return nil
}
