package changeover

import (
	"fmt"
	"math"
)

// Durations holds the cleaning time in minutes for every CIP class.
// Unset classes are zero.
type Durations struct {
	CIP1 float64 `json:"cip1" yaml:"cip1"`
	CIP2 float64 `json:"cip2" yaml:"cip2"`
	CIP3 float64 `json:"cip3" yaml:"cip3"`
}

// Of returns the duration for class c, or 0 for CipUnset.
func (d Durations) Of(c CipClass) float64 {
	switch c {
	case CIP1:
		return d.CIP1
	case CIP2:
		return d.CIP2
	case CIP3:
		return d.CIP3
	default:
		return 0
	}
}

// Validate rejects negative, NaN or infinite durations.
func (d Durations) Validate() error {
	var (
		c CipClass
		v float64
	)
	for _, c = range resolutionOrder {
		v = d.Of(c)
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s=%v", ErrNegativeDuration, c, v)
		}
	}

	return nil
}
