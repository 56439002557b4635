package changeover

import (
	"encoding/json"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// TransitionRule describes the changeovers *from* one product.
//
// Exceptions[C] holds the target keys for which the changeover from
// ProductKey uses class C instead of BaseCip.
type TransitionRule struct {
	ProductKey string
	BaseCip    CipClass
	Exceptions map[CipClass]mapset.Set[string]
}

// NewRule returns a rule with the given base class and no exceptions.
func NewRule(productKey string, base CipClass) TransitionRule {
	return TransitionRule{
		ProductKey: productKey,
		BaseCip:    base,
		Exceptions: make(map[CipClass]mapset.Set[string], len(resolutionOrder)),
	}
}

// WithException returns a copy of r whose class c exception set also holds
// targets. r itself is left unchanged.
func (r TransitionRule) WithException(c CipClass, targets ...string) TransitionRule {
	exceptions := make(map[CipClass]mapset.Set[string], len(resolutionOrder))
	for class, set := range r.Exceptions {
		exceptions[class] = set
	}

	set := mapset.NewThreadUnsafeSet[string]()
	if prev, ok := exceptions[c]; ok && prev != nil {
		set = prev.Clone()
	}
	set.Append(targets...)
	exceptions[c] = set
	r.Exceptions = exceptions

	return r
}

// ClassFor resolves the CIP class of the changeover from this rule's product
// to target: CIP1, CIP2, CIP3 exception sets in that order, then BaseCip.
//
// Complexity: O(1) expected.
func (r TransitionRule) ClassFor(target string) CipClass {
	var (
		c   CipClass
		set mapset.Set[string]
		ok  bool
	)
	for _, c = range resolutionOrder {
		set, ok = r.Exceptions[c]
		if ok && set != nil && set.Contains(target) {
			return c
		}
	}

	return r.BaseCip
}

// Validate checks that the rule has a key and a valid base class.
func (r TransitionRule) Validate() error {
	if r.ProductKey == "" {
		return fmt.Errorf("%w: empty product key", ErrInvalidRule)
	}
	if !r.BaseCip.Valid() {
		return fmt.Errorf("%w: product %q has no base CIP class", ErrInvalidRule, r.ProductKey)
	}
	var c CipClass
	for c = range r.Exceptions {
		if !c.Valid() {
			return fmt.Errorf("%w: product %q has exception class %d", ErrInvalidRule, r.ProductKey, uint8(c))
		}
	}

	return nil
}

// ruleWire is the JSON shape of a rule. productName is what upstream
// spreadsheets produce; productKey is accepted as an alias.
type ruleWire struct {
	ProductName string              `json:"productName,omitempty"`
	ProductKey  string              `json:"productKey,omitempty"`
	BaseCip     string              `json:"baseCip"`
	Exceptions  map[string][]string `json:"exceptions,omitempty"`
}

// MarshalJSON encodes the rule with sorted exception lists for stable output.
func (r TransitionRule) MarshalJSON() ([]byte, error) {
	w := ruleWire{
		ProductName: r.ProductKey,
		BaseCip:     r.BaseCip.String(),
	}
	if len(r.Exceptions) > 0 {
		w.Exceptions = make(map[string][]string, len(r.Exceptions))
		var (
			c   CipClass
			set mapset.Set[string]
		)
		for c, set = range r.Exceptions {
			if set == nil || set.Cardinality() == 0 {
				continue
			}
			targets := set.ToSlice()
			slices.Sort(targets)
			w.Exceptions[c.String()] = targets
		}
	}

	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire shape. An absent baseCip leaves BaseCip
// unset so that Validate reports the rule instead of guessing a class.
func (r *TransitionRule) UnmarshalJSON(b []byte) error {
	var w ruleWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	out := TransitionRule{ProductKey: w.ProductName}
	if out.ProductKey == "" {
		out.ProductKey = w.ProductKey
	}
	if w.BaseCip != "" {
		base, err := ParseCipClass(w.BaseCip)
		if err != nil {
			return err
		}
		out.BaseCip = base
	}

	var (
		name    string
		targets []string
	)
	for name, targets = range w.Exceptions {
		c, err := ParseCipClass(name)
		if err != nil {
			return err
		}
		out = out.WithException(c, targets...)
	}
	*r = out

	return nil
}
