// Package changeover - cost matrix construction.
//
// BuildMatrix is the single entry point used by the orchestrator. It is a pure
// function of its inputs: same products, rules and durations ⇒ same matrix.
//
// Complexity: O(R) to index R rules, then O(N²) pair resolutions, each O(1)
// expected (three set lookups).
package changeover

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/katalvlaran/lineseq/matrix"
)

// BuildReport carries non-fatal diagnostics gathered while building.
type BuildReport struct {
	// MissingKeys lists product keys without a rule, sorted and unique.
	MissingKeys []string
	// DuplicateRules lists product keys that had more than one rule (last wins).
	DuplicateRules []string
}

// RuleSet indexes rules by product key.
type RuleSet struct {
	byKey map[string]TransitionRule
}

// NewRuleSet validates and indexes rules. Duplicate keys are not an error:
// the last rule wins and the key is returned in dups.
//
// Complexity: O(R).
func NewRuleSet(rules []TransitionRule) (*RuleSet, []string, error) {
	rs := &RuleSet{byKey: make(map[string]TransitionRule, len(rules))}

	var (
		dups []string
		i    int
		ok   bool
	)
	for i = range rules {
		if err := rules[i].Validate(); err != nil {
			return nil, nil, fmt.Errorf("rule #%d: %w", i, err)
		}
		if _, ok = rs.byKey[rules[i].ProductKey]; ok {
			dups = append(dups, rules[i].ProductKey)
		}
		rs.byKey[rules[i].ProductKey] = rules[i]
	}
	slices.Sort(dups)

	return rs, slices.Compact(dups), nil
}

// Lookup returns the rule for key.
func (rs *RuleSet) Lookup(key string) (TransitionRule, bool) {
	r, ok := rs.byKey[key]

	return r, ok
}

// ResolveClass returns the CIP class for the changeover from → to.
// ok is false when either product has no rule.
func (rs *RuleSet) ResolveClass(from, to string) (CipClass, bool) {
	fromRule, ok := rs.byKey[from]
	if !ok {
		return CipUnset, false
	}
	if _, ok = rs.byKey[to]; !ok {
		return CipUnset, false
	}

	return fromRule.ClassFor(to), true
}

// BuildMatrix builds the N×N changeover matrix for products.
// See BuildMatrixWithReport for details.
func BuildMatrix(products []string, rules []TransitionRule, d Durations, policy MissingRulePolicy) (*matrix.Dense, error) {
	m, _, err := BuildMatrixWithReport(products, rules, d, policy)

	return m, err
}

// BuildMatrixWithReport builds the changeover matrix and returns diagnostics.
//
// Contract:
//   - len(products)==0 ⇒ a 0×0 matrix.
//   - dist[i][i] == 0 and is never read by the solvers.
//   - dist[i][j] is decided by rule(products[i]) (the *from* product).
//   - A pair where either product lacks a rule costs 0 (MissingZero),
//     +Inf (MissingInfinite), or fails the build (MissingReject).
//
// Errors: ErrInvalidRule, ErrNegativeDuration, ErrMissingRule, ErrUnknownPolicy.
func BuildMatrixWithReport(products []string, rules []TransitionRule, d Durations, policy MissingRulePolicy) (*matrix.Dense, BuildReport, error) {
	var report BuildReport

	if err := d.Validate(); err != nil {
		return nil, report, err
	}
	if policy > MissingReject {
		return nil, report, fmt.Errorf("%w: %d", ErrUnknownPolicy, uint8(policy))
	}

	rs, dups, err := NewRuleSet(rules)
	if err != nil {
		return nil, report, err
	}
	report.DuplicateRules = dups

	n := len(products)
	m, err := matrix.NewSquare(n)
	if err != nil {
		return nil, report, err
	}

	// Resolve each position's rule once; nil marks a missing rule.
	var (
		byPos   = make([]*TransitionRule, n)
		missing = make(map[string]struct{})
		i, j    int
	)
	for i = 0; i < n; i++ {
		if r, ok := rs.byKey[products[i]]; ok {
			byPos[i] = &r
		} else {
			missing[products[i]] = struct{}{}
		}
	}
	if len(missing) > 0 {
		report.MissingKeys = make([]string, 0, len(missing))
		for key := range missing {
			report.MissingKeys = append(report.MissingKeys, key)
		}
		slices.Sort(report.MissingKeys)
	}
	if policy == MissingReject && len(report.MissingKeys) > 0 {
		return nil, report, fmt.Errorf("%w: %s", ErrMissingRule, strings.Join(report.MissingKeys, ", "))
	}

	var w float64
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			if i == j {
				continue
			}
			if byPos[i] == nil || byPos[j] == nil {
				if policy == MissingInfinite {
					w = math.Inf(1)
				} else {
					w = 0
				}
			} else {
				w = d.Of(byPos[i].ClassFor(products[j]))
			}
			if err = m.Set(i, j, w); err != nil {
				return nil, report, err
			}
		}
	}

	return m, report, nil
}
