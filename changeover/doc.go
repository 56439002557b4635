// Package changeover turns a CIP rule table into a changeover-cost matrix.
//
// A production line switching from one product to another must run a
// Clean-In-Place procedure. Each product carries a TransitionRule: a base
// CIP class plus directional exceptions naming the *target* products for
// which a different class applies. Durations maps every class to minutes.
//
// BuildMatrix evaluates, for every ordered pair of positions (i, j) in the
// product list, the rule of the *from* product and writes the duration of the
// resolved class into dist[i][j]. The result is generally asymmetric.
//
// Resolution order for a pair (from, to):
//
//	CIP1 exception contains to → CIP1
//	CIP2 exception contains to → CIP2
//	CIP3 exception contains to → CIP3
//	otherwise                  → rule(from).BaseCip
//
// Products without a rule are handled by MissingRulePolicy: zero cost (the
// default), +Inf (the transition is unusable) or an ErrMissingRule failure.
//
// All functions are pure; nothing is logged or cached.
package changeover
