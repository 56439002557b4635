// Package matrix provides the square cost-matrix storage shared by the
// changeover builder and the path solvers.
//
// The package provides:
//
//   - Matrix: a small interface over a two-dimensional float64 array with
//     bounds-checked accessors and deep cloning.
//   - Dense: a row-major implementation backed by a single flat slice, with a
//     Row fast path used by solvers to prefetch weights.
//
// Numeric policy: NaN is rejected by Dense.Set; +Inf is accepted and means
// "no usable transition" to the solvers.
package matrix
