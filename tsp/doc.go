// Package tsp provides minimum Hamiltonian *path* solvers over an
// asymmetric changeover-cost matrix.
//
// Unlike the classic travelling-salesman cycle, a production sequence has no
// fixed start and no return edge: the cost of an Order o of N positions is
//
//	Σ dist[o[i]][o[i+1]]  for i = 0..N-2   (N−1 edges)
//
// Solvers:
//
//   - HeldKarpPath: exact bitmask dynamic programming, O(n²·2ⁿ) time and
//     O(n·2ⁿ) memory. Rejects n > Options.MaxExactNodes with ErrTooManyNodes.
//   - HeuristicPath: anytime multi-start nearest neighbor, path 2-opt,
//     randomized 3-opt and random restarts, bounded by Options.TimeBudget
//     and the caller's context.
//
// Local-search building blocks are exported as TwoOptPath and ThreeOptPath.
//
// All solvers accept any matrix.Matrix:
//   - Negative and NaN entries are rejected.
//   - +Inf marks an unusable transition; if no finite path exists the
//     solvers return ErrIncompleteGraph.
//   - The diagonal is never read.
//
// Randomness comes only from Options.Rand or Options.Seed (seed==0 selects a
// fixed default stream), so runs are reproducible when the caller wants them
// to be. Nothing in this package logs.
package tsp
