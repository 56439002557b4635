// Package tsp — order utilities shared by exact/heuristic solvers.
//
// An Order is an open path: a permutation of 0..n-1 without a closing vertex.
// Helpers here never touch a distance matrix.
package tsp

// ValidateOrder checks that order is a permutation of {0..n-1} of length n.
// n==0 accepts only an empty order.
//
// Complexity: O(n) time, O(n) space.
func ValidateOrder(order []int, n int) error {
	if len(order) != n || n < 0 {
		return ErrDimensionMismatch
	}
	seen := make([]bool, n)

	var (
		i int
		v int
	)
	for i = 0; i < n; i++ {
		v = order[i]
		if v < 0 || v >= n || seen[v] {
			return ErrDimensionMismatch
		}
		seen[v] = true
	}

	return nil
}

// identityOrder returns [0, 1, …, n−1].
func identityOrder(n int) []int {
	out := make([]int, n)

	var i int
	for i = 0; i < n; i++ {
		out[i] = i
	}

	return out
}

// reverseInPlace reverses a[i..k] inclusive.
//
// Complexity: O(k−i+1).
func reverseInPlace(a []int, i, k int) {
	for i < k {
		a[i], a[k] = a[k], a[i]
		i++
		k--
	}
}

// copyOrder returns an independent copy of order.
func copyOrder(order []int) []int {
	return append([]int(nil), order...)
}
