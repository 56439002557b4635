// Package tsp - nearest-neighbor construction for open paths.
package tsp

import "math"

// nearestNeighborPath builds a path from start by repeatedly moving to the
// cheapest finite unvisited successor (lowest index on ties). When the walk
// gets stuck on +Inf edges, the remaining nodes are appended in index order so
// the result is always a full permutation.
//
// Complexity: O(n²).
func nearestNeighborPath(w []float64, n, start int) []int {
	var (
		order   = make([]int, 0, n)
		visited = make([]bool, n)
		cur     = start
		next    int
		best    float64
		x       float64
		j       int
	)
	order = append(order, cur)
	visited[cur] = true

	for len(order) < n {
		next = -1
		best = math.Inf(1)
		for j = 0; j < n; j++ {
			if visited[j] {
				continue
			}
			x = w[cur*n+j]
			if x < best {
				best = x
				next = j
			}
		}
		if next < 0 {
			break
		}
		visited[next] = true
		order = append(order, next)
		cur = next
	}

	for j = 0; j < n && len(order) < n; j++ {
		if !visited[j] {
			visited[j] = true
			order = append(order, j)
		}
	}

	return order
}
