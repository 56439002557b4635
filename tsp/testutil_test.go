// Package tsp_test provides lightweight testing helpers shared across *_test.go
// files in this package.
package tsp_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lineseq/matrix"
	"github.com/katalvlaran/lineseq/tsp"
)

const (
	// epsCost is the tolerance for comparing rounded costs.
	epsCost = 1e-9

	// seedDet is a deterministic seed for RNG-based components.
	seedDet = int64(7)
)

var inf = math.Inf(1)

// scenarioRows is the a/b/c line: a=0, b=1, c=2. The unique optimum is b→a→c = 20.
func scenarioRows() [][]float64 {
	return [][]float64{
		{0, 10, 10},
		{10, 0, 240},
		{300, 300, 0},
	}
}

// testDense is a minimal matrix.Matrix that is not *matrix.Dense, so solvers
// take their generic At() path.
type testDense struct{ a [][]float64 }

var _ matrix.Matrix = testDense{}

func (m testDense) Rows() int { return len(m.a) }
func (m testDense) Cols() int {
	if len(m.a) == 0 {
		return 0
	}

	return len(m.a[0])
}
func (m testDense) At(i, j int) (float64, error) {
	if i < 0 || i >= m.Rows() || j < 0 || j >= m.Cols() {
		return 0, matrix.ErrIndexOutOfBounds
	}

	return m.a[i][j], nil
}
func (m testDense) Set(i, j int, v float64) error {
	if i < 0 || i >= m.Rows() || j < 0 || j >= m.Cols() {
		return matrix.ErrIndexOutOfBounds
	}
	m.a[i][j] = v

	return nil
}
// mustDense builds a *matrix.Dense or fails the test.
func mustDense(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)

	return m
}

// randomAsym returns an n×n asymmetric matrix with integer weights in [1, maxW].
func randomAsym(n int, seed int64, maxW int) [][]float64 {
	r := rand.New(rand.NewSource(seed))
	a := make([][]float64, n)

	var i, j int
	for i = 0; i < n; i++ {
		a[i] = make([]float64, n)
		for j = 0; j < n; j++ {
			if i != j {
				a[i][j] = float64(1 + r.Intn(maxW))
			}
		}
	}

	return a
}

// chainRows returns a matrix where only i→i+1 is finite (cost 1).
func chainRows(n int) [][]float64 {
	a := make([][]float64, n)

	var i, j int
	for i = 0; i < n; i++ {
		a[i] = make([]float64, n)
		for j = 0; j < n; j++ {
			switch {
			case i == j:
			case j == i+1:
				a[i][j] = 1
			default:
				a[i][j] = inf
			}
		}
	}

	return a
}

// bruteForce returns the minimal finite path cost by enumerating all orders.
// ok is false when every order uses an infinite edge.
func bruteForce(rows [][]float64) (best float64, ok bool) {
	n := len(rows)
	best = inf
	perm := make([]int, n)
	used := make([]bool, n)

	var rec func(pos int, acc float64)
	rec = func(pos int, acc float64) {
		if acc >= best {
			return
		}
		if pos == n {
			best = acc
			ok = true

			return
		}
		var v int
		for v = 0; v < n; v++ {
			if used[v] {
				continue
			}
			step := 0.0
			if pos > 0 {
				step = rows[perm[pos-1]][v]
				if math.IsInf(step, 1) {
					continue
				}
			}
			used[v] = true
			perm[pos] = v
			rec(pos+1, acc+step)
			used[v] = false
		}
	}
	rec(0, 0)

	return best, ok
}

// requirePermutation asserts that order visits 0..n-1 exactly once.
func requirePermutation(t *testing.T, order []int, n int) {
	t.Helper()
	require.NoError(t, tsp.ValidateOrder(order, n), "order %v", order)
}

// Repeat runs fn N times. Useful for determinism/stability checks.
func Repeat(t *testing.T, n int, fn func(t *testing.T)) {
	t.Helper()
	var i int
	for i = 0; i < n; i++ {
		fn(t)
	}
}
