package tsp

import "math/rand"

// zeroSeed replaces Options.Seed == 0 so that unseeded runs stay reproducible.
const zeroSeed int64 = 1

// rngFor returns the random stream of one heuristic run: the injected
// Options.Rand when present, else a private source seeded from Options.Seed.
// A *rand.Rand is not safe for concurrent use and is never shared.
func rngFor(opts Options) *rand.Rand {
	if opts.Rand != nil {
		return opts.Rand
	}
	seed := opts.Seed
	if seed == 0 {
		seed = zeroSeed
	}

	return rand.New(rand.NewSource(seed))
}

// shuffleOrder permutes order in place (Fisher–Yates).
func shuffleOrder(order []int, rng *rand.Rand) {
	for i := len(order) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
}

// threeCuts draws 1 ≤ i < j < k ≤ n−2 uniformly from the distinct triples.
// Requires n ≥ 5.
//
// Complexity: O(1) expected.
func threeCuts(n int, rng *rand.Rand) (i, j, k int) {
	m := n - 2 // candidate positions 1..n-2
	for {
		i = 1 + rng.Intn(m)
		j = 1 + rng.Intn(m)
		k = 1 + rng.Intn(m)
		if i == j || j == k || i == k {
			continue
		}
		// sort the three values
		if i > j {
			i, j = j, i
		}
		if j > k {
			j, k = k, j
		}
		if i > j {
			i, j = j, i
		}

		return i, j, k
	}
}
