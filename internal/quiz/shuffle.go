package quiz

import "math/rand"

// Shuffle returns a uniformly random permutation of items using the
// Fisher-Yates exchange, walking positions from last to first. The input
// slice is left unmodified.
func Shuffle[T any](rng *rand.Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
