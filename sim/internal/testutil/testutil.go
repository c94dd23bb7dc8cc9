// Package testutil provides shared assertion helpers and action generators
// used across the sim/ and sim/env/ test packages.
package testutil

import (
	"math"
	"math/rand"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertAllWithin fails once for every element of xs that is non-finite or
// outside the closed interval [lo, hi].
func AssertAllWithin(t *testing.T, name string, xs []float64, lo, hi float64) {
	t.Helper()
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) || x < lo || x > hi {
			t.Errorf("%s[%d] = %v, want finite in [%v, %v]", name, i, x, lo, hi)
		}
	}
}

// RandomDeltas returns n (lane, speed) pairs with each component drawn
// uniformly from {-1, 0, +1}. The sequence depends only on seed.
func RandomDeltas(seed int64, n int) [][2]int {
	rng := rand.New(rand.NewSource(seed))
	out := make([][2]int, n)
	for i := range out {
		out[i] = [2]int{rng.Intn(3) - 1, rng.Intn(3) - 1}
	}
	return out
}

// RandomActions returns n discrete actions drawn uniformly from [0, numActions).
func RandomActions(seed int64, n, numActions int) []int {
	rng := rand.New(rand.NewSource(seed))
	out := make([]int, n)
	for i := range out {
		out[i] = rng.Intn(numActions)
	}
	return out
}
