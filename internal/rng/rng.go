// Package rng provides the randomness primitives used by the click and
// timing models: truncated-normal sampling, chi-squared sampling,
// probability gates, and date-seeded spatial profiles.
//
// The daily seed profiles are deliberate: a given on-screen object should
// receive the same statistical distribution of "preferred" click spots for
// a whole day, so repeated clicks on the same object cluster naturally
// instead of scattering uniformly.
package rng

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"
)

// TruncatedNormal samples a normal distribution via Box-Muller, rejecting
// draws outside [lower, upper]. A NaN mean asks for the midpoint; a mean
// outside the range is pulled to the nearest bound so the rejection loop
// terminates. A non-positive stdev defaults to (upper-lower)/9.
func TruncatedNormal(lower, upper, mean, stdev float64) float64 {
	if upper <= lower {
		return lower
	}
	if math.IsNaN(mean) {
		mean = (lower + upper) / 2
	}
	mean = min(max(mean, lower), upper)
	if stdev <= 0 {
		stdev = (upper - lower) / 9
	}
	for {
		sample := rand.NormFloat64()*stdev + mean
		if sample >= lower && sample <= upper {
			return sample
		}
	}
}

// TruncatedNormalInt samples a truncated normal and rounds to the
// nearest integer.
func TruncatedNormalInt(lower, upper, mean, stdev float64) int {
	return int(math.Round(TruncatedNormal(lower, upper, mean, stdev)))
}

// ChiSquared samples a chi-squared distribution with df degrees of
// freedom, rejecting values above cutoff to keep the tail bounded.
func ChiSquared(df int, cutoff float64) float64 {
	if df < 1 {
		df = 1
	}
	for {
		sum := 0.0
		for i := 0; i < df; i++ {
			z := rand.NormFloat64()
			sum += z * z
		}
		if cutoff <= 0 || sum <= cutoff {
			return sum
		}
	}
}

// Chance returns true with probability p (clamped to [0, 1]).
func Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return rand.Float64() < p
}

// Seed is a fractional (x, y) position inside the unit square used to
// bias click sampling toward a consistent sub-region of an object.
type Seed struct {
	FX float64
	FY float64
}

// nowFunc is substitutable by tests that need a fixed date.
var nowFunc = time.Now

// DailySeeds derives n seed fractions from the current date plus an
// object-position modifier. The same (date, modifier) pair always yields
// the same seed list, so an object keeps its preferred click spots for a
// whole session.
func DailySeeds(modifier int, n int) []Seed {
	if n <= 0 {
		n = 8
	}
	h := fnv.New64a()
	h.Write([]byte(nowFunc().Format("2006-01-02")))
	r := rand.New(rand.NewSource(int64(h.Sum64()) + int64(modifier)))

	seeds := make([]Seed, n)
	for i := range seeds {
		seeds[i] = Seed{FX: r.Float64(), FY: r.Float64()}
	}
	return seeds
}
