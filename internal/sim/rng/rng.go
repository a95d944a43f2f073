// Package rng holds the single random stream a generation run threads through
// every stage. Draw order is part of the output contract: the same seed and the
// same sequence of calls reproduce the same map.
package rng

import "math/rand"

// Source yields uniform floats in [0, 1).
type Source interface {
	Float64() float64
}

// New returns a deterministic source seeded from seed.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(int64(seed)))
}

// Uniform draws from [lo, hi). A collapsed range returns lo without a draw.
func Uniform(r Source, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + (hi-lo)*r.Float64()
}

// UniformInt draws an integer from [lo, hi). A collapsed range returns lo without a draw.
func UniformInt(r Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	v := lo + int(float64(hi-lo)*r.Float64())
	if v >= hi {
		v = hi - 1
	}
	return v
}

// Chance reports whether a single draw falls below p.
func Chance(r Source, p float64) bool {
	return r.Float64() < p
}

// Fixed is a Source that replays a fixed list of draws and then repeats the last one.
// Tests use it to pin individual branches.
type Fixed struct {
	Values []float64
	n      int
}

func (f *Fixed) Float64() float64 {
	if len(f.Values) == 0 {
		return 0
	}
	i := f.n
	if i >= len(f.Values) {
		i = len(f.Values) - 1
	}
	f.n++
	return f.Values[i]
}

// Draws reports how many values have been consumed.
func (f *Fixed) Draws() int { return f.n }
