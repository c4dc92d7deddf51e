// Package metrics implements the derived-metrics pipeline of the dashboard:
// period selection over the 12-month dataset, aggregation into totals,
// comparison deltas and the chart series adapter.
//
// Every function is a pure transform of its inputs. Randomness is always
// injected so callers can reproduce a view from its seed.
package metrics

import "math/rand/v2"

// Jitter perturbs a synthetic value. Implementations must return a
// non-negative result for a non-negative base.
type Jitter interface {
	Apply(base int64) int64
}

// NoJitter returns the base unchanged.
type NoJitter struct{}

func (NoJitter) Apply(base int64) int64 { return base }

// RandJitter moves a value by up to ±10% using a seeded generator.
// It is not safe for concurrent use; build one per request.
type RandJitter struct {
	rng *rand.Rand
}

// NewRand returns a PCG generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandJitter returns a RandJitter seeded with seed.
func NewRandJitter(seed uint64) *RandJitter {
	return &RandJitter{rng: NewRand(seed)}
}

func (j *RandJitter) Apply(base int64) int64 {
	if base <= 0 {
		return 0
	}
	span := base / 10
	if span == 0 {
		return base
	}
	return base + j.rng.Int64N(2*span+1) - span
}
