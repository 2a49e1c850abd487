// Package rng wraps math/rand with the draw primitives the generators need.
// Every pipeline stage builds its own Rand from the configured seed, so a
// stage re-run with unchanged inputs reproduces its output byte for byte.
package rng

import (
	"math"
	"math/rand"
)

type Rand struct {
	src *rand.Rand
}

func New(seed int64) *Rand {
	return &Rand{src: rand.New(rand.NewSource(seed))}
}

func (r *Rand) Float64() float64 { return r.src.Float64() }

// Uniform draws from [lo, hi).
func (r *Rand) Uniform(lo, hi float64) float64 {
	return lo + r.src.Float64()*(hi-lo)
}

// IntBetween draws an integer from [lo, hi); hi is exclusive.
func (r *Rand) IntBetween(lo, hi int) int {
	return lo + r.src.Intn(hi-lo)
}

// LogNormal draws from a log-normal distribution with the given mu and sigma
// of the underlying normal.
func (r *Rand) LogNormal(mu, sigma float64) float64 {
	return math.Exp(mu + sigma*r.src.NormFloat64())
}

// Bernoulli reports true with probability p.
func (r *Rand) Bernoulli(p float64) bool {
	return r.src.Float64() < p
}

// WeightedIndex picks an index with probability proportional to weights[i].
// Weights need not sum to 1. With no positive weight the draw is uniform.
func (r *Rand) WeightedIndex(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return r.src.Intn(len(weights))
	}
	x := r.src.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		x -= w
		if x < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// Choice picks one of the options uniformly.
func (r *Rand) Choice(options []string) string {
	return options[r.src.Intn(len(options))]
}

// Shuffle permutes n elements via the given swap function.
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	r.src.Shuffle(n, swap)
}
