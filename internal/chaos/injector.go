// Package chaos implements the probabilistic failure injector used to
// exercise the worker's retry and resubmission paths. It is a testing hook,
// not business logic: when the gate fires the whole batch is failed before
// any per-recipient work happens.
package chaos

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrSimulatedFailure is raised when the injector aborts a batch. It follows
// the same retry path as any other processing failure.
var ErrSimulatedFailure = errors.New("simulated batch failure")

// Option customises the injector at construction time.
type Option func(*Injector)

// WithRandomSeed swaps the RNG seed, making draws deterministic for tests.
func WithRandomSeed(seed int64) Option {
	return func(i *Injector) {
		i.rnd = rand.New(rand.NewSource(seed)) // #nosec G404 -- simulation only, not security sensitive.
	}
}

// WithSource replaces the uniform [0,1) source entirely. Tests use this to
// force the gate open or closed regardless of the configured probability.
func WithSource(src func() float64) Option {
	return func(i *Injector) {
		if src != nil {
			i.source = src
		}
	}
}

// Injector decides, once per batch, whether processing should be aborted with
// a simulated failure. A single uniform draw is compared against the
// configured probability; a probability of 0 disables injection and 1 forces
// it on every batch.
type Injector struct {
	probability float64

	mu     sync.Mutex
	rnd    *rand.Rand
	source func() float64
}

// NewInjector constructs an injector with the supplied failure probability.
// Values are clamped into [0, 1].
func NewInjector(probability float64, opts ...Option) *Injector {
	if probability < 0 {
		probability = 0
	}
	if probability > 1 {
		probability = 1
	}

	i := &Injector{
		probability: probability,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404
	}

	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}

	return i
}

// ShouldFail performs the per-batch draw. Safe for concurrent use.
func (i *Injector) ShouldFail() bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.source != nil {
		return i.source() < i.probability
	}
	return i.rnd.Float64() < i.probability
}
