package testutil

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/flapcast/flapcast/internal/sampler"
)

// NewTestRNG creates a deterministic random number generator for tests
func NewTestRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NopLogger returns a no-op logger for tests
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// NewTestSampler builds a sampler with default weights and physics
func NewTestSampler(t *testing.T) *sampler.Sampler {
	t.Helper()
	s, err := sampler.NewSampler(sampler.DefaultWeights(), sampler.DefaultPhysics())
	if err != nil {
		t.Fatalf("building test sampler: %v", err)
	}
	return s
}

// NewTestRollout builds a rollout engine with default tuning
func NewTestRollout(t *testing.T, horizon int) *sampler.Rollout {
	t.Helper()
	ph := sampler.DefaultPhysics()
	gen := sampler.NewGenerator(ph, 1.0, 1)
	roll, err := sampler.NewRollout(gen, NewTestSampler(t), ph, horizon)
	if err != nil {
		t.Fatalf("building test rollout: %v", err)
	}
	return roll
}

// GapPipe returns a pipe with a centered gap, dist pixels ahead of the bird
func GapPipe(dist float64) sampler.Pipe {
	return sampler.Pipe{X: dist, GapTop: 250, GapBottom: 350}
}
