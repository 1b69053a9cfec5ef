package policy

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/flapcast/flapcast/internal/sampler"
)

// Prediction is one frame's worth of output: the trajectory cloud for the
// renderer, the height heatmap, and the action autoplay should take.
type Prediction struct {
	Trajectories []sampler.Trajectory
	Heatmap      []float64
	Action       sampler.Action
	// Source names the provider that produced this prediction
	Source string
}

// Provider produces a prediction for the current game state. The remote
// backend and the local approximation implement the same contract, so the
// game loop never cares which one answered.
type Provider interface {
	Predict(ctx context.Context, bird sampler.BirdState, pipes []sampler.Pipe) (*Prediction, error)
}

// Local runs the full approximation in-process: a trajectory cloud, its
// heatmap and an autoplay decision. Safe for one caller at a time per
// instance; the frame loop is single-threaded so that is the natural usage.
type Local struct {
	roll     *sampler.Rollout
	auto     *Autoplay
	physics  sampler.Physics
	cloudLen int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocal builds the local provider. cloudLen is the number of trajectories
// per frame (documented default 30).
func NewLocal(roll *sampler.Rollout, auto *Autoplay, ph sampler.Physics, cloudLen int, rng *rand.Rand) *Local {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Local{roll: roll, auto: auto, physics: ph, cloudLen: cloudLen, rng: rng}
}

// Predict implements Provider
func (l *Local) Predict(_ context.Context, bird sampler.BirdState, pipes []sampler.Pipe) (*Prediction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	trajectories, err := l.roll.Cloud(bird, pipes, l.cloudLen, l.rng)
	if err != nil {
		return nil, err
	}
	return &Prediction{
		Trajectories: trajectories,
		Heatmap:      sampler.Heatmap(bird, trajectories, l.physics),
		Action:       l.auto.Decide(bird, pipes, l.rng),
		Source:       "local",
	}, nil
}
