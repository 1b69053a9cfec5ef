package sampler

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
)

var (
	// ErrInvalidHorizon is returned for a non-positive rollout horizon
	ErrInvalidHorizon = errors.New("horizon must be positive")
	// ErrInvalidCloudSize is returned for a non-positive trajectory count
	ErrInvalidCloudSize = errors.New("trajectory count must be positive")
)

// Rollout chains independent per-step Boltzmann draws into simulated paths.
// Each step samples conditioned only on the state it just produced, so a
// trajectory is a first-order Markov approximation, not a joint chain over
// the whole horizon.
type Rollout struct {
	gen     *Generator
	smp     *Sampler
	physics Physics
	horizon int
}

// NewRollout builds a rollout engine over the given generator and sampler
func NewRollout(gen *Generator, smp *Sampler, ph Physics, horizon int) (*Rollout, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, horizon)
	}
	return &Rollout{gen: gen, smp: smp, physics: ph, horizon: horizon}, nil
}

// Horizon returns the number of steps each rollout simulates
func (r *Rollout) Horizon() int {
	return r.horizon
}

// Run simulates one path of exactly horizon states starting from initial.
// Pipes scroll toward the bird at the configured speed, one step per state.
func (r *Rollout) Run(initial BirdState, pipes []Pipe, rng *rand.Rand) (Trajectory, error) {
	t := Trajectory{
		States:   make([]BirdState, 0, r.horizon),
		Probs:    make([]float64, 0, r.horizon),
		Energies: make([]float64, 0, r.horizon),
	}
	state := initial
	step := make([]Pipe, len(pipes))
	copy(step, pipes)

	for i := 0; i < r.horizon; i++ {
		for j := range step {
			step[j].X -= r.physics.PipeSpeed
		}
		cands := r.gen.Candidates(state, rng)
		idx, energies, probs, err := r.smp.Sample(cands, step, rng)
		if err != nil {
			return Trajectory{}, fmt.Errorf("rollout step %d: %w", i, err)
		}
		state = cands[idx].State
		t.States = append(t.States, state)
		t.Probs = append(t.Probs, probs[idx])
		t.Energies = append(t.Energies, energies[idx])
	}
	return t, nil
}

// Cloud runs n independent rollouts from the same initial state, one
// goroutine each. Rollouts share nothing mutable: every goroutine gets a
// child RNG seeded from rng and owns its own state sequence, so the work is
// embarrassingly parallel and fits inside a frame budget.
func (r *Rollout) Cloud(initial BirdState, pipes []Pipe, n int, rng *rand.Rand) ([]Trajectory, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCloudSize, n)
	}

	trajectories := make([]Trajectory, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		childRNG := rand.New(rand.NewSource(rng.Int63()))
		wg.Add(1)
		go func(i int, rng *rand.Rand) {
			defer wg.Done()
			trajectories[i], errs[i] = r.Run(initial, pipes, rng)
		}(i, childRNG)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return trajectories, nil
}
