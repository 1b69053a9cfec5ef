// Package policy turns the sampling primitives into per-tick decisions: the
// local autoplay agent, the optional remote prediction backend, and the
// fallback logic that arbitrates between them.
package policy

import (
	"math/rand"

	"github.com/flapcast/flapcast/internal/sampler"
)

// Autoplay picks the real in-game action each tick. Instead of a single
// stochastic draw, which plays erratically, it rolls out a handful of
// futures from each primitive action and commits to the one with the lower
// mean cumulative energy. Stateless across ticks.
type Autoplay struct {
	gen      *sampler.Generator
	roll     *sampler.Rollout
	smp      *sampler.Sampler
	physics  sampler.Physics
	rollouts int
}

// NewAutoplay builds the policy. rollouts is the number of simulated futures
// evaluated per primitive action; it should stay well under the
// visualization cloud size because Decide runs inside every frame.
func NewAutoplay(gen *sampler.Generator, roll *sampler.Rollout, smp *sampler.Sampler, ph sampler.Physics, rollouts int) *Autoplay {
	if rollouts <= 0 {
		rollouts = 1
	}
	return &Autoplay{gen: gen, roll: roll, smp: smp, physics: ph, rollouts: rollouts}
}

// Decide returns the action to take this tick: ActionFlap or ActionFall.
// Ties go to falling, the natural state.
func (a *Autoplay) Decide(state sampler.BirdState, pipes []sampler.Pipe, rng *rand.Rand) sampler.Action {
	fall := a.expectedEnergy(state, pipes, sampler.ActionFall, rng)
	flap := a.expectedEnergy(state, pipes, sampler.ActionFlap, rng)
	if flap < fall {
		return sampler.ActionFlap
	}
	return sampler.ActionFall
}

// expectedEnergy forces the first step to the given action, then lets the
// Boltzmann rollout finish each future, and averages the cumulative energy
// across rollouts.
func (a *Autoplay) expectedEnergy(state sampler.BirdState, pipes []sampler.Pipe, first sampler.Action, rng *rand.Rand) float64 {
	forced := a.gen.Apply(state, first, rng)
	stepPipes := sampler.AdvancePipes(pipes, a.physics.PipeSpeed)
	firstEnergy := sampler.Energy(forced, stepPipes, a.smp.Weights(), a.physics)

	var total float64
	for i := 0; i < a.rollouts; i++ {
		traj, err := a.roll.Run(forced, stepPipes, rng)
		if err != nil {
			// Cannot happen with a non-empty candidate set; count only the
			// forced step so a fault degrades instead of halting the frame.
			total += firstEnergy
			continue
		}
		total += firstEnergy + traj.TotalEnergy()
	}
	return total / float64(a.rollouts)
}
