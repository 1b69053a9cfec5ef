package sampler

import (
	"math/rand"

	"github.com/flapcast/flapcast/internal/common"
)

// Generator produces the candidate set considered at each sampling step:
// a flap, a plain fall, and numPerturbed noisy falls that keep the cloud
// from collapsing onto the two deterministic paths.
type Generator struct {
	physics      Physics
	perturbMag   float64
	numPerturbed int
}

// NewGenerator creates a candidate generator. perturbMag is the maximum
// velocity offset applied to perturbed candidates; numPerturbed of at most
// zero falls back to one.
func NewGenerator(ph Physics, perturbMag float64, numPerturbed int) *Generator {
	if numPerturbed <= 0 {
		numPerturbed = 1
	}
	return &Generator{
		physics:      ph,
		perturbMag:   perturbMag,
		numPerturbed: numPerturbed,
	}
}

// Candidates advances s by one step under each available action. Randomness
// is used only for the perturbed variants; flap and fall are deterministic.
func (g *Generator) Candidates(s BirdState, rng *rand.Rand) []Candidate {
	out := make([]Candidate, 0, 2+g.numPerturbed)
	out = append(out,
		Candidate{Action: ActionFlap, State: g.Apply(s, ActionFlap, rng)},
		Candidate{Action: ActionFall, State: g.Apply(s, ActionFall, rng)},
	)
	for i := 0; i < g.numPerturbed; i++ {
		out = append(out, Candidate{Action: ActionPerturb, State: g.Apply(s, ActionPerturb, rng)})
	}
	return out
}

// Apply integrates one discrete time step under the given action. A flap
// resets velocity to the fixed impulse before gravity acts; a perturb adds
// a uniform velocity offset in [-perturbMag, perturbMag]. Position is left
// unclamped during prediction.
func (g *Generator) Apply(s BirdState, a Action, rng *rand.Rand) BirdState {
	v := s.Velocity
	switch a {
	case ActionFlap:
		v = g.physics.FlapVelocity
	case ActionPerturb:
		v += (rng.Float64()*2 - 1) * g.perturbMag
	}
	v = common.Min(v+g.physics.Gravity, g.physics.TerminalVelocity)
	return BirdState{
		Y:        s.Y + v,
		Velocity: v,
		Step:     s.Step + 1,
	}
}
