package sampler

// Action represents one primitive move available to the bird each tick
type Action int

const (
	// ActionFall lets gravity act for one step
	ActionFall Action = iota
	// ActionFlap applies the fixed upward impulse
	ActionFlap
	// ActionPerturb is a fall with a small random velocity offset, used only
	// inside sampling to widen the candidate set
	ActionPerturb
)

// String returns a human-readable name for the action
func (a Action) String() string {
	switch a {
	case ActionFall:
		return "fall"
	case ActionFlap:
		return "flap"
	case ActionPerturb:
		return "perturb"
	default:
		return "unknown"
	}
}

// BirdState is one hypothetical bird configuration. Velocity is positive
// downward, matching screen coordinates. Position is not clamped during
// prediction; the energy function penalizes leaving the screen instead.
type BirdState struct {
	Y        float64
	Velocity float64
	Step     int
}

// Pipe is a read-only snapshot of one obstacle. X is the horizontal distance
// from the bird to the pipe's leading edge, so a pipe whose body spans the
// bird has X in (-PipeWidth, 0].
type Pipe struct {
	X         float64
	GapTop    float64
	GapBottom float64
}

// GapCenter returns the vertical midpoint of the pipe's gap
func (p Pipe) GapCenter() float64 {
	return (p.GapTop + p.GapBottom) / 2
}

// Physics holds the kinematic constants shared by prediction and the real
// game. Values match the browser game's tuning.
type Physics struct {
	Gravity          float64
	FlapVelocity     float64
	TerminalVelocity float64
	PipeSpeed        float64
	PipeWidth        float64
	BirdRadius       float64
	ScreenHeight     float64
}

// DefaultPhysics returns the canonical game tuning
func DefaultPhysics() Physics {
	return Physics{
		Gravity:          0.25,
		FlapVelocity:     -6.5,
		TerminalVelocity: 8,
		PipeSpeed:        3,
		PipeWidth:        60,
		BirdRadius:       12,
		ScreenHeight:     600,
	}
}

// Candidate pairs an action with the state it produces one step later
type Candidate struct {
	Action Action
	State  BirdState
}

// Trajectory is one simulated path. States holds exactly horizon entries;
// Probs and Energies record, per step, the Boltzmann probability and energy
// of the candidate that was drawn. Probs feed heatmap intensity in the
// renderer.
type Trajectory struct {
	States   []BirdState
	Probs    []float64
	Energies []float64
}

// TotalEnergy returns the cumulative energy along the trajectory
func (t Trajectory) TotalEnergy() float64 {
	var sum float64
	for _, e := range t.Energies {
		sum += e
	}
	return sum
}

// AdvancePipes returns the pipes as they will sit dist pixels later;
// obstacles scroll toward the bird, so each X shrinks by dist.
func AdvancePipes(pipes []Pipe, dist float64) []Pipe {
	out := make([]Pipe, len(pipes))
	for i, p := range pipes {
		out[i] = Pipe{X: p.X - dist, GapTop: p.GapTop, GapBottom: p.GapBottom}
	}
	return out
}
