package sampler

import (
	"math"

	"github.com/flapcast/flapcast/internal/common"
)

// Weights tunes the energy terms and the sampling temperature. Lower energy
// means a more desirable state. Constant for the life of a session.
type Weights struct {
	GravityBias          float64
	BoundaryPenaltyScale float64
	CollisionPenalty     float64
	GapReward            float64
	Temperature          float64
}

// DefaultWeights returns the documented default tuning. CollisionPenalty is
// kept orders of magnitude above every other term so a colliding candidate
// can never score better than a clear one.
func DefaultWeights() Weights {
	return Weights{
		GravityBias:          0.5,
		BoundaryPenaltyScale: 40,
		CollisionPenalty:     10000,
		GapReward:            5,
		Temperature:          1.0,
	}
}

// boundaryMargin is the width of the danger band at the floor and ceiling.
// Inside the middle band the boundary term is exactly zero.
const boundaryMargin = 80.0

// Energy scores a hypothetical bird state against the nearby pipes.
// Deterministic and pure; all randomness lives in candidate generation and
// the sampling draw.
func Energy(s BirdState, pipes []Pipe, w Weights, ph Physics) float64 {
	e := gravityTerm(s, w) + boundaryTerm(s, w, ph)
	for _, p := range pipes {
		e += pipeTerm(s, p, w, ph)
	}
	return e
}

// gravityTerm lowers energy for downward motion: falling is the natural
// state and flapping should have to earn its keep.
func gravityTerm(s BirdState, w Weights) float64 {
	return -w.GravityBias * common.Max(0, s.Velocity)
}

// boundaryTerm grows quadratically as the bird enters the danger band near
// the floor or ceiling, and keeps growing past the screen edge. No hard
// clamp: prediction is allowed to explore doomed states, they just cost.
func boundaryTerm(s BirdState, w Weights, ph Physics) float64 {
	switch {
	case s.Y < boundaryMargin:
		d := (boundaryMargin - s.Y) / boundaryMargin
		return w.BoundaryPenaltyScale * d * d
	case s.Y > ph.ScreenHeight-boundaryMargin:
		d := (s.Y - (ph.ScreenHeight - boundaryMargin)) / boundaryMargin
		return w.BoundaryPenaltyScale * d * d
	default:
		return 0
	}
}

// pipeTerm applies the collision penalty or the gap reward for a single
// pipe. Zero when the pipe's body does not overlap the bird horizontally.
func pipeTerm(s BirdState, p Pipe, w Weights, ph Physics) float64 {
	if p.X > ph.BirdRadius || p.X+ph.PipeWidth < -ph.BirdRadius {
		return 0
	}
	if s.Y-ph.BirdRadius < p.GapTop || s.Y+ph.BirdRadius > p.GapBottom {
		return w.CollisionPenalty
	}
	// Inside the gap: reward centering. Full reward at the gap center,
	// tapering to zero at the clearance limit.
	halfGap := (p.GapBottom - p.GapTop) / 2
	clearance := halfGap - ph.BirdRadius
	if clearance <= 0 {
		return 0
	}
	offset := math.Abs(s.Y - p.GapCenter())
	return common.Lerp(-w.GapReward, 0, offset/clearance)
}
