package config

import "github.com/flapcast/flapcast/internal/sampler"

// Weights builds the energy weights from the sampler section
func (c *Config) Weights() sampler.Weights {
	return sampler.Weights{
		GravityBias:          c.Sampler.GravityBias,
		BoundaryPenaltyScale: c.Sampler.BoundaryPenaltyScale,
		CollisionPenalty:     c.Sampler.CollisionPenalty,
		GapReward:            c.Sampler.GapReward,
		Temperature:          c.Sampler.Temperature,
	}
}

// Physics builds the kinematic constants shared by prediction and the game
func (c *Config) Physics() sampler.Physics {
	return sampler.Physics{
		Gravity:          c.Game.Gravity,
		FlapVelocity:     c.Game.FlapVelocity,
		TerminalVelocity: c.Game.TerminalVelocity,
		PipeSpeed:        c.Game.Pipes.Speed,
		PipeWidth:        c.Game.Pipes.Width,
		BirdRadius:       c.Game.BirdRadius,
		ScreenHeight:     c.Game.ScreenHeight,
	}
}
