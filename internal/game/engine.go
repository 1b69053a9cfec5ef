// Package game implements the headless Flappy Bird engine the sampler plays
// against: bird kinematics, scrolling pipes, collision detection and score
// bookkeeping. It is the game-state provider for prediction; rendering and
// input devices live outside this repository.
package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/flapcast/flapcast/internal/common"
	"github.com/flapcast/flapcast/internal/game/events"
	"github.com/flapcast/flapcast/internal/sampler"
)

// PipeOptions holds obstacle spawning settings
type PipeOptions struct {
	Gap           float64
	IntervalTicks int
	SpawnDistance float64
	EdgeMargin    float64
}

// Options holds everything the engine needs besides its RNG
type Options struct {
	Physics sampler.Physics
	Pipes   PipeOptions
}

// DefaultOptions returns the canonical game tuning
func DefaultOptions() Options {
	return Options{
		Physics: sampler.DefaultPhysics(),
		Pipes: PipeOptions{
			Gap:           150,
			IntervalTicks: 90,
			SpawnDistance: 400,
			EdgeMargin:    80,
		},
	}
}

// despawnSlack is how far past the bird a pipe may drift before it is dropped
const despawnSlack = 100.0

// pipe is one live obstacle. x follows the sampler convention: horizontal
// distance from the bird's center to the pipe's leading edge.
type pipe struct {
	x         float64
	gapTop    float64
	gapBottom float64
	scored    bool
}

// Snapshot is the read-only per-tick view the prediction layer consumes
type Snapshot struct {
	Bird     sampler.BirdState
	Pipes    []sampler.Pipe
	Tick     int
	Score    int
	GameOver bool
}

// Engine advances one Flappy Bird run tick by tick
type Engine struct {
	opts     Options
	bird     sampler.BirdState
	pipes    []pipe
	rng      *rand.Rand
	bus      *events.EventBus
	runID    string
	tick     int
	score    int
	gameOver bool
	logger   zerolog.Logger
}

// NewEngine creates a run with the bird at mid-screen and announces it on
// the bus. Seed 0 falls back to a time seed; a nil bus disables event
// publication.
func NewEngine(opts Options, seed int64, bus *events.EventBus) *Engine {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	runID := uuid.NewString()
	e := &Engine{
		opts:   opts,
		bird:   sampler.BirdState{Y: opts.Physics.ScreenHeight / 2},
		rng:    rand.New(rand.NewSource(seed)),
		bus:    bus,
		runID:  runID,
		logger: log.With().Str("component", "game_engine").Str("run_id", runID).Logger(),
	}
	e.publish(events.NewRunStartedEvent(runID, seed))
	return e
}

// RunID returns the unique identifier of this run
func (e *Engine) RunID() string { return e.runID }

// Tick returns the number of steps taken so far
func (e *Engine) Tick() int { return e.tick }

// Score returns the number of pipes cleared
func (e *Engine) Score() int { return e.score }

// IsGameOver reports whether the bird has collided
func (e *Engine) IsGameOver() bool { return e.gameOver }

// Step advances the run by one tick. flap applies the upward impulse before
// gravity, exactly like a click or a spacebar press.
func (e *Engine) Step(flap bool) error {
	if e.gameOver {
		return ErrGameOver
	}
	e.tick++
	ph := e.opts.Physics

	if flap {
		e.bird.Velocity = ph.FlapVelocity
		e.publish(events.NewFlapEvent(e.runID, e.tick, e.bird.Y))
	}
	e.bird.Velocity = common.Min(e.bird.Velocity+ph.Gravity, ph.TerminalVelocity)
	e.bird.Y += e.bird.Velocity
	e.bird.Step = e.tick

	// The ceiling stops the bird; only the floor kills.
	if e.bird.Y < ph.BirdRadius {
		e.bird.Y = ph.BirdRadius
		e.bird.Velocity = 0
	}

	e.advancePipes()
	e.spawnPipe()

	if e.bird.Y+ph.BirdRadius >= ph.ScreenHeight {
		e.end(events.CauseFloor)
		return nil
	}
	for i := range e.pipes {
		if e.collides(e.pipes[i]) {
			e.end(events.CausePipe)
			return nil
		}
	}
	return nil
}

// Snapshot returns a copy of the current state for prediction or rendering
func (e *Engine) Snapshot() Snapshot {
	pipes := make([]sampler.Pipe, len(e.pipes))
	for i, p := range e.pipes {
		pipes[i] = sampler.Pipe{X: p.x, GapTop: p.gapTop, GapBottom: p.gapBottom}
	}
	return Snapshot{
		Bird:     e.bird,
		Pipes:    pipes,
		Tick:     e.tick,
		Score:    e.score,
		GameOver: e.gameOver,
	}
}

// advancePipes scrolls obstacles toward the bird, scores the ones that pass
// and drops the ones fully off screen
func (e *Engine) advancePipes() {
	ph := e.opts.Physics
	kept := e.pipes[:0]
	for _, p := range e.pipes {
		p.x -= ph.PipeSpeed
		if !p.scored && p.x+ph.PipeWidth < -ph.BirdRadius {
			p.scored = true
			e.score++
			e.publish(events.NewPipeClearedEvent(e.runID, e.tick, e.score))
		}
		if p.x+ph.PipeWidth > -despawnSlack {
			kept = append(kept, p)
		}
	}
	e.pipes = kept
}

// spawnPipe adds a new obstacle on the configured cadence with a uniformly
// placed gap center kept clear of the screen edges
func (e *Engine) spawnPipe() {
	po := e.opts.Pipes
	if po.IntervalTicks <= 0 || e.tick%po.IntervalTicks != 0 {
		return
	}
	lo := po.EdgeMargin + po.Gap/2
	hi := e.opts.Physics.ScreenHeight - po.EdgeMargin - po.Gap/2
	center := lo
	if hi > lo {
		center = lo + e.rng.Float64()*(hi-lo)
	}
	e.pipes = append(e.pipes, pipe{
		x:         po.SpawnDistance,
		gapTop:    center - po.Gap/2,
		gapBottom: center + po.Gap/2,
	})
}

// collides reports whether the bird overlaps the pipe's body outside its gap
func (e *Engine) collides(p pipe) bool {
	ph := e.opts.Physics
	if p.x > ph.BirdRadius || p.x+ph.PipeWidth < -ph.BirdRadius {
		return false
	}
	return e.bird.Y-ph.BirdRadius < p.gapTop || e.bird.Y+ph.BirdRadius > p.gapBottom
}

func (e *Engine) end(cause events.CollisionCause) {
	e.gameOver = true
	e.publish(events.NewCollisionEvent(e.runID, e.tick, e.bird.Y, cause))
	e.publish(events.NewRunEndedEvent(e.runID, e.tick, e.score))
	e.logger.Info().
		Int("tick", e.tick).
		Int("score", e.score).
		Str("cause", string(cause)).
		Msg("Run ended")
}

func (e *Engine) publish(ev events.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}
