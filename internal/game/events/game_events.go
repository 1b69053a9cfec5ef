package events

import "time"

// Event type constants
const (
	TypeRunStarted  = "run.started"
	TypeRunEnded    = "run.ended"
	TypeFlap        = "bird.flapped"
	TypePipeCleared = "pipe.cleared"
	TypeCollision   = "bird.collided"
)

// RunStartedEvent is published when a new game run begins
type RunStartedEvent struct {
	BaseEvent
	Seed int64
}

// NewRunStartedEvent creates a new RunStartedEvent
func NewRunStartedEvent(runID string, seed int64) *RunStartedEvent {
	return &RunStartedEvent{
		BaseEvent: BaseEvent{EventType: TypeRunStarted, Time: time.Now(), Run: runID},
		Seed:      seed,
	}
}

// RunEndedEvent is published when a run ends, with the final score
type RunEndedEvent struct {
	BaseEvent
	Tick  int
	Score int
}

// NewRunEndedEvent creates a new RunEndedEvent
func NewRunEndedEvent(runID string, tick, score int) *RunEndedEvent {
	return &RunEndedEvent{
		BaseEvent: BaseEvent{EventType: TypeRunEnded, Time: time.Now(), Run: runID},
		Tick:      tick,
		Score:     score,
	}
}

// FlapEvent is published on every flap, whether from autoplay or a player
type FlapEvent struct {
	BaseEvent
	Tick int
	Y    float64
}

// NewFlapEvent creates a new FlapEvent
func NewFlapEvent(runID string, tick int, y float64) *FlapEvent {
	return &FlapEvent{
		BaseEvent: BaseEvent{EventType: TypeFlap, Time: time.Now(), Run: runID},
		Tick:      tick,
		Y:         y,
	}
}

// PipeClearedEvent is published when the bird passes a pipe
type PipeClearedEvent struct {
	BaseEvent
	Tick  int
	Score int
}

// NewPipeClearedEvent creates a new PipeClearedEvent
func NewPipeClearedEvent(runID string, tick, score int) *PipeClearedEvent {
	return &PipeClearedEvent{
		BaseEvent: BaseEvent{EventType: TypePipeCleared, Time: time.Now(), Run: runID},
		Tick:      tick,
		Score:     score,
	}
}

// CollisionCause names what the bird hit
type CollisionCause string

const (
	CauseFloor CollisionCause = "floor"
	CausePipe  CollisionCause = "pipe"
)

// CollisionEvent is published when the bird hits a pipe or the floor
type CollisionEvent struct {
	BaseEvent
	Tick  int
	Y     float64
	Cause CollisionCause
}

// NewCollisionEvent creates a new CollisionEvent
func NewCollisionEvent(runID string, tick int, y float64, cause CollisionCause) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent: BaseEvent{EventType: TypeCollision, Time: time.Now(), Run: runID},
		Tick:      tick,
		Y:         y,
		Cause:     cause,
	}
}
