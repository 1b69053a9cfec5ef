package subscribers

import (
	"github.com/rs/zerolog"

	"github.com/flapcast/flapcast/internal/game/events"
)

// LoggerSubscriber logs game events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	entry := ls.logger.WithLevel(ls.logLevel).
		Str("event_type", event.Type()).
		Str("run_id", event.RunID())

	switch e := event.(type) {
	case *events.RunStartedEvent:
		entry.Int64("seed", e.Seed).Msg("Run started")
	case *events.RunEndedEvent:
		entry.Int("tick", e.Tick).Int("score", e.Score).Msg("Run ended")
	case *events.FlapEvent:
		entry.Int("tick", e.Tick).Float64("y", e.Y).Msg("Flap")
	case *events.PipeClearedEvent:
		entry.Int("tick", e.Tick).Int("score", e.Score).Msg("Pipe cleared")
	case *events.CollisionEvent:
		entry.Int("tick", e.Tick).Float64("y", e.Y).Str("cause", string(e.Cause)).Msg("Collision")
	default:
		entry.Msg("Event")
	}
}
