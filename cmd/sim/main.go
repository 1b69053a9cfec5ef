package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/flapcast/flapcast/internal/config"
	"github.com/flapcast/flapcast/internal/experience"
	"github.com/flapcast/flapcast/internal/game"
	"github.com/flapcast/flapcast/internal/game/events"
	"github.com/flapcast/flapcast/internal/game/events/subscribers"
	"github.com/flapcast/flapcast/internal/policy"
	"github.com/flapcast/flapcast/internal/sampler"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	seed := flag.Int64("seed", 0, "RNG seed (0 for time-based)")
	ticks := flag.Int("ticks", 3000, "Maximum ticks to simulate")
	record := flag.Bool("record", false, "Record the episode to disk")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	// Initialize configuration
	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()

	setupLogging(*logLevel)

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	log.Info().
		Int64("seed", *seed).
		Int("max_ticks", *ticks).
		Float64("temperature", cfg.Sampler.Temperature).
		Int("autoplay_rollouts", cfg.Autoplay.Rollouts).
		Msg("Starting autoplay simulation")

	provider, err := buildProvider(cfg, rng)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build prediction provider")
	}

	// Event bus with the logging subscriber; collisions and scores show up
	// in the run log without the loop knowing about them.
	bus := events.NewEventBus()
	bus.Subscribe(subscribers.NewLoggerSubscriber("sim-logger", log.Logger, zerolog.DebugLevel))

	engine := game.NewEngine(engineOptions(cfg), rng.Int63(), bus)

	var recorder *experience.Recorder
	if *record || cfg.Recorder.Enabled {
		recorder = experience.NewRecorder(cfg.Recorder.Dir, log.Logger)
		recorder.Begin(engine.RunID())
	}

	ctx := context.Background()
	for engine.Tick() < *ticks && !engine.IsGameOver() {
		snap := engine.Snapshot()

		prediction, err := provider.Predict(ctx, snap.Bird, snap.Pipes)
		if err != nil {
			log.Fatal().Err(err).Int("tick", snap.Tick).Msg("Prediction failed")
		}

		flap := prediction.Action == sampler.ActionFlap
		if recorder != nil {
			recorder.Collect(experience.Record{
				Tick:     snap.Tick,
				Y:        snap.Bird.Y,
				Velocity: snap.Bird.Velocity,
				Action:   actionName(prediction.Action),
				Score:    snap.Score,
			})
		}

		if err := engine.Step(flap); err != nil {
			break
		}
	}

	if recorder != nil {
		records := recorder.Len()
		path, err := recorder.Flush()
		if err != nil {
			log.Error().Err(err).Msg("Failed to flush episode")
		} else if path != "" {
			log.Info().Str("path", path).Int("records", records).Msg("Episode recorded")
		}
	}

	log.Info().
		Str("run_id", engine.RunID()).
		Int("ticks", engine.Tick()).
		Int("score", engine.Score()).
		Bool("game_over", engine.IsGameOver()).
		Msg("Simulation finished")
}

// buildProvider mirrors the prediction server's assembly: local Boltzmann
// rollouts, optionally racing a remote backend.
func buildProvider(cfg *config.Config, rng *rand.Rand) (policy.Provider, error) {
	ph := cfg.Physics()
	gen := sampler.NewGenerator(ph, cfg.Sampler.PerturbationMagnitude, cfg.Sampler.PerturbedCandidates)

	smp, err := sampler.NewSampler(cfg.Weights(), ph)
	if err != nil {
		return nil, err
	}
	roll, err := sampler.NewRollout(gen, smp, ph, cfg.Sampler.Horizon)
	if err != nil {
		return nil, err
	}

	auto := policy.NewAutoplay(gen, roll, smp, ph, cfg.Autoplay.Rollouts)
	local := policy.NewLocal(roll, auto, ph, cfg.Sampler.NumTrajectories, rng)

	if cfg.Remote.URL == "" {
		return local, nil
	}
	remote := policy.NewRemote(cfg.Remote.URL, log.Logger)
	timeout := time.Duration(cfg.Remote.TimeoutMS) * time.Millisecond
	return policy.NewFallback(remote, local, timeout, log.Logger), nil
}

func engineOptions(cfg *config.Config) game.Options {
	return game.Options{
		Physics: cfg.Physics(),
		Pipes: game.PipeOptions{
			Gap:           cfg.Game.Pipes.Gap,
			IntervalTicks: cfg.Game.Pipes.IntervalTicks,
			SpawnDistance: cfg.Game.Pipes.SpawnDistance,
			EdgeMargin:    cfg.Game.Pipes.EdgeMargin,
		},
	}
}

func actionName(a sampler.Action) string {
	if a == sampler.ActionFlap {
		return "flap"
	}
	return "fall"
}

func setupLogging(level string) {
	var logLevel zerolog.Level
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	})
}
