package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/flapcast/flapcast/internal/config"
	"github.com/flapcast/flapcast/internal/policy"
	"github.com/flapcast/flapcast/internal/sampler"
	"github.com/flapcast/flapcast/internal/server"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", -1, "The server port (-1 to use config default)")
	host := flag.String("host", "", "The server host (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	remoteURL := flag.String("remote-url", "", "Remote prediction backend URL (empty to use config default)")
	flag.Parse()

	// Initialize configuration
	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}

	cfg := config.Get()

	// Use config defaults if not overridden by flags
	if *port == -1 {
		*port = cfg.Server.Port
	}
	if *host == "" {
		*host = cfg.Server.Host
	}
	if *logLevel == "" {
		*logLevel = cfg.Server.LogLevel
	}
	if *remoteURL == "" {
		*remoteURL = cfg.Remote.URL
	}

	// Setup logging
	setupLogging(*logLevel, cfg.Server.LogFormat)

	log.Info().
		Int("port", *port).
		Str("host", *host).
		Float64("temperature", cfg.Sampler.Temperature).
		Int("horizon", cfg.Sampler.Horizon).
		Int("num_trajectories", cfg.Sampler.NumTrajectories).
		Msg("Starting prediction server")

	provider, err := buildProvider(cfg, *remoteURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build prediction provider")
	}

	srv := server.New(provider, cfg.Server.AllowedOrigin, log.Logger)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", *host, *port),
		Handler: srv.Handler(),
	}

	// Hot reload rebuilds the provider from the freshly validated config;
	// the listener itself (port, host) still needs a restart.
	config.WatchConfig(func() {
		p, err := buildProvider(config.Get(), *remoteURL)
		if err != nil {
			log.Error().Err(err).Msg("Config reloaded but provider rebuild failed")
			return
		}
		srv.SetProvider(p)
		log.Info().Str("file", config.ConfigFilePath()).Msg("Config reloaded, prediction provider rebuilt")
	})

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		// Give in-flight predictions time to complete
		shutdownCtx, shutdownCancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.Server.GracefulShutdownDelay)*time.Second,
		)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Forced shutdown after grace period")
		}
		cancel()
	}()

	log.Info().Str("address", httpServer.Addr).Msg("Prediction server listening")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Failed to serve")
	}

	// Wait for shutdown
	<-ctx.Done()
	log.Info().Msg("Server shutdown complete")
}

// buildProvider assembles the local Boltzmann provider, wrapped with the
// remote backend and fallback when a remote URL is configured.
func buildProvider(cfg *config.Config, remoteURL string) (policy.Provider, error) {
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
	local := policy.NewLocal(roll, auto, ph, cfg.Sampler.NumTrajectories, nil)

	if remoteURL == "" {
		return local, nil
	}

	remote := policy.NewRemote(remoteURL, log.Logger)
	timeout := time.Duration(cfg.Remote.TimeoutMS) * time.Millisecond
	log.Info().Str("url", remoteURL).Dur("timeout", timeout).Msg("Remote backend enabled")
	return policy.NewFallback(remote, local, timeout, log.Logger), nil
}

func setupLogging(level, format string) {
	// Parse log level
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

	if format == "json" || os.Getenv("APP_ENV") == "production" {
		// JSON output for production
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		// Pretty console output for development
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
}
