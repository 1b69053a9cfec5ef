package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Sampler  SamplerConfig  `mapstructure:"sampler"`
	Game     GameConfig     `mapstructure:"game"`
	Autoplay AutoplayConfig `mapstructure:"autoplay"`
	Server   ServerConfig   `mapstructure:"server"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Recorder RecorderConfig `mapstructure:"recorder"`
}

// SamplerConfig holds the energy weights and sampling parameters
type SamplerConfig struct {
	Temperature           float64 `mapstructure:"temperature"`
	GravityBias           float64 `mapstructure:"gravity_bias"`
	BoundaryPenaltyScale  float64 `mapstructure:"boundary_penalty_scale"`
	CollisionPenalty      float64 `mapstructure:"collision_penalty"`
	GapReward             float64 `mapstructure:"gap_reward"`
	NumTrajectories       int     `mapstructure:"num_trajectories"`
	Horizon               int     `mapstructure:"horizon"`
	PerturbationMagnitude float64 `mapstructure:"perturbation_magnitude"`
	PerturbedCandidates   int     `mapstructure:"perturbed_candidates"`
}

// GameConfig holds the physics and obstacle tuning
type GameConfig struct {
	Gravity          float64    `mapstructure:"gravity"`
	FlapVelocity     float64    `mapstructure:"flap_velocity"`
	TerminalVelocity float64    `mapstructure:"terminal_velocity"`
	ScreenHeight     float64    `mapstructure:"screen_height"`
	BirdRadius       float64    `mapstructure:"bird_radius"`
	Pipes            PipeConfig `mapstructure:"pipes"`
}

// PipeConfig holds obstacle spawning settings
type PipeConfig struct {
	Speed         float64 `mapstructure:"speed"`
	Width         float64 `mapstructure:"width"`
	Gap           float64 `mapstructure:"gap"`
	IntervalTicks int     `mapstructure:"interval_ticks"`
	SpawnDistance float64 `mapstructure:"spawn_distance"`
	EdgeMargin    float64 `mapstructure:"edge_margin"`
}

// AutoplayConfig holds the autoplay policy settings
type AutoplayConfig struct {
	Rollouts int `mapstructure:"rollouts"`
}

// ServerConfig holds the prediction server configuration
type ServerConfig struct {
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	LogLevel              string `mapstructure:"log_level"`
	LogFormat             string `mapstructure:"log_format"`
	GracefulShutdownDelay int    `mapstructure:"graceful_shutdown_delay"`
	AllowedOrigin         string `mapstructure:"allowed_origin"`
}

// RemoteConfig holds the optional remote prediction backend settings. An
// empty URL disables the remote provider entirely.
type RemoteConfig struct {
	URL       string `mapstructure:"url"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
}

// RecorderConfig holds the episode recorder settings
type RecorderConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Sampler defaults
	v.SetDefault("sampler.temperature", 1.0)
	v.SetDefault("sampler.gravity_bias", 0.5)
	v.SetDefault("sampler.boundary_penalty_scale", 40.0)
	v.SetDefault("sampler.collision_penalty", 10000.0)
	v.SetDefault("sampler.gap_reward", 5.0)
	v.SetDefault("sampler.num_trajectories", 30)
	v.SetDefault("sampler.horizon", 15)
	v.SetDefault("sampler.perturbation_magnitude", 1.0)
	v.SetDefault("sampler.perturbed_candidates", 1)

	// Game physics defaults, matching the browser game's tuning
	v.SetDefault("game.gravity", 0.25)
	v.SetDefault("game.flap_velocity", -6.5)
	v.SetDefault("game.terminal_velocity", 8.0)
	v.SetDefault("game.screen_height", 600.0)
	v.SetDefault("game.bird_radius", 12.0)
	v.SetDefault("game.pipes.speed", 3.0)
	v.SetDefault("game.pipes.width", 60.0)
	v.SetDefault("game.pipes.gap", 150.0)
	v.SetDefault("game.pipes.interval_ticks", 90)
	v.SetDefault("game.pipes.spawn_distance", 400.0)
	v.SetDefault("game.pipes.edge_margin", 80.0)

	// Autoplay defaults: fewer rollouts than the cloud, it runs every tick
	v.SetDefault("autoplay.rollouts", 8)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "console")
	v.SetDefault("server.graceful_shutdown_delay", 5)
	v.SetDefault("server.allowed_origin", "*")

	// Remote backend defaults: disabled unless a URL is configured
	v.SetDefault("remote.url", "")
	v.SetDefault("remote.timeout_ms", 12)

	// Recorder defaults
	v.SetDefault("recorder.enabled", false)
	v.SetDefault("recorder.dir", "episodes")
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/flapcast")
	}

	// Set environment variable prefix
	v.SetEnvPrefix("FLAPCAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// If we have a specific config path and it doesn't exist, that's ok - use defaults
		if configPath != "" {
			// Specific file requested but not found - that's ok, use defaults
		} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// For default locations, only ignore ConfigFileNotFoundError
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults
	}

	// Unmarshal into config struct
	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// Validate configuration
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		// Initialize with defaults if not already initialized
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file, so energy weights
// can be retuned while a session is running. An edit that fails validation
// is dropped and the last good config stays in effect; onChange only fires
// after a successful swap.
func WatchConfig(onChange func()) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		if err := reload(); err != nil {
			return
		}
		if onChange != nil {
			onChange()
		}
	})
}

// reload re-unmarshals viper's current state into a fresh struct, swapping
// the global config only when the result validates
func reload() error {
	fresh := &Config{}
	if err := v.Unmarshal(fresh); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(fresh); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	cfg = fresh
	return nil
}

// Validate validates the configuration values. Sampling parameters fail fast
// here, never mid-frame.
func Validate(c *Config) error {
	// Validate sampler parameters
	if c.Sampler.Temperature <= 0 {
		return fmt.Errorf("sampler.temperature must be positive")
	}
	if c.Sampler.Horizon <= 0 {
		return fmt.Errorf("sampler.horizon must be positive")
	}
	if c.Sampler.NumTrajectories <= 0 {
		return fmt.Errorf("sampler.num_trajectories must be positive")
	}
	if c.Sampler.PerturbationMagnitude < 0 {
		return fmt.Errorf("sampler.perturbation_magnitude must be non-negative")
	}
	if c.Sampler.PerturbedCandidates < 0 {
		return fmt.Errorf("sampler.perturbed_candidates must be non-negative")
	}
	if c.Sampler.CollisionPenalty <= 0 {
		return fmt.Errorf("sampler.collision_penalty must be positive")
	}

	// Validate game physics
	if c.Game.Gravity <= 0 {
		return fmt.Errorf("game.gravity must be positive")
	}
	if c.Game.FlapVelocity >= 0 {
		return fmt.Errorf("game.flap_velocity must be negative (upward)")
	}
	if c.Game.TerminalVelocity <= 0 {
		return fmt.Errorf("game.terminal_velocity must be positive")
	}
	if c.Game.ScreenHeight <= 0 {
		return fmt.Errorf("game.screen_height must be positive")
	}
	if c.Game.BirdRadius <= 0 {
		return fmt.Errorf("game.bird_radius must be positive")
	}
	if c.Game.Pipes.Speed <= 0 {
		return fmt.Errorf("game.pipes.speed must be positive")
	}
	if c.Game.Pipes.Width <= 0 {
		return fmt.Errorf("game.pipes.width must be positive")
	}
	if c.Game.Pipes.Gap <= 2*c.Game.BirdRadius {
		return fmt.Errorf("game.pipes.gap must leave room for the bird")
	}
	if c.Game.Pipes.IntervalTicks <= 0 {
		return fmt.Errorf("game.pipes.interval_ticks must be positive")
	}

	// Validate autoplay
	if c.Autoplay.Rollouts <= 0 {
		return fmt.Errorf("autoplay.rollouts must be positive")
	}

	// Validate server configuration
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.graceful_shutdown_delay must be non-negative")
	}

	// Validate remote backend
	if c.Remote.TimeoutMS <= 0 {
		return fmt.Errorf("remote.timeout_ms must be positive")
	}
	if c.Remote.URL != "" && !strings.HasPrefix(c.Remote.URL, "http") {
		return fmt.Errorf("remote.url must be an http(s) URL")
	}

	// Validate recorder
	if c.Recorder.Enabled && c.Recorder.Dir == "" {
		return fmt.Errorf("recorder.dir must be set when recorder is enabled")
	}

	return nil
}
