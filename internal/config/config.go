// Package config loads runtime configuration through viper: built-in
// defaults, then .spotlight.toml (cwd or home), then SPOTLIGHT_* env vars,
// then CLI flags bound by the command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abelbrown/spotlight/internal/motion"
	"github.com/abelbrown/spotlight/internal/transition"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// TimingsConfig holds the spotlight transition durations.
type TimingsConfig struct {
	Morph           time.Duration `mapstructure:"morph"`
	RevealDelay     time.Duration `mapstructure:"reveal_delay"`
	Reveal          time.Duration `mapstructure:"reveal"`
	DirectReveal    time.Duration `mapstructure:"direct_reveal"`
	FadeOut         time.Duration `mapstructure:"fade_out"`
	ContentCollapse time.Duration `mapstructure:"content_collapse"`
	CollapseStagger time.Duration `mapstructure:"collapse_stagger"`
	Elevation       float64       `mapstructure:"elevation"`
}

// SpringConfig holds the elevation spring parameters.
type SpringConfig struct {
	Frequency float64 `mapstructure:"frequency"`
	Damping   float64 `mapstructure:"damping"`
}

// Config holds all runtime configuration.
type Config struct {
	DataDir             string        `mapstructure:"data_dir"`
	FPS                 int           `mapstructure:"fps"`
	UserID              string        `mapstructure:"user_id"`
	LatencyScale        float64       `mapstructure:"latency_scale"`
	MutationRate        float64       `mapstructure:"mutation_rate"` // per second; 0 means unlimited
	MutationBurst       int           `mapstructure:"mutation_burst"`
	RefreshInterval     time.Duration `mapstructure:"refresh_interval"`
	PrefetchConcurrency int           `mapstructure:"prefetch_concurrency"`
	Debug               bool          `mapstructure:"debug"`
	Timings             TimingsConfig `mapstructure:"timings"`
	Spring              SpringConfig  `mapstructure:"spring"`
}

// DefaultDataDir is ~/.spotlight, or .spotlight if home is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".spotlight"
	}
	return filepath.Join(home, ".spotlight")
}

// Init points viper at a config file (or the default search path) and the
// environment. It's fine if no config file is found.
func Init(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".spotlight")
		viper.SetConfigType("toml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}
	bindEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		if cfgFile == "" && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func bindEnv() {
	viper.SetEnvPrefix("SPOTLIGHT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	bindEnv()
	d := transition.DefaultTimings
	viper.SetDefault("data_dir", DefaultDataDir())
	viper.SetDefault("fps", motion.DefaultFPS)
	viper.SetDefault("user_id", "user-001")
	viper.SetDefault("latency_scale", 1.0)
	viper.SetDefault("mutation_rate", 4.0)
	viper.SetDefault("mutation_burst", 2)
	viper.SetDefault("refresh_interval", 30*time.Second)
	viper.SetDefault("prefetch_concurrency", 3)
	viper.SetDefault("debug", false)
	viper.SetDefault("timings.morph", d.MorphDuration)
	viper.SetDefault("timings.reveal_delay", d.RevealDelay)
	viper.SetDefault("timings.reveal", d.RevealDuration)
	viper.SetDefault("timings.direct_reveal", d.DirectRevealDuration)
	viper.SetDefault("timings.fade_out", d.FadeOutDuration)
	viper.SetDefault("timings.content_collapse", d.ContentCollapse)
	viper.SetDefault("timings.collapse_stagger", d.CollapseStagger)
	viper.SetDefault("timings.elevation", d.RestingElevation)
	viper.SetDefault("spring.frequency", motion.DefaultSpring.Frequency)
	viper.SetDefault("spring.damping", motion.DefaultSpring.Damping)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges that would break the UI loop or the transition.
func (c Config) Validate() error {
	switch {
	case c.FPS < 1 || c.FPS > 240:
		return fmt.Errorf("%w: fps %d out of range [1, 240]", ErrInvalid, c.FPS)
	case c.LatencyScale < 0:
		return fmt.Errorf("%w: latency_scale is negative", ErrInvalid)
	case c.MutationRate < 0:
		return fmt.Errorf("%w: mutation_rate is negative", ErrInvalid)
	case c.MutationBurst < 1:
		return fmt.Errorf("%w: mutation_burst must be at least 1", ErrInvalid)
	case c.RefreshInterval < 0:
		return fmt.Errorf("%w: refresh_interval is negative", ErrInvalid)
	case c.PrefetchConcurrency < 1:
		return fmt.Errorf("%w: prefetch_concurrency must be at least 1", ErrInvalid)
	case c.Spring.Frequency <= 0 || c.Spring.Damping <= 0:
		return fmt.Errorf("%w: spring frequency and damping must be positive", ErrInvalid)
	}
	if err := c.TransitionTimings().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// TransitionTimings converts the timings section.
func (c Config) TransitionTimings() transition.Timings {
	t := c.Timings
	return transition.Timings{
		MorphDuration:        t.Morph,
		RevealDelay:          t.RevealDelay,
		RevealDuration:       t.Reveal,
		DirectRevealDuration: t.DirectReveal,
		FadeOutDuration:      t.FadeOut,
		ContentCollapse:      t.ContentCollapse,
		CollapseStagger:      t.CollapseStagger,
		RestingElevation:     t.Elevation,
	}
}

// SpringConfig converts the spring section.
func (c Config) SpringConfig() motion.SpringConfig {
	return motion.SpringConfig{Frequency: c.Spring.Frequency, Damping: c.Spring.Damping}
}

// LogDir is where log files go.
func (c Config) LogDir() string { return filepath.Join(c.DataDir, "logs") }

// EventsPath is the JSONL event log.
func (c Config) EventsPath() string { return filepath.Join(c.DataDir, "spotlight.events.jsonl") }
