// Package config holds the TOML configuration shared by the scenic tools.
package config

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Scene   SceneConfig   `toml:"scene"`
	Stress  StressConfig  `toml:"stress"`
	View    ViewConfig    `toml:"view"`
	Logging LoggingConfig `toml:"logging"`
	Profile ProfileConfig `toml:"profile"`
}

type SceneConfig struct {
	FixedStep     time.Duration `toml:"fixed_step"`
	MaxFixedSteps int           `toml:"max_fixed_steps"`
	FrameInterval time.Duration `toml:"frame_interval"`
	Gravity       [3]float32    `toml:"gravity"`
	HistoryLimit  int           `toml:"history_limit"`
}

type StressConfig struct {
	Duration time.Duration `toml:"duration"`
	Depth    int           `toml:"depth"`   // levels below each top-level object
	Breadth  int           `toml:"breadth"` // children per node
	Roots    int           `toml:"roots"`   // top-level objects
	Workers  int           `toml:"workers"` // goroutines producing commands
	Churn    float64       `toml:"churn"`   // fraction of entities reparented or respawned per frame
	Seed     uint64        `toml:"seed"`
	GCPauses bool          `toml:"gc_pauses"`
}

type ViewConfig struct {
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	Title  string  `toml:"title"`
	Zoom   float32 `toml:"zoom"` // screen pixels per world unit
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

var profileModes = []string{"", "cpu", "mem", "allocs", "block", "mutex", "trace"}

type ProfileConfig struct {
	Mode string `toml:"mode"` // empty disables profiling
	Path string `toml:"path"`
}

// Load reads path over the defaults. Keys the configuration does not know
// are rejected so typos do not silently fall back to a default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parse config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, or returns the defaults when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) Validate() error {
	switch {
	case c.Scene.FixedStep <= 0:
		return fmt.Errorf("scene.fixed_step must be positive, got %s", c.Scene.FixedStep)
	case c.Scene.MaxFixedSteps < 1:
		return fmt.Errorf("scene.max_fixed_steps must be at least 1, got %d", c.Scene.MaxFixedSteps)
	case c.Scene.FrameInterval <= 0:
		return fmt.Errorf("scene.frame_interval must be positive, got %s", c.Scene.FrameInterval)
	case c.Scene.HistoryLimit < 0:
		return fmt.Errorf("scene.history_limit must not be negative, got %d", c.Scene.HistoryLimit)
	case c.View.Width <= 0 || c.View.Height <= 0:
		return fmt.Errorf("view size must be positive, got %dx%d", c.View.Width, c.View.Height)
	case c.View.Zoom <= 0:
		return fmt.Errorf("view.zoom must be positive, got %g", c.View.Zoom)
	case c.Stress.Depth < 0 || c.Stress.Breadth < 0 || c.Stress.Roots < 0:
		return fmt.Errorf("stress tree shape must not be negative")
	case c.Stress.Workers < 1:
		return fmt.Errorf("stress.workers must be at least 1, got %d", c.Stress.Workers)
	case c.Stress.Churn < 0 || c.Stress.Churn > 1:
		return fmt.Errorf("stress.churn must be within [0, 1], got %g", c.Stress.Churn)
	case c.Logging.Format != "json" && c.Logging.Format != "console":
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	case !slices.Contains(profileModes, c.Profile.Mode):
		return fmt.Errorf("profile.mode %q is not one of %s", c.Profile.Mode, strings.Join(profileModes[1:], ", "))
	}
	return nil
}

// Write encodes c as TOML, for `config` subcommands that dump the effective
// configuration.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func Default() *Config {
	return &Config{
		Scene: SceneConfig{
			FixedStep:     20 * time.Millisecond,
			MaxFixedSteps: 8,
			FrameInterval: 16 * time.Millisecond,
			Gravity:       [3]float32{0, -9.81, 0},
			HistoryLimit:  256,
		},
		Stress: StressConfig{
			Duration: 10 * time.Second,
			Depth:    6,
			Breadth:  4,
			Roots:    8,
			Workers:  4,
			Churn:    0.01,
			Seed:     1,
		},
		View: ViewConfig{
			Width:  1280,
			Height: 720,
			Title:  "scenic",
			Zoom:   24,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Profile: ProfileConfig{
			Path: ".",
		},
	}
}
