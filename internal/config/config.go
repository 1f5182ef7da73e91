// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/spacehole-rogue/hyperjump/internal/nebula"
	"github.com/spacehole-rogue/hyperjump/internal/scene"
)

var ErrInvalid = errors.New("invalid configuration")

// Config is the full set of HYPERJUMP_* settings.
type Config struct {
	Width      int    `env:"HYPERJUMP_WIDTH"      envDefault:"1280"`
	Height     int    `env:"HYPERJUMP_HEIGHT"     envDefault:"720"`
	Title      string `env:"HYPERJUMP_TITLE"      envDefault:"Hyperjump"`
	Fullscreen bool   `env:"HYPERJUMP_FULLSCREEN"`

	Workers       int `env:"HYPERJUMP_WORKERS"`
	NebulaDivisor int `env:"HYPERJUMP_NEBULA_DIVISOR" envDefault:"8"`
	NebulaRows    int `env:"HYPERJUMP_NEBULA_ROWS"    envDefault:"12"`
	PlanetTexture int `env:"HYPERJUMP_PLANET_TEXTURE" envDefault:"96"`
	PlanetRows    int `env:"HYPERJUMP_PLANET_ROWS"    envDefault:"24"`

	Trigger float64 `env:"HYPERJUMP_TRIGGER_SECONDS" envDefault:"12"`
	Palette string  `env:"HYPERJUMP_PALETTE"         envDefault:"hubble"`
	Seed    uint64  `env:"HYPERJUMP_SEED"`

	LogLevel string `env:"HYPERJUMP_LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"HYPERJUMP_LOG_JSON"`
}

// ParseEnv fills target from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the optional dotenv files, then the environment. With no
// files given it looks for .env in the working directory. A missing file
// is not an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("window %dx%d: %w", c.Width, c.Height, ErrInvalid)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d: %w", c.Workers, ErrInvalid)
	}
	if c.NebulaDivisor < 1 {
		return fmt.Errorf("nebula divisor %d: %w", c.NebulaDivisor, ErrInvalid)
	}
	if c.PlanetTexture < 1 {
		return fmt.Errorf("planet texture %d: %w", c.PlanetTexture, ErrInvalid)
	}
	if c.Trigger < 0 {
		return fmt.Errorf("trigger %v: %w", c.Trigger, ErrInvalid)
	}
	if _, err := c.NebulaPalette(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := c.SlogLevel(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// NebulaPalette is the starting nebula palette.
func (c Config) NebulaPalette() (nebula.Palette, error) {
	return nebula.ParsePalette(c.Palette)
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// SceneOptions maps the settings onto a scene build.
func (c Config) SceneOptions() scene.Options {
	opts := scene.DefaultOptions()
	opts.Width, opts.Height = c.Width, c.Height
	opts.Workers = c.Workers
	opts.NebulaDivisor = c.NebulaDivisor
	opts.NebulaRows = c.NebulaRows
	opts.PlanetTexture = c.PlanetTexture
	opts.PlanetRows = c.PlanetRows
	opts.Seed = c.Seed
	opts.Hyperjump.Trigger = c.Trigger
	if p, err := c.NebulaPalette(); err == nil {
		opts.Palette = p
	}
	return opts
}
