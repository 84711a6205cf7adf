// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads Lightwell settings from defaults, a YAML file and
// command-line flags, in that order of precedence.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/lightwell/internal/beam"
	"github.com/holomush/lightwell/internal/engine"
	"github.com/holomush/lightwell/internal/geom"
	"github.com/holomush/lightwell/internal/logging"
	"github.com/holomush/lightwell/internal/progress"
	"github.com/holomush/lightwell/internal/xdg"
)

// Config is the full application configuration.
type Config struct {
	Log      LogConfig      `koanf:"log"`
	Levels   LevelsConfig   `koanf:"levels"`
	Engine   EngineConfig   `koanf:"engine"`
	Progress ProgressConfig `koanf:"progress"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// LogConfig controls log output.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// LevelsConfig selects level packs. An empty Dir uses the built-in packs.
type LevelsConfig struct {
	Dir string `koanf:"dir"`
}

// EngineConfig tunes evaluation geometry.
type EngineConfig struct {
	RippleRadius    float64 `koanf:"ripple_radius"`
	MaxBounces      int     `koanf:"max_bounces"`
	BeamRange       float64 `koanf:"beam_range"`
	PrismHitRadius  float64 `koanf:"prism_hit_radius"`
	TargetHitRadius float64 `koanf:"target_hit_radius"`
	BlockCorridor   float64 `koanf:"block_corridor"`
	RequireFacing   bool    `koanf:"require_facing"`
	AngleTolerance  float64 `koanf:"angle_tolerance"`
}

// ProgressConfig selects where level records are stored.
type ProgressConfig struct {
	Backend     string `koanf:"backend"`
	Path        string `koanf:"path"`
	DatabaseURL string `koanf:"database_url"`
}

// MetricsConfig enables the observability server when Addr is set.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Format: "json", Level: "info"},
		Engine: EngineConfig{
			RippleRadius:    engine.DefaultRippleRadius,
			MaxBounces:      beam.DefaultMaxBounces,
			BeamRange:       beam.DefaultRange,
			PrismHitRadius:  beam.DefaultPrismRadius,
			TargetHitRadius: beam.DefaultTargetRadius,
			BlockCorridor:   beam.DefaultBlockCorridor,
			RequireFacing:   true,
			AngleTolerance:  geom.DefaultTolerance,
		},
		Progress: ProgressConfig{Backend: progress.BackendFile},
	}
}

func (c Config) flatten() map[string]any {
	return map[string]any{
		"log.format":               c.Log.Format,
		"log.level":                c.Log.Level,
		"levels.dir":               c.Levels.Dir,
		"engine.ripple_radius":     c.Engine.RippleRadius,
		"engine.max_bounces":       c.Engine.MaxBounces,
		"engine.beam_range":        c.Engine.BeamRange,
		"engine.prism_hit_radius":  c.Engine.PrismHitRadius,
		"engine.target_hit_radius": c.Engine.TargetHitRadius,
		"engine.block_corridor":    c.Engine.BlockCorridor,
		"engine.require_facing":    c.Engine.RequireFacing,
		"engine.angle_tolerance":   c.Engine.AngleTolerance,
		"progress.backend":         c.Progress.Backend,
		"progress.path":            c.Progress.Path,
		"progress.database_url":    c.Progress.DatabaseURL,
		"metrics.addr":             c.Metrics.Addr,
	}
}

// flagKeys maps command-line flag names to configuration keys. Flags not
// listed here are ignored by Load.
var flagKeys = map[string]string{
	"log-format":       "log.format",
	"log-level":        "log.level",
	"levels-dir":       "levels.dir",
	"require-facing":   "engine.require_facing",
	"progress-backend": "progress.backend",
	"progress-path":    "progress.path",
	"database-url":     "progress.database_url",
	"metrics-addr":     "metrics.addr",
}

// Load builds a Config. path names a YAML file; when empty the XDG config
// file is used if it exists. Only flags the user set override the file.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")
	for key, val := range Default().flatten() {
		if err := k.Set(key, val); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").With("key", key).Wrap(err)
		}
	}

	if path == "" {
		if p, err := xdg.ConfigFile(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				path = p
			}
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	invalid := func(key, format string, args ...any) {
		errs = append(errs, oops.Code("CONFIG_INVALID").With("key", key).Errorf(format, args...))
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		invalid("log.format", "log.format must be json or text, got %q", c.Log.Format)
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		invalid("log.level", "log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if c.Engine.RippleRadius <= 0 {
		invalid("engine.ripple_radius", "engine.ripple_radius must be positive")
	}
	if c.Engine.MaxBounces <= 0 {
		invalid("engine.max_bounces", "engine.max_bounces must be positive")
	}
	for key, v := range map[string]float64{
		"engine.beam_range":        c.Engine.BeamRange,
		"engine.prism_hit_radius":  c.Engine.PrismHitRadius,
		"engine.target_hit_radius": c.Engine.TargetHitRadius,
		"engine.block_corridor":    c.Engine.BlockCorridor,
	} {
		if v <= 0 {
			invalid(key, "%s must be positive", key)
		}
	}
	if c.Engine.AngleTolerance <= 0 || c.Engine.AngleTolerance >= 45 {
		invalid("engine.angle_tolerance", "engine.angle_tolerance must be in (0, 45), got %g", c.Engine.AngleTolerance)
	}
	switch c.Progress.Backend {
	case progress.BackendFile, progress.BackendNone:
	case progress.BackendPostgres:
		if c.Progress.DatabaseURL == "" {
			invalid("progress.database_url", "progress.database_url is required for the postgres backend")
		}
	default:
		invalid("progress.backend", "progress.backend must be file, postgres or none, got %q", c.Progress.Backend)
	}
	return oops.Code("CONFIG_INVALID").Wrap(errors.Join(errs...))
}

// EngineConfig returns the engine configuration these settings describe.
func (c Config) EngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.RippleRadius = c.Engine.RippleRadius
	cfg.Evaluator.Tolerance = c.Engine.AngleTolerance
	cfg.Evaluator.Tracer.MaxBounces = c.Engine.MaxBounces
	cfg.Evaluator.Tracer.Range = c.Engine.BeamRange
	cfg.Evaluator.Tracer.PrismRadius = c.Engine.PrismHitRadius
	cfg.Evaluator.Tracer.TargetRadius = c.Engine.TargetHitRadius
	cfg.Evaluator.Tracer.BlockCorridor = c.Engine.BlockCorridor
	cfg.Evaluator.Tracer.RequireFacing = c.Engine.RequireFacing
	return cfg
}

// LogOptions returns logging options for service and version.
func (c Config) LogOptions(service, version string) logging.Options {
	return logging.Options{Service: service, Version: version, Format: c.Log.Format, Level: c.Log.Level}
}

// ProgressOptions returns the progress store options.
func (c Config) ProgressOptions() progress.Options {
	return progress.Options{
		Backend: c.Progress.Backend,
		Path:    c.Progress.Path,
		DSN:     c.Progress.DatabaseURL,
	}
}
