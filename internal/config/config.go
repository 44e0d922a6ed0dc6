// Package config loads the turn engine's settings from defaults, an optional
// YAML file and POLITBURO_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/talgya/politburo/internal/events"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "POLITBURO"

// Config holds all application configuration.
type Config struct {
	// Simulation settings.
	Seed             int64               `mapstructure:"seed"` // 0 draws a fresh seed
	Scenario         string              `mapstructure:"scenario"`
	Catalog          string              `mapstructure:"catalog"`
	DeficitPenalty   int                 `mapstructure:"deficit_penalty"`
	ConsequenceGrace int                 `mapstructure:"consequence_grace"`
	HistoryLimit     int                 `mapstructure:"history_limit"`
	CongressInterval int                 `mapstructure:"congress_interval"`
	Pacing           events.PacingConfig `mapstructure:"pacing"`

	// Runner settings.
	TurnInterval time.Duration `mapstructure:"turn_interval"`
	Speed        float64       `mapstructure:"speed"`
	SaveEvery    int           `mapstructure:"save_every"`

	// Storage.
	DBPath string `mapstructure:"db_path"`

	// HTTP API.
	Port        int      `mapstructure:"port"`
	AdminToken  string   `mapstructure:"admin_token"` // empty disables POST endpoints
	RateLimit   int      `mapstructure:"rate_limit"`  // requests per minute per IP
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Operational settings.
	LogLevel     string `mapstructure:"log_level"`
	OTELEndpoint string `mapstructure:"otel_endpoint"`
	OTELInsecure bool   `mapstructure:"otel_insecure"`
	ServiceName  string `mapstructure:"service_name"`
}

func setDefaults(v *viper.Viper) {
	p := events.DefaultPacing()
	v.SetDefault("seed", 0)
	v.SetDefault("scenario", "")
	v.SetDefault("catalog", "")
	v.SetDefault("deficit_penalty", 10)
	v.SetDefault("consequence_grace", 5)
	v.SetDefault("history_limit", 200)
	v.SetDefault("congress_interval", events.DefaultCongressInterval)
	v.SetDefault("pacing.ceiling", p.Ceiling)
	v.SetDefault("pacing.base_quiet", p.BaseQuiet)
	v.SetDefault("pacing.early_boost", p.EarlyBoost)
	v.SetDefault("pacing.early_turns", p.EarlyTurns)
	v.SetDefault("pacing.consecutive_step", p.ConsecutiveStep)
	v.SetDefault("pacing.tension_relief", p.TensionRelief)
	v.SetDefault("pacing.max_quiet", p.MaxQuiet)
	v.SetDefault("turn_interval", 5*time.Second)
	v.SetDefault("speed", 1.0)
	v.SetDefault("save_every", 1)
	v.SetDefault("db_path", "data/politburo.db")
	v.SetDefault("port", 8080)
	v.SetDefault("admin_token", "")
	v.SetDefault("rate_limit", 60)
	v.SetDefault("cors_origins", []string{})
	v.SetDefault("log_level", "info")
	v.SetDefault("otel_endpoint", "")
	v.SetDefault("otel_insecure", false)
	v.SetDefault("service_name", "politburo")
}

// Load reads configuration. path may be empty, in which case only defaults
// and the environment apply.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required fields are present and values are sane.
func (c Config) Validate() error {
	var errs []error
	if c.DeficitPenalty < 1 {
		errs = append(errs, fmt.Errorf("config: deficit_penalty must be at least 1"))
	}
	if c.ConsequenceGrace < 0 {
		errs = append(errs, fmt.Errorf("config: consequence_grace must not be negative"))
	}
	if c.CongressInterval <= 2 {
		errs = append(errs, fmt.Errorf("config: congress_interval must be greater than 2"))
	}
	if c.Pacing.Ceiling < 1 {
		errs = append(errs, fmt.Errorf("config: pacing.ceiling must be positive"))
	}
	if c.Pacing.MaxQuiet < 0 || c.Pacing.MaxQuiet > 1 {
		errs = append(errs, fmt.Errorf("config: pacing.max_quiet must be within [0, 1]"))
	}
	if c.TurnInterval <= 0 {
		errs = append(errs, fmt.Errorf("config: turn_interval must be positive"))
	}
	if c.Speed < 0 {
		errs = append(errs, fmt.Errorf("config: speed must not be negative"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: port %d out of range", c.Port))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log_level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// SlogLevel maps LogLevel to a slog level.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
