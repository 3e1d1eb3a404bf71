// Package config loads server settings from the environment and variant
// definitions from YAML.
package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server settings.
type Config struct {
	Port         int           `env:"DARKHOLLOW_PORT" envDefault:"8080"`
	DBPath       string        `env:"DARKHOLLOW_DB" envDefault:"data/darkhollow.db"`
	AdminKey     string        `env:"DARKHOLLOW_ADMIN_KEY"`
	Tick         time.Duration `env:"DARKHOLLOW_TICK" envDefault:"2s"`
	EventEvery   uint64        `env:"DARKHOLLOW_EVENT_EVERY" envDefault:"15"`
	SaveEvery    uint64        `env:"DARKHOLLOW_SAVE_EVERY" envDefault:"30"`
	VariantsPath string        `env:"DARKHOLLOW_VARIANTS"`
	RandomOrgKey string        `env:"RANDOM_ORG_API_KEY"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" envSeparator:","`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the server config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("DARKHOLLOW_PORT %d out of range", cfg.Port)
	}
	if cfg.Tick <= 0 {
		return cfg, fmt.Errorf("DARKHOLLOW_TICK must be positive, got %s", cfg.Tick)
	}
	return cfg, nil
}

// Addr is the listen address.
func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// Level maps LOG_LEVEL onto a slog level. Unknown values mean info.
func (c Config) Level() slog.Level {
	return ParseLevel(c.LogLevel)
}

// ParseLevel maps a level name onto a slog level. Unknown values mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// KeeperConfig holds the keeper bot settings.
type KeeperConfig struct {
	APIURL     string        `env:"DARKHOLLOW_API_URL" envDefault:"http://localhost:8080"`
	SessionID  string        `env:"KEEPER_SESSION"`
	Name       string        `env:"KEEPER_NAME" envDefault:"Keeper"`
	Variant    string        `env:"KEEPER_VARIANT"`
	Seed       string        `env:"KEEPER_SEED"`
	Interval   time.Duration `env:"KEEPER_INTERVAL" envDefault:"3s"`
	SaveEvery  int           `env:"KEEPER_SAVE_EVERY" envDefault:"20"`
	MemoryPath string        `env:"KEEPER_MEMORY" envDefault:"keeper_memory.json"`
	LogLevel   string        `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadKeeper parses the keeper config from the environment.
func LoadKeeper() (KeeperConfig, error) {
	var cfg KeeperConfig
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if cfg.Interval <= 0 {
		return cfg, fmt.Errorf("KEEPER_INTERVAL must be positive, got %s", cfg.Interval)
	}
	return cfg, nil
}

// SeedValue returns the parsed KEEPER_SEED, or nil when unset.
func (c KeeperConfig) SeedValue() (*int64, error) {
	if c.Seed == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(c.Seed, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("KEEPER_SEED: %w", err)
	}
	return &n, nil
}
