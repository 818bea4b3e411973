// Package daemon manages the habitforge server lifecycle and configuration.
package daemon

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
	_ "time/tzdata" // Timezones without a system zoneinfo database

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment overrides, applied after the config file.
const (
	EnvHome     = "HABITFORGE_HOME"
	EnvAPIPort  = "HABITFORGE_API_PORT"
	EnvLogLevel = "HABITFORGE_LOG_LEVEL"
	EnvTimezone = "HABITFORGE_TIMEZONE"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Database  DatabaseConfig  `toml:"database"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Engine    EngineConfig    `toml:"engine"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	RequestTimeout string `toml:"request_timeout"`
}

// DatabaseConfig locates the SQLite store.
type DatabaseConfig struct {
	Dir string `toml:"dir"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level     string `toml:"level"`
	File      string `toml:"file"`
	MaxSizeMB int    `toml:"max_size_mb"`
	MaxFiles  int    `toml:"max_files"`
	// Quiet keeps log lines off stderr. Set by CLI commands, never read
	// from the file.
	Quiet bool `toml:"-"`
}

// TelemetryConfig controls metrics and health checks.
type TelemetryConfig struct {
	Prometheus     bool   `toml:"prometheus"`
	HealthInterval string `toml:"health_interval"`
}

// EngineConfig controls the gamification engine.
type EngineConfig struct {
	// Timezone decides which calendar day "today" is.
	Timezone   string `toml:"timezone"`
	SeedBadges bool   `toml:"seed_badges"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := habitforgeHome()
	return Config{
		API: APIConfig{
			Host:           "127.0.0.1",
			Port:           8420,
			RequestTimeout: "30s",
		},
		Database: DatabaseConfig{
			Dir: homeDir,
		},
		Logging: LoggingConfig{
			Level:     "info",
			File:      filepath.Join(homeDir, "habitforge.log"),
			MaxSizeMB: 20,
			MaxFiles:  5,
		},
		Telemetry: TelemetryConfig{
			Prometheus:     true,
			HealthInterval: "60s",
		},
		Engine: EngineConfig{
			Timezone:   "UTC",
			SeedBadges: true,
		},
	}
}

// LoadConfig reads .env files, then $HABITFORGE_HOME/config.toml, then
// environment overrides. A missing file falls back to defaults.
func LoadConfig() (Config, error) {
	// Variables already set in the environment win over .env files.
	if err := loadDotenv(".env"); err != nil {
		return Config{}, err
	}
	if err := loadDotenv(filepath.Join(habitforgeHome(), ".env")); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	path := ConfigPath()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if _, err := cfg.Location(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadDotenv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvAPIPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 0 || port > 65535 {
			return fmt.Errorf("%s: invalid port %q", EnvAPIPort, v)
		}
		cfg.API.Port = port
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		cfg.Engine.Timezone = v
	}
	return nil
}

// SaveConfig writes the config to $HABITFORGE_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// Location resolves the engine timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Engine.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Engine.Timezone)
	if err != nil {
		return nil, fmt.Errorf("engine timezone %q: %w", c.Engine.Timezone, err)
	}
	return loc, nil
}

// ConfigPath is the config file location.
func ConfigPath() string {
	return filepath.Join(habitforgeHome(), "config.toml")
}

// habitforgeHome returns the data directory.
func habitforgeHome() string {
	if env := os.Getenv(EnvHome); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".habitforge")
}

// Home is exported for use by other packages.
func Home() string {
	return habitforgeHome()
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
