package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/labtrack/labtrack/internal/roster"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Roster    RosterConfig    `yaml:"roster"`
	Autosave  AutosaveConfig  `yaml:"autosave"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "stdio" or "http"
}

type DBConfig struct {
	Path        string `yaml:"path"`
	SnapshotKey string `yaml:"snapshot_key"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// RosterConfig overrides the stock roster. Members listed here are seeded in
// order; ids are always assigned by the roster builder, never configured.
type RosterConfig struct {
	StartYear int           `yaml:"start_year"`
	Members   []roster.Seed `yaml:"members"`
}

type AutosaveConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

// Seeds returns the configured roster seeds, or the stock roster when none
// are configured.
func (c Config) Seeds() []roster.Seed {
	if len(c.Roster.Members) > 0 {
		return c.Roster.Members
	}
	return roster.DefaultSeeds()
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		DB: DBConfig{
			Path:        "labtrack.db",
			SnapshotKey: "researchProgressData",
		},
		Log: LogConfig{
			Level: "info",
		},
		Roster: RosterConfig{
			StartYear: 2025,
		},
		Autosave: AutosaveConfig{
			IntervalSeconds: 30,
		},
	}

	if path := os.Getenv("LABTRACK_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("LABTRACK_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("LABTRACK_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LABTRACK_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("LABTRACK_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if dbPath := os.Getenv("LABTRACK_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("LABTRACK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if yearStr := os.Getenv("LABTRACK_START_YEAR"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LABTRACK_START_YEAR: %w", err)
		}
		cfg.Roster.StartYear = year
	}

	if cfg.Transport.Mode != "stdio" && cfg.Transport.Mode != "http" {
		return Config{}, fmt.Errorf("invalid transport mode %q", cfg.Transport.Mode)
	}
	if cfg.Autosave.IntervalSeconds < 0 {
		return Config{}, fmt.Errorf("invalid autosave interval %d", cfg.Autosave.IntervalSeconds)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
