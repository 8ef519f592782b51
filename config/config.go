// Package config loads the application configuration from a YAML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings.
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	HTTP          HTTPConfig          `yaml:"http"`
	Automation    AutomationConfig    `yaml:"automation"`
	Import        ImportConfig        `yaml:"import"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// Duration wraps time.Duration so YAML values like "15m" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// HTTPConfig holds the ops/read-only API server configuration.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// WindowConfig describes a weekly civil-time trigger window.
type WindowConfig struct {
	Weekday time.Weekday `yaml:"weekday"`
	Hour    int          `yaml:"hour"`
	Minute  int          `yaml:"minute"`
	Width   Duration     `yaml:"width"`
}

// AutomationConfig holds the scheduler configuration. All windows are
// evaluated in each guild's configured timezone.
type AutomationConfig struct {
	TickInterval    Duration     `yaml:"tick_interval"`
	DefaultTimezone string       `yaml:"default_timezone"`
	ThreadCreation  WindowConfig `yaml:"thread_creation"`
	Ranking         WindowConfig `yaml:"ranking"`
}

// ImportConfig holds historical-import pacing.
type ImportConfig struct {
	BatchSize  int      `yaml:"batch_size"`
	BatchPause Duration `yaml:"batch_pause"`
}

// ObservabilityConfig holds logging configuration.
type ObservabilityConfig struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
}

// LoadConfig loads the configuration from a YAML file. A missing file is
// not an error; defaults plus environment variables apply.
func LoadConfig(filename string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Observability.Environment = v
	}

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required (config file or DATABASE_URL)")
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{Addr: ":8080"},
		Automation: AutomationConfig{
			TickInterval:    Duration(15 * time.Minute),
			DefaultTimezone: "Europe/Berlin",
			ThreadCreation: WindowConfig{
				Weekday: time.Monday,
				Hour:    9,
				Minute:  0,
				Width:   Duration(15 * time.Minute),
			},
			Ranking: WindowConfig{
				Weekday: time.Tuesday,
				Hour:    12,
				Minute:  0,
				Width:   Duration(15 * time.Minute),
			},
		},
		Import: ImportConfig{
			BatchSize:  100,
			BatchPause: Duration(time.Second),
		},
		Observability: ObservabilityConfig{
			Environment: "production",
			LogLevel:    "info",
		},
	}
}
