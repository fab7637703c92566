package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// DefaultTrigger is used when no trigger is enabled.
const DefaultTrigger = "🐍"

// Config represents the complete ledger configuration
type Config struct {
	Store    StoreConfig     `json:"store" yaml:"store"`
	Chart    ChartConfig     `json:"chart" yaml:"chart"`
	Triggers []TriggerConfig `json:"triggers" yaml:"triggers"`
	Log      LogConfig       `json:"log" yaml:"log"`
	Server   ServerConfig    `json:"server" yaml:"server"`
}

// StoreConfig selects the record store
type StoreConfig struct {
	Type string `json:"type" yaml:"type" env:"LEDGER_STORE_TYPE"` // "sqlite", "memory" or "postgres"
	Path string `json:"path,omitempty" yaml:"path,omitempty" env:"LEDGER_STORE_PATH"`
	DSN  string `json:"dsn,omitempty" yaml:"dsn,omitempty" env:"LEDGER_STORE_DSN"`
}

// ChartConfig contains chart output parameters
type ChartConfig struct {
	Dir    string `json:"dir" yaml:"dir" env:"LEDGER_CHART_DIR"`
	Prefix string `json:"prefix" yaml:"prefix"`
	Labels string `json:"labels" yaml:"labels" env:"LEDGER_CHART_LABELS"` // "auto", "localized" or "fallback"
	Font   string `json:"font,omitempty" yaml:"font,omitempty" env:"LEDGER_CHART_FONT"`
}

// TriggerConfig is one message prefix that starts a ledger request
type TriggerConfig struct {
	Symbol  string `json:"symbol" yaml:"symbol"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// LogConfig contains logger parameters
type LogConfig struct {
	Level  string `json:"level" yaml:"level" env:"LEDGER_LOG_LEVEL"`
	Format string `json:"format" yaml:"format" env:"LEDGER_LOG_FORMAT"` // "json" or "console"
}

// ServerConfig contains HTTP host parameters
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" env:"LEDGER_SERVER_ADDR"`
}

// LoadFromFile loads configuration from a file (YAML or JSON), applies
// environment overrides and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	return finish(cfg)
}

// Load returns the defaults with environment overrides applied. It is used
// when no config file is given.
func Load() (*Config, error) {
	return finish(Default())
}

func finish(cfg *Config) (*Config, error) {
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, JSON otherwise)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Store.Type {
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path required for sqlite store")
		}
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn required for postgres store")
		}
	case "memory":
	default:
		return fmt.Errorf("store.type must be 'sqlite', 'memory' or 'postgres'")
	}

	switch strings.ToLower(c.Chart.Labels) {
	case "", "auto", "localized", "fallback":
	default:
		return fmt.Errorf("chart.labels must be 'auto', 'localized' or 'fallback'")
	}
	if c.Chart.Dir == "" {
		return fmt.Errorf("chart.dir is required")
	}

	for i, t := range c.Triggers {
		if strings.TrimSpace(t.Symbol) == "" {
			return fmt.Errorf("triggers[%d].symbol is required", i)
		}
	}

	switch c.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format must be 'json' or 'console'")
	}
	return nil
}

// EnabledTriggers returns the enabled trigger symbols in configuration
// order, or DefaultTrigger when none is enabled.
func (c *Config) EnabledTriggers() []string {
	var out []string
	for _, t := range c.Triggers {
		if t.Enabled {
			out = append(out, t.Symbol)
		}
	}
	if len(out) == 0 {
		return []string{DefaultTrigger}
	}
	return out
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Type: "sqlite",
			Path: "data/ledger.db",
		},
		Chart: ChartConfig{
			Dir:    "data/picture",
			Prefix: "ledger_pivot",
			Labels: "auto",
		},
		Triggers: []TriggerConfig{
			{Symbol: DefaultTrigger, Enabled: true},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
