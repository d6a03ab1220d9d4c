// Package config loads server configuration from an optional YAML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

// Config holds the server settings.
type Config struct {
	// Port the HTTP server listens on.
	Port int `yaml:"port"`

	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`

	// TokenSecret signs session tokens. Must be set in production;
	// the default exists so local development works out of the box.
	TokenSecret string `yaml:"token_secret"`

	// TokenTTL is how long session tokens stay valid (Go duration string).
	TokenTTL time.Duration `yaml:"-"`

	RawTokenTTL string `yaml:"token_ttl"`
}

func defaults() *Config {
	return &Config{
		Port:        8080,
		DBPath:      "./data/planner.db",
		TokenSecret: "dev-secret-change-me",
		RawTokenTTL: "168h",
	}
}

// Load reads the config file at path (skipped when empty or absent) and
// applies environment overrides: PORT, DB_PATH, KOLV02_BACKEND_SECRET,
// TOKEN_TTL.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("KOLV02_BACKEND_SECRET"); v != "" {
		cfg.TokenSecret = v
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		cfg.RawTokenTTL = v
	}

	ttl, err := time.ParseDuration(cfg.RawTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid token_ttl %q: %w", cfg.RawTokenTTL, err)
	}
	cfg.TokenTTL = ttl

	return cfg, nil
}
