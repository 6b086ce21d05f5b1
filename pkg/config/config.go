// Package config loads process configuration for the cloud client binaries
// from the environment, optionally seeded from a .env file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every variable, e.g. CLOUD_SERVER_ADDRESS.
const EnvPrefix = "CLOUD"

// Config is the process configuration.
type Config struct {
	ServerAddress string        `envconfig:"SERVER_ADDRESS" default:"http://0.0.0.0:8080/"`
	Delay         time.Duration `envconfig:"DELAY" default:"1s"`
	HTTPTimeout   time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	// RedisURL enables the Redis auth data store when set.
	RedisURL    string `envconfig:"REDIS_URL"`
	AuthDataKey string `envconfig:"AUTH_DATA_KEY" default:"lostnfound:auth_data"`

	// AuthData is a raw JSON blob used when RedisURL is empty.
	AuthData string `envconfig:"AUTH_DATA"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`

	// MetricsAddr serves /metrics when set, e.g. ":9090".
	MetricsAddr string `envconfig:"METRICS_ADDR"`
}

// Load reads the environment. Files in envFiles are loaded first without
// overriding variables that are already set; missing files are ignored.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	if c.Delay < 0 {
		return fmt.Errorf("CLOUD_DELAY must be >= 0 (got %s)", c.Delay)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("CLOUD_HTTP_TIMEOUT must be >= 0 (got %s)", c.HTTPTimeout)
	}
	if c.AuthData != "" && !json.Valid([]byte(c.AuthData)) {
		return fmt.Errorf("CLOUD_AUTH_DATA is not valid JSON")
	}
	return nil
}

// StaticAuthData returns AuthData as raw JSON, or nil when unset.
func (c *Config) StaticAuthData() any {
	if c.AuthData == "" {
		return nil
	}
	return json.RawMessage(c.AuthData)
}
