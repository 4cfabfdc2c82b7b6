// Package config loads humangate configuration.
//
// Configuration starts from [Default], is overlaid with an optional YAML
// file, and finally with environment variables. Environment variables win
// so that container deployments can adjust a baked-in file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Config is the configuration of the humangate service.
type Config struct {
	// Environment selects log format and gin mode.
	Environment Environment `yaml:"environment"`

	// HTTPAddr is the listen address of the HTTP API.
	HTTPAddr string `yaml:"http_addr"`

	// RedisURL selects the Redis store and Redis stream events when set.
	// When empty, state is kept in memory.
	RedisURL string `yaml:"redis_url"`

	// EventsTopicPrefix namespaces published event topics.
	EventsTopicPrefix string `yaml:"events_topic_prefix"`

	// SigningKeyFile is a PEM encoded P-256 private key used to sign
	// humanity credentials. An ephemeral key is generated when empty.
	SigningKeyFile string `yaml:"signing_key_file"`

	// SnapshotPath is where the in-memory store is restored from at start
	// and saved to at shutdown. Ignored with Redis.
	SnapshotPath string `yaml:"snapshot_path"`

	// SingleUseChallenges clears a challenge after it is answered correctly.
	SingleUseChallenges bool `yaml:"single_use_challenges"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns a Config with development defaults.
func Default() Config {
	return Config{
		Environment:       Development,
		HTTPAddr:          ":9000",
		EventsTopicPrefix: "humangate.",
		ShutdownTimeout:   10 * time.Second,
	}
}

// Load builds the configuration from path (may be empty) and the environment.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := cfg.decodeYAML(data); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(lookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeYAML(data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	stringVars := map[string]*string{
		"HUMANGATE_HTTP_ADDR":        &c.HTTPAddr,
		"REDIS_URL":                  &c.RedisURL,
		"HUMANGATE_EVENTS_PREFIX":    &c.EventsTopicPrefix,
		"HUMANGATE_SIGNING_KEY_FILE": &c.SigningKeyFile,
		"HUMANGATE_SNAPSHOT_PATH":    &c.SnapshotPath,
	}
	for name, field := range stringVars {
		if value, ok := lookup(name); ok {
			*field = value
		}
	}

	if value, ok := lookup("HUMANGATE_ENVIRONMENT"); ok {
		c.Environment = Environment(value)
	}

	if value, ok := lookup("HUMANGATE_SINGLE_USE_CHALLENGES"); ok {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("HUMANGATE_SINGLE_USE_CHALLENGES: %w", err)
		}
		c.SingleUseChallenges = enabled
	}

	if value, ok := lookup("HUMANGATE_SHUTDOWN_TIMEOUT"); ok {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("HUMANGATE_SHUTDOWN_TIMEOUT: %w", err)
		}
		c.ShutdownTimeout = timeout
	}

	return nil
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	switch c.Environment {
	case Development, Production:
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	if c.HTTPAddr == "" {
		return errors.New("http_addr is required")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown_timeout must be positive")
	}
	return nil
}
