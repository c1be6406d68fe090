// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file path variable.
const EnvironmentVariable = "TRADEDESK_CONFIG"

// DefaultSocketPath is where the daemon listens unless configured
// otherwise.
const DefaultSocketPath = "${XDG_RUNTIME_DIR:-/tmp}/tradedesk/tradedeskd.sock"

// Environment selects which daemon a config describes.
type Environment string

const (
	// Paper is a daemon connected to a paper-trading account.
	Paper Environment = "paper"
	// Live is a daemon connected to a funded account.
	Live Environment = "live"
)

// Config is the client configuration.
type Config struct {
	// Environment selects the override section to apply.
	Environment Environment `yaml:"environment"`

	// SocketPath is the daemon's Unix socket.
	// Default: ${XDG_RUNTIME_DIR:-/tmp}/tradedesk/tradedeskd.sock
	SocketPath string `yaml:"socket_path"`

	// TimeoutMS bounds the wait for each response, in milliseconds.
	// Zero waits indefinitely. Default: 10000
	TimeoutMS int `yaml:"timeout_ms"`

	// Source is the client tag sent with every request.
	// Default: cli
	Source string `yaml:"source"`

	// LogLevel is one of debug, info, warn, error. Default: warn
	LogLevel string `yaml:"log_level"`

	// MetricsAddress, when set, is the host:port on which long-running
	// commands serve Prometheus metrics.
	MetricsAddress string `yaml:"metrics_address"`

	// Per-environment overrides, applied after the base config.
	PaperOverrides *Overrides `yaml:"paper,omitempty"`
	LiveOverrides  *Overrides `yaml:"live,omitempty"`
}

// Overrides contains fields that can be overridden per environment.
type Overrides struct {
	SocketPath string `yaml:"socket_path,omitempty"`
	TimeoutMS  *int   `yaml:"timeout_ms,omitempty"`
}

// Default returns the default configuration with variables expanded.
func Default() *Config {
	c := defaults()
	c.expandVariables()
	return c
}

func defaults() *Config {
	return &Config{
		Environment: Paper,
		SocketPath:  DefaultSocketPath,
		TimeoutMS:   10000,
		Source:      "cli",
		LogLevel:    "warn",
	}
}

// Load loads configuration from the file named by TRADEDESK_CONFIG, or
// returns Default when the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Fields the
// file omits keep their default values.
func LoadFile(path string) (*Config, error) {
	c := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	c.applyEnvironmentOverrides()
	c.expandVariables()
	return c, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Paper:
		overrides = c.PaperOverrides
	case Live:
		overrides = c.LiveOverrides
	}
	if overrides == nil {
		return
	}

	if overrides.SocketPath != "" {
		c.SocketPath = overrides.SocketPath
	}
	// A pointer so that an explicit 0 (no deadline) can override.
	if overrides.TimeoutMS != nil {
		c.TimeoutMS = *overrides.TimeoutMS
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME":            os.Getenv("HOME"),
		"XDG_RUNTIME_DIR": os.Getenv("XDG_RUNTIME_DIR"),
	}
	c.SocketPath = expandVars(c.SocketPath, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Timeout returns TimeoutMS as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return slog.LevelWarn, fmt.Errorf("log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}
	return level, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Paper && c.Environment != Live {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.SocketPath == "" {
		errs = append(errs, fmt.Errorf("socket_path is required"))
	} else if strings.Contains(c.SocketPath, "${") {
		errs = append(errs, fmt.Errorf("socket_path has unexpanded variables: %s", c.SocketPath))
	}

	if c.TimeoutMS < 0 {
		errs = append(errs, fmt.Errorf("timeout_ms must not be negative"))
	}

	if c.Source == "" {
		errs = append(errs, fmt.Errorf("source is required"))
	}

	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	if c.MetricsAddress != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddress); err != nil {
			errs = append(errs, fmt.Errorf("metrics_address: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
