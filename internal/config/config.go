// Package config loads the TOML configuration shared by the server and the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/baditaflorin/go_tm_similarity/internal/core/domain"
)

// Config is the top level configuration file.
type Config struct {
	Matching Matching `toml:"matching"`
	Ranking  Ranking  `toml:"ranking"`
	Server   Server   `toml:"server"`
	Log      Log      `toml:"log"`
}

// Matching configures both comparers.
type Matching struct {
	StopPercentage float64 `toml:"stop_percentage"`
	MaxLength      int     `toml:"max_length"`
	TermMaxLength  int     `toml:"term_max_length"`
	Stemming       bool    `toml:"stemming"`
}

// Ranking configures bulk candidate ranking.
type Ranking struct {
	Workers   int `toml:"workers"`
	CacheSize int `toml:"cache_size"`
	Limit     int `toml:"limit"`
}

// Server configures cmd/server.
type Server struct {
	Port           int      `toml:"port"`
	ReadTimeout    Duration `toml:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout"`
	MaxRequestSize int      `toml:"max_request_size"`
	Concurrency    int      `toml:"concurrency"`
	WarmUp         bool     `toml:"warm_up"`
}

// Log configures the l logger.
type Log struct {
	File string `toml:"file"`
	JSON bool   `toml:"json"`
}

// Duration is a time.Duration written as a string ("30s") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Matching: Matching{
			StopPercentage: 40,
			MaxLength:      200,
			TermMaxLength:  500,
		},
		Ranking: Ranking{
			CacheSize: 4096,
		},
		Server: Server{
			Port:           8080,
			ReadTimeout:    Duration{30 * time.Second},
			WriteTimeout:   Duration{30 * time.Second},
			MaxRequestSize: 10 * 1024 * 1024, // 10MB
			WarmUp:         true,
		},
		Log: Log{
			JSON: true,
		},
	}
}

// Load reads path on top of the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if err := domain.CheckStopPercentage(c.Matching.StopPercentage); err != nil {
		return err
	}
	if c.Matching.MaxLength <= 0 || c.Matching.TermMaxLength <= 0 {
		return errors.New("max lengths must be greater than 0")
	}
	if c.Ranking.Workers < 0 || c.Ranking.Limit < 0 {
		return errors.New("ranking workers and limit must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.MaxRequestSize < 0 || c.Server.Concurrency < 0 {
		return errors.New("server max request size and concurrency must not be negative")
	}
	if c.Server.ReadTimeout.Duration < 0 || c.Server.WriteTimeout.Duration < 0 {
		return errors.New("server timeouts must not be negative")
	}
	return nil
}
