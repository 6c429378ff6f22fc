// Package config loads client settings from an optional file and the
// environment, using the same variables as the docker command line.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	// Packages
	client "github.com/mutablelogic/go-docker/pkg/client"
	schema "github.com/mutablelogic/go-docker/pkg/schema"
	transport "github.com/mutablelogic/go-docker/pkg/transport"
	zerolog "github.com/rs/zerolog"
	viper "github.com/spf13/viper"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Config is the complete client configuration
type Config struct {
	Docker  DockerConfig  `mapstructure:"docker"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// DockerConfig holds daemon connection details
type DockerConfig struct {
	Host       string        `mapstructure:"host"`
	APIVersion string        `mapstructure:"api_version"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RateLimit  float64       `mapstructure:"rate_limit"`
	Burst      int           `mapstructure:"burst"`
	Trace      bool          `mapstructure:"trace"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Environment variables bound to configuration keys
var env = map[string]string{
	"docker.host":        "DOCKER_HOST",
	"docker.api_version": "DOCKER_API_VERSION",
	"docker.timeout":     "DOCKER_TIMEOUT",
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Load returns the configuration from defaults, the file at path when it is
// not empty, and the environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Bind environment
	for key, name := range env {
		if err := v.BindEnv(key, name); err != nil {
			return nil, err
		}
	}

	// Read config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ClientOpts returns the options for client.New, logging to logger.
func (cfg *Config) ClientOpts(logger zerolog.Logger) []client.Opt {
	opts := []client.Opt{
		client.OptLogger(logger),
		client.OptTransport(cfg.TransportOpts()...),
	}
	if cfg.Docker.APIVersion != "" {
		opts = append(opts, client.OptAPIVersion(cfg.Docker.APIVersion))
	}
	return opts
}

// TransportOpts returns the options for the HTTP transport.
func (cfg *Config) TransportOpts() []transport.Opt {
	var opts []transport.Opt
	if cfg.Docker.Timeout > 0 {
		opts = append(opts, transport.OptTimeout(cfg.Docker.Timeout))
	}
	if cfg.Docker.RateLimit > 0 {
		opts = append(opts, transport.OptRateLimit(cfg.Docker.RateLimit, max(cfg.Docker.Burst, 1)))
	}
	if cfg.Docker.Trace {
		opts = append(opts, transport.OptTrace(os.Stderr, true))
	}
	return opts
}

// Logger returns a logger writing to w in the configured format and level.
func (cfg LoggingConfig) Logger(w io.Writer) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(w).Level(level).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Docker defaults
	v.SetDefault("docker.host", schema.DefaultHost)
	v.SetDefault("docker.api_version", "")
	v.SetDefault("docker.timeout", "0s")
	v.SetDefault("docker.rate_limit", 0)
	v.SetDefault("docker.burst", 1)
	v.SetDefault("docker.trace", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Docker.Host == "" {
		return errors.New("docker.host is required")
	}
	if _, _, err := transport.ParseHost(cfg.Docker.Host); err != nil {
		return fmt.Errorf("docker.host: %w", err)
	}
	if version := strings.TrimPrefix(cfg.Docker.APIVersion, "v"); version != "" && !client.ValidAPIVersion(version) {
		return fmt.Errorf("invalid docker.api_version: %s", cfg.Docker.APIVersion)
	}
	if cfg.Docker.Timeout < 0 {
		return fmt.Errorf("invalid docker.timeout: %v", cfg.Docker.Timeout)
	}
	if cfg.Docker.RateLimit < 0 {
		return fmt.Errorf("invalid docker.rate_limit: %v", cfg.Docker.RateLimit)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
