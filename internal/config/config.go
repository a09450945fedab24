// Package config loads service configuration.
//
// Values come from, in order of precedence: environment variables, an
// optional YAML file, then built-in defaults. The file is named by the
// --config flag or EVENTS_CONFIG; without one, defaults and environment
// are used.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Events   EventsConfig   `yaml:"events"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port string `yaml:"port"`

	// PublicURL is the externally visible base URL, used in iCal and QR
	// links.
	PublicURL string `yaml:"public_url"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// Path is the SQLite data source name.
	Path string `yaml:"path"`
}

type AuthConfig struct {
	SessionTTL time.Duration `yaml:"session_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

// EventsConfig tunes the RSVP service.
type EventsConfig struct {
	// TimeZone anchors the today/tomorrow/this-week/this-month filters.
	TimeZone string `yaml:"timezone"`

	// RSVPMaxAttempts bounds re-reads after a lost version check.
	RSVPMaxAttempts int `yaml:"rsvp_max_attempts"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			PublicURL:       "http://localhost:8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{Path: "events.db?_busy_timeout=5000&_txlock=immediate"},
		Auth:     AuthConfig{SessionTTL: 24 * time.Hour, BcryptCost: 10},
		Events:   EventsConfig{TimeZone: "UTC", RSVPMaxAttempts: 3},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path (if non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables read through
// getenv. Empty variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	var errs []error
	setString := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			*dst = v
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = d
		}
	}
	setInt := func(name string, dst *int) {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = n
		}
	}

	setString("PORT", &c.Server.Port)
	setString("PUBLIC_URL", &c.Server.PublicURL)
	setString("DATABASE_PATH", &c.Database.Path)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)
	setString("EVENTS_TIMEZONE", &c.Events.TimeZone)
	setDuration("SESSION_TTL", &c.Auth.SessionTTL)
	setInt("BCRYPT_COST", &c.Auth.BcryptCost)
	setInt("RSVP_MAX_ATTEMPTS", &c.Events.RSVPMaxAttempts)

	return errors.Join(errs...)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: %q is not a valid port", c.Server.Port))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("auth.session_ttl must be positive"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost: %d is outside 4..31", c.Auth.BcryptCost))
	}
	if c.Events.RSVPMaxAttempts < 1 {
		errs = append(errs, errors.New("events.rsvp_max_attempts must be at least 1"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Location resolves Events.TimeZone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Events.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("events.timezone: invalid timezone '%s': %w", c.Events.TimeZone, err)
	}
	return loc, nil
}
