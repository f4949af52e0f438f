// ABOUTME: Configuration loading and parsing for jobtrack
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete jobtrack configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Sessions SessionsConfig `yaml:"sessions"`
	CSRF     CSRFConfig     `yaml:"csrf"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// Production forces Secure cookies and disables debug affordances
	Production bool `yaml:"production"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SessionsConfig holds session cookie and lifetime configuration
type SessionsConfig struct {
	// CookieSecret signs session cookie values. Required, at least 32 bytes.
	CookieSecret string `yaml:"cookie_secret"`

	// TTL is a fixed lifetime counted from session creation (not sliding).
	TTL time.Duration `yaml:"-"`

	// SweepInterval is how often expired session rows are deleted.
	SweepInterval time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	TTLRaw           string `yaml:"ttl"`
	SweepIntervalRaw string `yaml:"sweep_interval"`
}

// CSRFConfig enumerates the request shapes that require a valid CSRF token.
// Both lists must be non-empty; a request is protected when its method AND
// its content type each appear in the configured sets.
type CSRFConfig struct {
	ProtectedMethods      []string `yaml:"protected_methods"`
	ProtectedContentTypes []string `yaml:"protected_content_types"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in values that may be omitted from the config file.
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:3000"
	}
	if c.Sessions.TTL == 0 {
		c.Sessions.TTL = 7 * 24 * time.Hour
	}
	if c.Sessions.SweepInterval == 0 {
		c.Sessions.SweepInterval = time.Hour
	}
	if len(c.CSRF.ProtectedMethods) == 0 {
		c.CSRF.ProtectedMethods = []string{"POST", "PUT", "PATCH", "DELETE"}
	}
	if len(c.CSRF.ProtectedContentTypes) == 0 {
		c.CSRF.ProtectedContentTypes = []string{
			"application/x-www-form-urlencoded",
			"multipart/form-data",
			"application/json",
		}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if len(c.Sessions.CookieSecret) < 32 {
		return fmt.Errorf("sessions.cookie_secret is required and must be at least 32 bytes")
	}

	if c.Sessions.TTL < time.Minute {
		return fmt.Errorf("sessions.ttl %s is too short (minimum 1m)", c.Sessions.TTL)
	}

	for _, m := range c.CSRF.ProtectedMethods {
		switch m {
		case "POST", "PUT", "PATCH", "DELETE":
		default:
			return fmt.Errorf("csrf.protected_methods: %q is not a state-changing method", m)
		}
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Sessions.TTLRaw != "" {
		cfg.Sessions.TTL, err = time.ParseDuration(cfg.Sessions.TTLRaw)
		if err != nil {
			return fmt.Errorf("parsing sessions.ttl %q: %w", cfg.Sessions.TTLRaw, err)
		}
	}

	if cfg.Sessions.SweepIntervalRaw != "" {
		cfg.Sessions.SweepInterval, err = time.ParseDuration(cfg.Sessions.SweepIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing sessions.sweep_interval %q: %w", cfg.Sessions.SweepIntervalRaw, err)
		}
	}

	return nil
}
