/*
config.go - Server configuration

PURPOSE:
  Resolves the server settings from, in increasing priority:
    1. Built-in defaults
    2. An optional YAML file (--config)
    3. A .env file in the working directory, then the process environment
    4. Command-line flags (applied by cmd/server after Load)

ENVIRONMENT:
  PORT                  HTTP port (default 5477)
  LOG_LEVEL             logrus level name (default info)
  API_PREFIX            route prefix (default /api/blackrock/challenge/v1)
  CORS_ALLOWED_ORIGINS  comma separated origins (default *)
  RATE_LIMIT_RPS        requests per second, 0 disables (default 100)
  RATE_LIMIT_BURST      limiter bucket size (default 200)
  MAX_BODY_BYTES        request body limit in bytes (default 10485760)
  READ_TIMEOUT          http.Server read timeout, Go duration (default 15s)
  WRITE_TIMEOUT         http.Server write timeout, Go duration (default 15s)
  IDLE_TIMEOUT          keep-alive idle timeout, Go duration (default 60s)
  SHUTDOWN_TIMEOUT      graceful shutdown budget, Go duration (default 30s)

EXAMPLE YAML:
  port: 8080
  log_level: debug
  cors_allowed_origins: ["http://localhost:5173"]
  rate_limit_rps: 50
  shutdown_timeout: 10s

SEE ALSO:
  - cmd/server/main.go: Flag overrides and server startup
  - api/server.go: Consumers of the prefix, CORS and limiter settings
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultAPIPrefix = "/api/blackrock/challenge/v1"

// Config holds every tunable of the HTTP server.
type Config struct {
	Port           int      `yaml:"port"`
	LogLevel       string   `yaml:"log_level"`
	APIPrefix      string   `yaml:"api_prefix"`
	AllowedOrigins []string `yaml:"cors_allowed_origins"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	// Upper bound on request body size, in bytes.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Port:            5477,
		LogLevel:        "info",
		APIPrefix:       DefaultAPIPrefix,
		AllowedOrigins:  []string{"*"},
		RateLimitRPS:    100,
		RateLimitBurst:  200,
		MaxBodyBytes:    10 << 20,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Load builds the configuration. path may be empty, in which case no YAML
// file is read. A missing .env file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var err error

	if c.Port, err = getEnvAsInt("PORT", c.Port); err != nil {
		return err
	}
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.APIPrefix = getEnv("API_PREFIX", c.APIPrefix)
	if origins := getEnv("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}
	if c.RateLimitRPS, err = getEnvAsFloat("RATE_LIMIT_RPS", c.RateLimitRPS); err != nil {
		return err
	}
	if c.RateLimitBurst, err = getEnvAsInt("RATE_LIMIT_BURST", c.RateLimitBurst); err != nil {
		return err
	}
	if c.MaxBodyBytes, err = getEnvAsInt64("MAX_BODY_BYTES", c.MaxBodyBytes); err != nil {
		return err
	}
	if c.ReadTimeout, err = getEnvAsDuration("READ_TIMEOUT", c.ReadTimeout); err != nil {
		return err
	}
	if c.WriteTimeout, err = getEnvAsDuration("WRITE_TIMEOUT", c.WriteTimeout); err != nil {
		return err
	}
	if c.IdleTimeout, err = getEnvAsDuration("IDLE_TIMEOUT", c.IdleTimeout); err != nil {
		return err
	}
	if c.ShutdownTimeout, err = getEnvAsDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout); err != nil {
		return err
	}
	return nil
}

// Validate checks the final configuration, after every override.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		errs = append(errs, fmt.Errorf("api prefix %q must start with /", c.APIPrefix))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("rate limit rps %v must not be negative", c.RateLimitRPS))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("rate limit burst %d must be at least 1", c.RateLimitBurst))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("max body bytes %d must be positive", c.MaxBodyBytes))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout %s must be positive", c.ShutdownTimeout))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for net/http.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// =============================================================================
// ENVIRONMENT HELPERS
// =============================================================================

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s (%q): %w", key, valueStr, err)
	}
	return value, nil
}

func getEnvAsInt64(key string, fallback int64) (int64, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s (%q): %w", key, valueStr, err)
	}
	return value, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number value for %s (%q): %w", key, valueStr, err)
	}
	return value, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value for %s (%q): %w", key, valueStr, err)
	}
	return value, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
