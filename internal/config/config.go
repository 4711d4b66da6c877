// Package config loads the srest process configuration from environment
// variables, optionally seeded from .env files.
//
// Environment Variables:
//   - SREST_ADDR: Listen address (default: :8080)
//   - SREST_LOG_LEVEL: debug, info, warn or error (default: info)
//   - SREST_WORKERS: Workers per offload queue, 0 for GOMAXPROCS (default: 0)
//   - SREST_QUEUE_RATE: Jobs started per second per queue, 0 for unlimited (default: 0)
//   - SREST_TRACK: Log every finished request (default: true)
//   - SREST_TRACK_COLOR: Use colored request lines instead of zap (default: false)
//   - SREST_METRICS: Path the Prometheus metrics are served at, empty to disable (default: /metrics)
//   - SREST_STATIC_PREFIX: URL prefix for static files
//   - SREST_STATIC_ROOT: File or directory served at SREST_STATIC_PREFIX
//   - SREST_SHUTDOWN_TIMEOUT: Graceful shutdown timeout (default: 10s)
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Config holds the srest process configuration.
type Config struct {
	Addr            string        // Listen address
	LogLevel        string        // Logging level (debug, info, warn, error)
	Workers         int           // Workers per offload queue
	QueueRate       int           // Jobs started per second per queue
	Track           bool          // Whether finished requests are logged
	TrackColor      bool          // Whether request lines are colored
	MetricsPath     string        // Prometheus exposition path
	StaticPrefix    string        // Static files URL prefix
	StaticRoot      string        // Static files root
	ShutdownTimeout time.Duration // Graceful shutdown timeout
}

// Load reads the configuration from the environment. Variables already set
// in the environment win over values from the given .env files. Without
// files, ./.env is read if it exists.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		if len(files) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading env files: %w", err)
		}
	}

	var errs []error
	config := &Config{
		Addr:            getEnv("SREST_ADDR", ":8080"),
		LogLevel:        getEnv("SREST_LOG_LEVEL", "info"),
		Workers:         getIntEnv("SREST_WORKERS", 0, &errs),
		QueueRate:       getIntEnv("SREST_QUEUE_RATE", 0, &errs),
		Track:           getBoolEnv("SREST_TRACK", true, &errs),
		TrackColor:      getBoolEnv("SREST_TRACK_COLOR", false, &errs),
		MetricsPath:     getEnvAllowEmpty("SREST_METRICS", "/metrics"),
		StaticPrefix:    getEnv("SREST_STATIC_PREFIX", ""),
		StaticRoot:      getEnv("SREST_STATIC_ROOT", ""),
		ShutdownTimeout: getDurationEnv("SREST_SHUTDOWN_TIMEOUT", 10*time.Second, &errs),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("SREST_ADDR must not be empty"))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("SREST_LOG_LEVEL: %w", err))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("SREST_WORKERS must not be negative, got %d", c.Workers))
	}
	if c.QueueRate < 0 {
		errs = append(errs, fmt.Errorf("SREST_QUEUE_RATE must not be negative, got %d", c.QueueRate))
	}
	if (c.StaticPrefix == "") != (c.StaticRoot == "") {
		errs = append(errs, errors.New("SREST_STATIC_PREFIX and SREST_STATIC_ROOT must be set together"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SREST_SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout))
	}

	return errors.Join(errs...)
}

// Level returns the parsed log level, or info if it is invalid.
func (c *Config) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty treats a variable set to the empty string as a value.
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return parsed
}

func getBoolEnv(key string, defaultValue bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return parsed
}

func getDurationEnv(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return parsed
}
