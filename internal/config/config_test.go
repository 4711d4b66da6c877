package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var testEnvVars = []string{
	"SREST_ADDR", "SREST_LOG_LEVEL", "SREST_WORKERS", "SREST_QUEUE_RATE",
	"SREST_TRACK", "SREST_TRACK_COLOR", "SREST_METRICS", "SREST_STATIC_PREFIX",
	"SREST_STATIC_ROOT", "SREST_SHUTDOWN_TIMEOUT",
}

// clearTestEnvVars unsets every SREST_ variable and restores them after the
// test, including any values loaded from .env files.
func clearTestEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range testEnvVars {
		old, had := os.LookupEnv(key)
		require.NoError(t, os.Unsetenv(key))
		t.Cleanup(func() {
			if had {
				_ = os.Setenv(key, old)
			} else {
				_ = os.Unsetenv(key)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	clearTestEnvVars(t)

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", config.Addr)
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, 0, config.Workers)
	assert.Equal(t, 0, config.QueueRate)
	assert.True(t, config.Track)
	assert.False(t, config.TrackColor)
	assert.Equal(t, "/metrics", config.MetricsPath)
	assert.Empty(t, config.StaticPrefix)
	assert.Empty(t, config.StaticRoot)
	assert.Equal(t, 10*time.Second, config.ShutdownTimeout)
	assert.NoError(t, config.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	clearTestEnvVars(t)
	t.Setenv("SREST_ADDR", "127.0.0.1:9000")
	t.Setenv("SREST_LOG_LEVEL", "debug")
	t.Setenv("SREST_WORKERS", "4")
	t.Setenv("SREST_QUEUE_RATE", "100")
	t.Setenv("SREST_TRACK", "false")
	t.Setenv("SREST_TRACK_COLOR", "1")
	t.Setenv("SREST_METRICS", "")
	t.Setenv("SREST_SHUTDOWN_TIMEOUT", "3s")

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", config.Addr)
	assert.Equal(t, zapcore.DebugLevel, config.Level())
	assert.Equal(t, 4, config.Workers)
	assert.Equal(t, 100, config.QueueRate)
	assert.False(t, config.Track)
	assert.True(t, config.TrackColor)
	assert.Empty(t, config.MetricsPath)
	assert.Equal(t, 3*time.Second, config.ShutdownTimeout)
}

func TestLoadInvalidValues(t *testing.T) {
	clearTestEnvVars(t)
	t.Setenv("SREST_WORKERS", "many")
	t.Setenv("SREST_SHUTDOWN_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SREST_WORKERS")
	assert.Contains(t, err.Error(), "SREST_SHUTDOWN_TIMEOUT")
}

func TestLoadEnvFile(t *testing.T) {
	clearTestEnvVars(t)
	t.Setenv("SREST_ADDR", ":7000")

	file := filepath.Join(t.TempDir(), "test.env")
	content := "SREST_ADDR=:6000\nSREST_WORKERS=2\nSREST_STATIC_PREFIX=/assets\nSREST_STATIC_ROOT=./public\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	config, err := Load(file)
	require.NoError(t, err)

	// The environment wins over the file.
	assert.Equal(t, ":7000", config.Addr)
	assert.Equal(t, 2, config.Workers)
	assert.Equal(t, "/assets", config.StaticPrefix)
	assert.Equal(t, "./public", config.StaticRoot)
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearTestEnvVars(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Addr:            ":8080",
			LogLevel:        "info",
			MetricsPath:     "/metrics",
			ShutdownTimeout: time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty addr", func(c *Config) { c.Addr = "" }, "SREST_ADDR"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "SREST_LOG_LEVEL"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "SREST_WORKERS"},
		{"negative rate", func(c *Config) { c.QueueRate = -5 }, "SREST_QUEUE_RATE"},
		{"static prefix only", func(c *Config) { c.StaticPrefix = "/static" }, "SREST_STATIC_ROOT"},
		{"zero timeout", func(c *Config) { c.ShutdownTimeout = 0 }, "SREST_SHUTDOWN_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLevelFallsBackToInfo(t *testing.T) {
	c := &Config{LogLevel: "nope"}
	assert.Equal(t, zapcore.InfoLevel, c.Level())
}
