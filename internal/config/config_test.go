package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultUserAgent, cfg.Browser.UserAgent)
	assert.False(t, cfg.Browser.RaiseOn404)

	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout.Duration)
	assert.Equal(t, 2, cfg.HTTP.Retries)
	assert.Equal(t, 10, cfg.HTTP.MaxRedirects)
	assert.Zero(t, cfg.HTTP.RateLimit)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	require.NotNil(t, cfg)
	assert.Equal(t, DefaultUserAgent, cfg.Browser.UserAgent)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	t.Setenv("BROWSER_USER_AGENT", "007")
	t.Setenv("BROWSER_RAISE_ON_404", "true")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("HTTP_RETRIES", "0")
	t.Setenv("HTTP_RATE_LIMIT", "2.5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_DEV", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "007", cfg.Browser.UserAgent)
	assert.True(t, cfg.Browser.RaiseOn404)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout.Duration)
	assert.Equal(t, 0, cfg.HTTP.Retries)
	assert.Equal(t, 2.5, cfg.HTTP.RateLimit)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	// untouched values keep their defaults
	assert.Equal(t, 10, cfg.HTTP.MaxRedirects)
}

func TestLoadInvalidEnvironment(t *testing.T) {
	t.Setenv("HTTP_RETRIES", "many")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, 2, cfg.HTTP.Retries)
}

func TestLoadFileTOML(t *testing.T) {
	path := writeFile(t, "browse.toml", `
[browser]
user_agent = "toml-agent"
raise_on_404 = true

[http]
timeout = "12s"
retries = 4

[logging]
level = "warn"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "toml-agent", cfg.Browser.UserAgent)
	assert.True(t, cfg.Browser.RaiseOn404)
	assert.Equal(t, 12*time.Second, cfg.HTTP.Timeout.Duration)
	assert.Equal(t, 4, cfg.HTTP.Retries)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.HTTP.MaxRedirects)
}

func TestLoadFileYAML(t *testing.T) {
	path := writeFile(t, "browse.yaml", `
browser:
  user_agent: yaml-agent
http:
  timeout: 1m
  rate_limit: 3
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "yaml-agent", cfg.Browser.UserAgent)
	assert.Equal(t, time.Minute, cfg.HTTP.Timeout.Duration)
	assert.Equal(t, 3.0, cfg.HTTP.RateLimit)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "browse.yml", "browser:\n  user_agent: from-file\n")
	t.Setenv("BROWSER_USER_AGENT", "from-env")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Browser.UserAgent)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "browse.ini", "x=1"))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = LoadFile(writeFile(t, "bad.toml", "[http]\ntimeout = \"soon\"\n"))
	assert.Error(t, err)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
