package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// DefaultUserAgent identifies the browser when nothing else is configured.
const DefaultUserAgent = "statebrowser/1.0 (+https://github.com/GriffinCanCode/statebrowser)"

// Config holds all browser configuration.
type Config struct {
	Browser BrowserConfig `toml:"browser" yaml:"browser"`
	HTTP    HTTPConfig    `toml:"http" yaml:"http"`
	Logging LogConfig     `toml:"logging" yaml:"logging"`
}

// BrowserConfig holds session behaviour.
type BrowserConfig struct {
	UserAgent  string `envconfig:"BROWSER_USER_AGENT" toml:"user_agent" yaml:"user_agent"`
	RaiseOn404 bool   `envconfig:"BROWSER_RAISE_ON_404" toml:"raise_on_404" yaml:"raise_on_404"`
}

// HTTPConfig holds transport settings.
type HTTPConfig struct {
	Timeout            Duration `envconfig:"HTTP_TIMEOUT" toml:"timeout" yaml:"timeout"`
	Retries            int      `envconfig:"HTTP_RETRIES" toml:"retries" yaml:"retries"`
	RetryWaitMin       Duration `envconfig:"HTTP_RETRY_WAIT_MIN" toml:"retry_wait_min" yaml:"retry_wait_min"`
	RetryWaitMax       Duration `envconfig:"HTTP_RETRY_WAIT_MAX" toml:"retry_wait_max" yaml:"retry_wait_max"`
	RateLimit          float64  `envconfig:"HTTP_RATE_LIMIT" toml:"rate_limit" yaml:"rate_limit"`
	MaxRedirects       int      `envconfig:"HTTP_MAX_REDIRECTS" toml:"max_redirects" yaml:"max_redirects"`
	Proxy              string   `envconfig:"HTTP_PROXY_URL" toml:"proxy" yaml:"proxy"`
	InsecureSkipVerify bool     `envconfig:"HTTP_INSECURE" toml:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" toml:"level" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" toml:"development" yaml:"development"`
}

// Duration is a time.Duration read from strings such as "30s" in every
// configuration source.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Browser: BrowserConfig{
			UserAgent: DefaultUserAgent,
		},
		HTTP: HTTPConfig{
			Timeout:      Duration{30 * time.Second},
			Retries:      2,
			RetryWaitMin: Duration{500 * time.Millisecond},
			RetryWaitMax: Duration{5 * time.Second},
			MaxRedirects: 10,
		},
		Logging: LogConfig{
			Level: "info",
		},
	}
}

// Load starts from Default and applies environment variables. Unset
// variables leave the default in place.
func Load() (*Config, error) {
	cfg := Default()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile layers a TOML or YAML file over the defaults, then the
// environment over the file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

func applyEnv(cfg *Config) error {
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}
