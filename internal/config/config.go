// Package config loads chatbox settings: defaults, then an optional YAML file, then
// environment overrides. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint    = "http://127.0.0.1:5000"
	DefaultRelayAddr   = ":5000"
	DefaultGeminiModel = "gemini-2.0-flash"

	BackendGemini = "gemini"
	BackendEcho   = "echo"
)

var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")

type Config struct {
	Endpoint  string `yaml:"endpoint"`
	ExportDir string `yaml:"export_dir"`
	AltScreen bool   `yaml:"alt_screen"`
	// InputLimit caps the compose buffer in characters.
	InputLimit int           `yaml:"input_limit"`
	Logging    LoggingConfig `yaml:"logging"`
	Relay      RelayConfig   `yaml:"relay"`
}

type LoggingConfig struct {
	File  string `yaml:"file"`  // empty disables logging in the TUI
	Level string `yaml:"level"` // debug, info, warn, error
}

// RelayConfig configures the companion /chat endpoint.
type RelayConfig struct {
	Addr    string `yaml:"addr"`
	Backend string `yaml:"backend"` // gemini or echo
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
}

func Default() Config {
	logFile := ""
	if dir, err := os.UserCacheDir(); err == nil {
		logFile = filepath.Join(dir, "chatbox", "chatbox.log")
	}
	return Config{
		Endpoint:   DefaultEndpoint,
		ExportDir:  ".",
		AltScreen:  true,
		InputLimit: 4000,
		Logging: LoggingConfig{
			File:  logFile,
			Level: "info",
		},
		Relay: RelayConfig{
			Addr:    DefaultRelayAddr,
			Backend: BackendGemini,
			Model:   DefaultGeminiModel,
		},
	}
}

// DefaultPath is <user config dir>/chatbox/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "chatbox", "config.yaml")
}

// Load reads path over the defaults and applies the environment. A missing file at the
// default location is not an error; a missing explicit path is.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// Save writes cfg as YAML, creating the parent directory.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func (c *Config) ApplyEnv() {
	c.Endpoint = envOr("CHATBOX_ENDPOINT", c.Endpoint)
	c.ExportDir = envOr("CHATBOX_EXPORT_DIR", c.ExportDir)
	c.AltScreen = envOrBool("CHATBOX_ALT_SCREEN", c.AltScreen)
	c.InputLimit = envOrInt("CHATBOX_INPUT_LIMIT", c.InputLimit)
	if value, ok := os.LookupEnv("CHATBOX_LOG_FILE"); ok {
		c.Logging.File = strings.TrimSpace(value)
	}
	c.Logging.Level = envOr("CHATBOX_LOG_LEVEL", c.Logging.Level)
	c.Relay.Addr = envOr("CHATBOX_RELAY_ADDR", c.Relay.Addr)
	c.Relay.Backend = envOr("CHATBOX_RELAY_BACKEND", c.Relay.Backend)
	c.Relay.Model = envOr("CHATBOX_GEMINI_MODEL", c.Relay.Model)
	c.Relay.APIKey = envOr("GEMINI_API_KEY", c.Relay.APIKey)
}

// Validate normalizes the client settings.
func (c *Config) Validate() error {
	c.Endpoint = strings.TrimRight(strings.TrimSpace(c.Endpoint), "/")
	parsed, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", c.Endpoint)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", c.Endpoint)
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	case "":
		c.Logging.Level = "info"
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	if strings.TrimSpace(c.ExportDir) == "" {
		c.ExportDir = "."
	}
	c.InputLimit = clampInt(c.InputLimit, 64, 32000)
	return nil
}

// ValidateRelay normalizes the relay settings. The gemini backend needs an API key.
func (c *Config) ValidateRelay() error {
	c.Relay.Backend = normalizeBackend(c.Relay.Backend)
	if strings.TrimSpace(c.Relay.Addr) == "" {
		c.Relay.Addr = DefaultRelayAddr
	}
	if strings.TrimSpace(c.Relay.Model) == "" {
		c.Relay.Model = DefaultGeminiModel
	}
	if c.Relay.Backend == BackendGemini && strings.TrimSpace(c.Relay.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func normalizeBackend(backend string) string {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendEcho:
		return BackendEcho
	default:
		return BackendGemini
	}
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if value == "" {
		return fallback
	}
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
