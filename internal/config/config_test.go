package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CHATBOX_ENDPOINT", "CHATBOX_EXPORT_DIR", "CHATBOX_ALT_SCREEN", "CHATBOX_INPUT_LIMIT",
		"CHATBOX_LOG_LEVEL", "CHATBOX_RELAY_ADDR", "CHATBOX_RELAY_BACKEND", "CHATBOX_GEMINI_MODEL",
		"GEMINI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Endpoint != DefaultEndpoint {
		t.Errorf("expected Endpoint=%s, got %s", DefaultEndpoint, cfg.Endpoint)
	}
	if cfg.Relay.Model != "gemini-2.0-flash" {
		t.Errorf("expected gemini-2.0-flash model, got %s", cfg.Relay.Model)
	}
	if !cfg.AltScreen {
		t.Errorf("expected alt screen on by default")
	}
	if cfg.InputLimit != 4000 {
		t.Errorf("expected InputLimit=4000, got %d", cfg.InputLimit)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Endpoint = "http://chat.internal:8080"
	cfg.Relay.Backend = BackendEcho
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Endpoint != "http://chat.internal:8080" {
		t.Errorf("expected saved endpoint, got %s", loaded.Endpoint)
	}
	if loaded.Relay.Backend != BackendEcho {
		t.Errorf("expected echo backend, got %s", loaded.Relay.Backend)
	}
}

func TestConfig_PartialYAMLKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("export_dir: /tmp/exports\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ExportDir != "/tmp/exports" {
		t.Errorf("expected export dir from file, got %s", cfg.ExportDir)
	}
	if cfg.Endpoint != DefaultEndpoint {
		t.Errorf("expected default endpoint, got %s", cfg.Endpoint)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHATBOX_ENDPOINT", "https://example.test/")
	t.Setenv("CHATBOX_ALT_SCREEN", "off")
	t.Setenv("CHATBOX_INPUT_LIMIT", "512")
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected explicit missing file to fail")
	}

	cfg = Default()
	cfg.ApplyEnv()
	if cfg.Endpoint != "https://example.test/" {
		t.Errorf("expected env endpoint, got %s", cfg.Endpoint)
	}
	if cfg.AltScreen {
		t.Errorf("expected alt screen disabled by env")
	}
	if cfg.InputLimit != 512 {
		t.Errorf("expected InputLimit=512, got %d", cfg.InputLimit)
	}
	if cfg.Relay.APIKey != "env-key" {
		t.Errorf("expected API key from env, got %s", cfg.Relay.APIKey)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Default()
	cfg.Endpoint = "http://127.0.0.1:5000///"
	cfg.Logging.Level = " DEBUG "
	cfg.InputLimit = 1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.Endpoint != "http://127.0.0.1:5000" {
		t.Errorf("expected trimmed endpoint, got %s", cfg.Endpoint)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected normalized level, got %s", cfg.Logging.Level)
	}
	if cfg.InputLimit != 64 {
		t.Errorf("expected clamped input limit, got %d", cfg.InputLimit)
	}

	for _, bad := range []string{"ftp://host", "localhost:5000", "http://"} {
		cfg := Default()
		cfg.Endpoint = bad
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestConfig_ValidateRelay(t *testing.T) {
	cfg := Default()
	cfg.Relay.APIKey = ""
	if err := cfg.ValidateRelay(); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}

	cfg.Relay.Backend = " ECHO "
	cfg.Relay.Model = ""
	if err := cfg.ValidateRelay(); err != nil {
		t.Fatalf("echo backend should not need a key: %v", err)
	}
	if cfg.Relay.Backend != BackendEcho || cfg.Relay.Model != DefaultGeminiModel {
		t.Errorf("unexpected relay config: %+v", cfg.Relay)
	}
}
