package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var allKeys = append(append([]string{
	"TOKEN_URL",
	"OAUTH_SCOPE",
	"TRANSPORT_P12_PATH",
	"POLL_MAX_ATTEMPTS",
	"POLL_INTERVAL",
	"HTTP_TIMEOUT",
	"POLL_MAX_INTERVAL",
}, RequiredKeys...), OptionalKeys...)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if cfg.Scope != "accounts payments" {
		t.Errorf("expected default scope, got %q", cfg.Scope)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.PollMaxAttempts != 10 {
		t.Errorf("expected 10 poll attempts, got %d", cfg.PollMaxAttempts)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("expected 2s poll interval, got %s", cfg.PollInterval)
	}
	if cfg.PollMultiplier != 1 {
		t.Errorf("expected multiplier 1, got %v", cfg.PollMultiplier)
	}
	if len(cfg.MissingRequired()) != len(RequiredKeys) {
		t.Errorf("expected every required key missing, got %v", cfg.MissingRequired())
	}
}

func TestLoadEnvFileAndOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	content := "CLIENT_ID=file-client\nCLIENT_SECRET=file-secret\nAPI_BASE_URL=https://sandbox.example.com/open-finance/\nPOLL_INTERVAL=500ms\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("CLIENT_ID", "env-client")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if cfg.ClientID != "env-client" {
		t.Errorf("expected environment to win, got %q", cfg.ClientID)
	}
	if cfg.ClientSecret != "file-secret" {
		t.Errorf("expected secret from env file, got %q", cfg.ClientSecret)
	}
	if cfg.BaseURL != "https://sandbox.example.com/open-finance" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.BaseURL)
	}
	if cfg.TokenURL != "https://sandbox.example.com/open-finance/oauth/token" {
		t.Errorf("expected derived token url, got %q", cfg.TokenURL)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("expected 500ms poll interval, got %s", cfg.PollInterval)
	}
}

func TestMissingRequiredAcceptsP12Bundle(t *testing.T) {
	cfg := Config{
		ClientID:         "id",
		ClientSecret:     "secret",
		BaseURL:          "https://sandbox.example.com",
		TransportP12Path: "certs/transport.p12",
	}

	if missing := cfg.MissingRequired(); len(missing) != 0 {
		t.Fatalf("expected no missing keys, got %v", missing)
	}

	cfg.TransportP12Path = ""
	missing := cfg.MissingRequired()
	if len(missing) != 2 || missing[0] != "TRANSPORT_CERT_PATH" || missing[1] != "TRANSPORT_KEY_PATH" {
		t.Fatalf("expected certificate keys missing, got %v", missing)
	}
}

func TestLoadReadsBareNumbersAsSeconds(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_TIMEOUT", "30")
	t.Setenv("POLL_INTERVAL", "2")
	t.Setenv("POLL_MAX_INTERVAL", "1m")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("expected 2s poll interval, got %s", cfg.PollInterval)
	}
	if cfg.PollMaxInterval != time.Minute {
		t.Errorf("expected 1m max interval, got %s", cfg.PollMaxInterval)
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_TIMEOUT", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err == nil {
		t.Fatal("expected error for invalid HTTP_TIMEOUT")
	}
	if !strings.Contains(err.Error(), "HTTP_TIMEOUT") {
		t.Fatalf("expected error to name HTTP_TIMEOUT, got %v", err)
	}
}
