package config

import (
	"encoding/base64"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.BackendTimeout != 120*time.Second {
		t.Errorf("BackendTimeout = %v, want 120s", cfg.BackendTimeout)
	}
	if len(cfg.EncryptionKey) != 32 {
		t.Errorf("EncryptionKey length = %d, want 32", len(cfg.EncryptionKey))
	}
	if len(cfg.TokenScanDelays) != 3 || cfg.TokenScanDelays[1] != 2*time.Second {
		t.Errorf("TokenScanDelays = %v, want [0 2s 5s]", cfg.TokenScanDelays)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("BACKEND_URL", "http://localhost:4000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("IDLE_TIMEOUT", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Port)
	}
	if cfg.BackendURL != "http://localhost:4000" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://a.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.IdleTimeout != 5*time.Minute {
		t.Errorf("IdleTimeout = %v, want 5m", cfg.IdleTimeout)
	}
}

func TestLoadExplicitEncryptionKey(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	t.Setenv("ENCRYPTION_KEY", base64.StdEncoding.EncodeToString(key))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(cfg.EncryptionKey) != string(key) {
		t.Error("explicit ENCRYPTION_KEY not used")
	}

	t.Setenv("ENCRYPTION_KEY", "dG9vc2hvcnQ=")
	if _, err := Load(); err == nil {
		t.Error("expected error for short encryption key")
	}
}

func TestOriginAllowed(t *testing.T) {
	cfg := &Config{AllowedOrigins: []string{"https://solthron.com", "https://www.solthron.com"}}

	tests := []struct {
		origin string
		want   bool
	}{
		{"https://solthron.com", true},
		{"https://www.solthron.com", true},
		{"https://evil.solthron.com", false},
		{"http://solthron.com", false},
		{"https://solthron.com.evil.example", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := cfg.OriginAllowed(tt.origin); got != tt.want {
			t.Errorf("OriginAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}
