// Package config handles application configuration.
package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/solthron/assist-api/internal/constants"
	"github.com/solthron/assist-api/internal/crypto"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    int
	BaseURL string

	// Database
	DatabaseURL string

	// Upstream credits/AI backend
	BackendURL     string
	BackendTimeout time.Duration

	// Token bridge: origins allowed to post captured tokens, and the
	// startup retry delays for the initial token scan.
	AllowedOrigins  []string
	TokenScanDelays []time.Duration

	// Secrets: SigningSecret signs nothing itself but seeds the token
	// encryption key when ENCRYPTION_KEY is not set explicitly.
	SigningSecret string
	EncryptionKey []byte // 32 bytes, AES-256-GCM

	// CORS
	CORSOrigins []string

	// Request handling
	RequestTimeout time.Duration

	// Idle shutdown (for scale-to-zero hosting); 0 = disabled
	IdleTimeout time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL: getEnv("DATABASE_URL", "file:solthron.db?_journal=WAL&_timeout=5000"),

		BackendURL:     getEnv("BACKEND_URL", "https://api.solthron.com/v1"),
		BackendTimeout: getEnvDuration("BACKEND_TIMEOUT", constants.BackendRequestTimeout),

		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{
			"https://solthron.com",
			"https://www.solthron.com",
		}),

		SigningSecret: getEnv("SIGNING_SECRET", ""),

		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),

		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		IdleTimeout:    getEnvDuration("IDLE_TIMEOUT", 0),
	}

	// Startup token scan retry schedule, mirroring the extension's
	// initial, 2s and 5s scans.
	cfg.TokenScanDelays = []time.Duration{0, 2 * time.Second, 5 * time.Second}

	if cfg.SigningSecret == "" {
		cfg.SigningSecret = generateRandomSecret(64)
	}

	// Encryption key: explicit base64 key wins, otherwise derive from the
	// signing secret.
	encKeyStr := getEnv("ENCRYPTION_KEY", "")
	if encKeyStr != "" {
		decoded, err := base64.StdEncoding.DecodeString(encKeyStr)
		if err != nil || len(decoded) != 32 {
			return nil, fmt.Errorf("ENCRYPTION_KEY must be a base64-encoded 32-byte key")
		}
		cfg.EncryptionKey = decoded
	} else {
		cfg.EncryptionKey = crypto.DeriveKey(cfg.SigningSecret)
	}

	return cfg, nil
}

// OriginAllowed reports whether an Origin header value is in the token
// bridge allow-list. The comparison is exact: scheme and host must match.
func (c *Config) OriginAllowed(origin string) bool {
	for _, allowed := range c.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func generateRandomSecret(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "solthron-secret-change-me-" + base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%d", time.Now().UnixNano())))
	}
	return base64.URLEncoding.EncodeToString(bytes)
}
