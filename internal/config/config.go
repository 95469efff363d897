// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ericfisherdev/mytravellog/internal/mapview"
)

// Config holds the client configuration loaded from environment variables.
type Config struct {
	StoreURL     string
	StoreTimeout time.Duration
	ListenAddr   string
	DBPath       string
	TileURL      string

	// SecretKey is the 32-byte AES-256 key used to seal the session token at
	// rest. Nil when MYTRAVELLOG_SECRET_KEY is unset.
	SecretKey []byte
}

// DevStoreConfig holds the configuration of the development store.
type DevStoreConfig struct {
	ListenAddr    string
	AdminUsername string
	AdminPassword string
	JWTSecret     string
	UploadDir     string
}

// Load reads configuration from environment variables and returns a validated Config.
// All variables are optional: MYTRAVELLOG_STORE_URL (http://localhost:8080),
// MYTRAVELLOG_STORE_TIMEOUT (10s), MYTRAVELLOG_LISTEN_ADDR (127.0.0.1:8090),
// MYTRAVELLOG_DB_PATH (mytravellog.db), MYTRAVELLOG_TILE_URL (OpenStreetMap) and
// MYTRAVELLOG_SECRET_KEY (64 hex characters).
func Load() (*Config, error) {
	cfg := &Config{
		StoreURL:     envOr("MYTRAVELLOG_STORE_URL", "http://localhost:8080"),
		StoreTimeout: 10 * time.Second,
		ListenAddr:   envOr("MYTRAVELLOG_LISTEN_ADDR", "127.0.0.1:8090"),
		DBPath:       envOr("MYTRAVELLOG_DB_PATH", "mytravellog.db"),
		TileURL:      envOr("MYTRAVELLOG_TILE_URL", mapview.DefaultTileURL),
	}

	if v, ok := os.LookupEnv("MYTRAVELLOG_STORE_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("MYTRAVELLOG_STORE_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("MYTRAVELLOG_STORE_TIMEOUT must be positive, got %s", parsed)
		}
		cfg.StoreTimeout = parsed
	}

	if v, ok := os.LookupEnv("MYTRAVELLOG_SECRET_KEY"); ok && v != "" {
		key, err := parseSecretKey(v)
		if err != nil {
			return nil, fmt.Errorf("MYTRAVELLOG_SECRET_KEY: %w", err)
		}
		cfg.SecretKey = key
	}

	return cfg, nil
}

// LoadDevStore reads the development store configuration.
// Required: DEVSTORE_ADMIN_PASSWORD, DEVSTORE_JWT_SECRET.
// Optional: DEVSTORE_ADDR (127.0.0.1:8080), DEVSTORE_ADMIN_USERNAME (admin),
// DEVSTORE_UPLOAD_DIR (uploads).
func LoadDevStore() (*DevStoreConfig, error) {
	cfg := &DevStoreConfig{
		ListenAddr:    envOr("DEVSTORE_ADDR", "127.0.0.1:8080"),
		AdminUsername: envOr("DEVSTORE_ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("DEVSTORE_ADMIN_PASSWORD"),
		JWTSecret:     os.Getenv("DEVSTORE_JWT_SECRET"),
		UploadDir:     envOr("DEVSTORE_UPLOAD_DIR", "uploads"),
	}

	var missing []error
	if cfg.AdminPassword == "" {
		missing = append(missing, errors.New("DEVSTORE_ADMIN_PASSWORD is required"))
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, errors.New("DEVSTORE_JWT_SECRET is required"))
	}
	if err := errors.Join(missing...); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseSecretKey(v string) ([]byte, error) {
	if len(v) != 64 {
		return nil, fmt.Errorf("expected 64 hex characters, got %d", len(v))
	}
	key, err := hex.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return key, nil
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
