package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/mytravellog/internal/mapview"
)

// allConfigKeys lists every env var that Load() and LoadDevStore() read.
var allConfigKeys = []string{
	"MYTRAVELLOG_STORE_URL",
	"MYTRAVELLOG_STORE_TIMEOUT",
	"MYTRAVELLOG_LISTEN_ADDR",
	"MYTRAVELLOG_DB_PATH",
	"MYTRAVELLOG_TILE_URL",
	"MYTRAVELLOG_SECRET_KEY",
	"DEVSTORE_ADDR",
	"DEVSTORE_ADMIN_USERNAME",
	"DEVSTORE_ADMIN_PASSWORD",
	"DEVSTORE_JWT_SECRET",
	"DEVSTORE_UPLOAD_DIR",
}

// isolateConfigEnv saves and unsets all config env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("MYTRAVELLOG_STORE_URL", "https://travel.example.com/api")
	t.Setenv("MYTRAVELLOG_STORE_TIMEOUT", "3s")
	t.Setenv("MYTRAVELLOG_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("MYTRAVELLOG_DB_PATH", "/tmp/test.db")
	t.Setenv("MYTRAVELLOG_TILE_URL", "https://{s}.tiles.example.com/{z}/{x}/{y}.png")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "https://travel.example.com/api", cfg.StoreURL)
	assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "https://{s}.tiles.example.com/{z}/{x}/{y}.png", cfg.TileURL)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.StoreURL)
	assert.Equal(t, 10*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "127.0.0.1:8090", cfg.ListenAddr)
	assert.Equal(t, "mytravellog.db", cfg.DBPath)
	assert.Equal(t, mapview.DefaultTileURL, cfg.TileURL)
	assert.Nil(t, cfg.SecretKey)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "not a duration", value: "soon"},
		{name: "zero", value: "0s"},
		{name: "negative", value: "-5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv("MYTRAVELLOG_STORE_TIMEOUT", tt.value)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "MYTRAVELLOG_STORE_TIMEOUT")
		})
	}
}

func TestLoad_SecretKey_Valid(t *testing.T) {
	isolateConfigEnv(t)
	// 64 hex chars = 32 bytes
	t.Setenv("MYTRAVELLOG_SECRET_KEY", "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Len(t, cfg.SecretKey, 32)
	assert.Equal(t, byte(0x01), cfg.SecretKey[0])
}

func TestLoad_SecretKey_TooShort(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("MYTRAVELLOG_SECRET_KEY", "deadbeef")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MYTRAVELLOG_SECRET_KEY")
}

func TestLoad_SecretKey_NotHex(t *testing.T) {
	isolateConfigEnv(t)
	// 64 chars but not valid hex
	t.Setenv("MYTRAVELLOG_SECRET_KEY", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MYTRAVELLOG_SECRET_KEY")
}

func TestLoadDevStore_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("DEVSTORE_ADMIN_PASSWORD", "hunter2")
	t.Setenv("DEVSTORE_JWT_SECRET", "signing-secret")
	t.Setenv("DEVSTORE_UPLOAD_DIR", "/var/lib/uploads")

	cfg, err := LoadDevStore()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, "hunter2", cfg.AdminPassword)
	assert.Equal(t, "signing-secret", cfg.JWTSecret)
	assert.Equal(t, "/var/lib/uploads", cfg.UploadDir)
}

func TestLoadDevStore_MissingRequired(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := LoadDevStore()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEVSTORE_ADMIN_PASSWORD")
	assert.Contains(t, err.Error(), "DEVSTORE_JWT_SECRET")
}
