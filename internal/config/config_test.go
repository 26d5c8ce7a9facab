package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, defaults and mode validation.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	// Missing socket.
	require.Error(t, Validate(new(Config)))

	// Bad socket.
	require.Error(t, Validate(&Config{ServerAddress: "bad:address"}))

	// Defaults.
	cfg := &Config{ServerAddress: "127.0.0.1:0"}
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, DefaultCustody, cfg.Custody)
	require.Equal(t, DefaultLogLevel, cfg.LogLevel)
	require.Equal(t, ExpiryRelease, cfg.ExpiryAccounting)
	require.Equal(t, BackendFile, cfg.Store.Backend)
	require.Equal(t, DefaultStateFilename, cfg.Store.Path)

	// Unknown modes.
	require.Error(t, Validate(&Config{ServerAddress: "127.0.0.1:0", ExpiryAccounting: "lazy"}))
	require.Error(t, Validate(&Config{ServerAddress: "127.0.0.1:0", LogLevel: "loud"}))
	require.Error(t, Validate(&Config{ServerAddress: "127.0.0.1:0", Store: StoreConfig{Backend: "sqlite"}}))

	// Redis needs an address.
	require.Error(t, Validate(&Config{ServerAddress: "127.0.0.1:0", Store: StoreConfig{Backend: BackendRedis}}))
	require.NoError(t, Validate(&Config{
		ServerAddress: "127.0.0.1:0",
		Store:         StoreConfig{Backend: BackendRedis, RedisAddress: "127.0.0.1:6379"},
	}))
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		ServerAddress:    "127.0.0.1:50051",
		ExpiryAccounting: ExpiryLegacy,
		Store:            StoreConfig{Backend: BackendMemory},
		Credentials:      map[string]string{"admin": "$2a$04$hash"},
		Identity:         "admin",
		APIKey:           "secret",
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ServerAddress, loaded.ServerAddress)
	require.Equal(t, ExpiryLegacy, loaded.ExpiryAccounting)
	require.Equal(t, BackendMemory, loaded.Store.Backend)
	require.Equal(t, cfg.Credentials, loaded.Credentials)
	require.Equal(t, "secret", loaded.APIKey)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())

	require.Error(t, Save(path, nil))
}
