package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	// BackendMemory keeps the ledger in process memory.
	BackendMemory = "memory"
	// BackendFile keeps the ledger in a JSON file.
	BackendFile = "file"
	// BackendRedis keeps the ledger in Redis.
	BackendRedis = "redis"
)

// Expiry accounting modes.
const (
	// ExpiryRelease unlocks the package amount on every transition into Expired.
	ExpiryRelease = "release"
	// ExpiryLegacy only unlocks when refund itself detects the expiry.
	ExpiryLegacy = "legacy"
)

// StoreConfig selects and configures the ledger store.
type StoreConfig struct {
	// Backend is one of memory, file or redis.
	Backend string `yaml:"backend"`
	// Path is the ledger file for the file backend.
	Path string `yaml:"path"`
	// RedisAddress is host:port of the Redis server for the redis backend.
	RedisAddress string `yaml:"redis_addr"`
	// RedisPrefix namespaces ledger keys in Redis.
	RedisPrefix string `yaml:"redis_prefix"`
}

// Config holds settings shared by the escrow server and CLI.
type Config struct {
	// ServerAddress is the gRPC address of the escrow service.
	ServerAddress string `yaml:"server_addr"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level written to the log.
	LogLevel string `yaml:"log_level"`
	// Custody is the holder identity of the pooled funds.
	Custody string `yaml:"custody"`
	// ExpiryAccounting is release or legacy.
	ExpiryAccounting string `yaml:"expiry_accounting"`
	// Store configures the ledger store used by the server.
	Store StoreConfig `yaml:"store"`
	// Credentials maps an identity to the bcrypt hash of its API key.
	Credentials map[string]string `yaml:"credentials,omitempty"`
	// Identity is the identity the CLI signs its calls as.
	Identity string `yaml:"identity,omitempty"`
	// APIKey is the CLI's API key for Identity.
	APIKey string `yaml:"api_key,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "aid-escrow-settings.yaml"

	// DefaultStateFilename is the default ledger file for the file backend.
	DefaultStateFilename = "aid-escrow-ledger.json"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultCustody is the holder identity of the pool when none is configured.
	DefaultCustody = "escrow-custody"

	// DefaultFilePermissions is the default file permission for written files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errUnknownBackend is returned for an unsupported store backend.
	errUnknownBackend = errors.New("unknown store backend")
	// errRedisAddressRequired is returned when the redis backend has no address.
	errRedisAddressRequired = errors.New("redis address must be provided")
	// errUnknownExpiryAccounting is returned for an unsupported accounting mode.
	errUnknownExpiryAccounting = errors.New("unknown expiry accounting mode")
	// errUnknownLogLevel is returned for an unsupported log level.
	errUnknownLogLevel = errors.New("unknown log level")
)

//nolint:gochecknoglobals // Read-only set of level names understood by the logger.
var logLevels = map[string]struct{}{
	"debug": {}, "info": {}, "warn": {}, "error": {}, "dpanic": {}, "panic": {}, "fatal": {},
}

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Credentials and keys live here, so keep the file private.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields, fills defaults and rejects unknown modes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.Custody == "" {
		cfg.Custody = DefaultCustody
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if _, ok := logLevels[cfg.LogLevel]; !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	switch cfg.ExpiryAccounting {
	case "":
		cfg.ExpiryAccounting = ExpiryRelease
	case ExpiryRelease, ExpiryLegacy:
	default:
		return fmt.Errorf("%w: %q", errUnknownExpiryAccounting, cfg.ExpiryAccounting)
	}

	return validateStore(&cfg.Store)
}

// validateStore fills store defaults and checks backend-specific fields.
func validateStore(store *StoreConfig) error {
	switch store.Backend {
	case "":
		store.Backend = BackendFile
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("%w: %q", errUnknownBackend, store.Backend)
	}

	if store.Backend == BackendFile && store.Path == "" {
		store.Path = DefaultStateFilename
	}

	if store.Backend == BackendRedis && store.RedisAddress == "" {
		return errRedisAddressRequired
	}

	return nil
}
