package client

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/oshokin/aid-escrow/internal/config"
	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
	"github.com/oshokin/aid-escrow/internal/logger"
	"github.com/oshokin/aid-escrow/internal/service/common"
)

// Options configures how escrow-cli reaches the server.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Identity overrides the identity calls are signed as.
	Identity string
	// APIKey overrides the API key of Identity.
	APIKey string
}

// Connect loads settings and dials the escrow server, signing calls as the
// resolved identity. The caller closes the returned client.
func Connect(ctx context.Context, opts *Options) (*common.Client, error) {
	ctx = logger.WithName(ctx, "escrow-cli")

	cfg, err := loadSettings(opts)
	if err != nil {
		return nil, err
	}

	identity, err := resolveIdentity(opts, cfg)
	if err != nil {
		return nil, err
	}

	key := cfg.APIKey
	if opts.APIKey != "" {
		key = opts.APIKey
	}

	client, err := common.Dial(ctx, cfg.ServerAddress,
		common.WithCallTimeout(cfg.Timeout),
		common.WithCredentials(identity, key),
	)
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Connected to escrow server", "server_address", cfg.ServerAddress, "identity", identity)

	return client, nil
}

// loadSettings reads the settings file. Without one, a server address given on
// the command line is enough.
func loadSettings(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)

	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && opts.ServerAddress != "":
		cfg = new(config.Config)
	default:
		return nil, err
	}

	if opts.ServerAddress != "" {
		cfg.ServerAddress = opts.ServerAddress
	}

	if err = config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	return cfg, nil
}

// resolveIdentity picks the identity from flags, then settings, then the local user.
func resolveIdentity(opts *Options, cfg *config.Config) (domain.Identity, error) {
	if opts.Identity != "" {
		return domain.Identity(opts.Identity), nil
	}

	if cfg.Identity != "" {
		return domain.Identity(cfg.Identity), nil
	}

	return common.DetectIdentity()
}
