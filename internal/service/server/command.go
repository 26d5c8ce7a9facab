package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"google.golang.org/grpc"

	api "github.com/oshokin/aid-escrow/internal/api/grpc/escrow"
	"github.com/oshokin/aid-escrow/internal/auth"
	"github.com/oshokin/aid-escrow/internal/clock"
	"github.com/oshokin/aid-escrow/internal/config"
	"github.com/oshokin/aid-escrow/internal/contract"
	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
	"github.com/oshokin/aid-escrow/internal/events"
	"github.com/oshokin/aid-escrow/internal/logger"
	"github.com/oshokin/aid-escrow/internal/repository/ledger"
	"github.com/oshokin/aid-escrow/internal/service/common"
	"github.com/oshokin/aid-escrow/internal/version"
)

// Options controls the escrow-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StateFile overrides the ledger file of the file backend.
	StateFile string
	// LogLevel overrides the configured log level.
	LogLevel string
	// SingleInstance refuses to start while another escrow-server process
	// runs over a file store.
	SingleInstance bool
}

var (
	// ErrNoServerAddress indicates missing server configuration.
	ErrNoServerAddress = errors.New("no server address configured")
	// ErrAlreadyRunning indicates another server process owns the ledger file.
	ErrAlreadyRunning = errors.New("another escrow server is already running")

	// errUnsupportedBackend is returned for a store backend Run cannot open.
	errUnsupportedBackend = errors.New("unsupported store backend")
	// errUnknownExpiryAccounting is returned for an unknown accounting mode.
	errUnknownExpiryAccounting = errors.New("unknown expiry accounting")
)

// Run starts the gRPC server and blocks until context is canceled or server stops.
// Loads configuration first, then determines listen address from config or override.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "escrow-server")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	applyOverrides(settings, opts)

	if err = logger.Configure(settings.LogLevel); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	if opts.SingleInstance && settings.Store.Backend == config.BackendFile {
		running, checkErr := common.OtherInstanceRunning(filepath.Base(os.Args[0]))
		if checkErr != nil {
			return fmt.Errorf("check running instances: %w", checkErr)
		}

		if running {
			return ErrAlreadyRunning
		}
	}

	store, closeStore, err := openStore(ctx, &settings.Store)
	if err != nil {
		return fmt.Errorf("open ledger store: %w", err)
	}

	defer closeStore()

	credentials, err := auth.NewCredentials(settings.Credentials)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}

	mode, err := expiryAccounting(settings.ExpiryAccounting)
	if err != nil {
		return err
	}

	svc := newService(params{
		store:            store,
		clock:            clock.System{},
		auth:             auth.Signed{},
		sink:             events.Log{},
		custody:          domain.Identity(settings.Custody),
		expiryAccounting: mode,
	})

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(api.AuthInterceptor(credentials)))
	api.RegisterEscrowServer(grpcServer, api.NewServer(svc))

	logger.InfoKV(ctx, "Escrow server listening",
		"listen_address", listenAddress,
		"store", settings.Store.Backend,
		"custody", settings.Custody,
		"expiry_accounting", settings.ExpiryAccounting,
		"identities", credentials.Len(),
		"version", version.Short(),
	)

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// applyOverrides applies command line options on top of the settings file.
func applyOverrides(settings *config.Config, opts *Options) {
	if opts.StateFile != "" {
		settings.Store.Path = opts.StateFile
	}

	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}
}

// openStore opens the configured ledger store and returns a function closing it.
func openStore(ctx context.Context, settings *config.StoreConfig) (ledger.Store, func(), error) {
	switch settings.Backend {
	case config.BackendMemory:
		logger.WarnKV(ctx, "Ledger kept in memory, state is lost on exit")

		return ledger.NewMemoryStore(), func() {}, nil
	case config.BackendFile:
		store, err := ledger.OpenFileStore(settings.Path)
		if err != nil {
			return nil, nil, err
		}

		logger.InfoKV(ctx, "Ledger file opened", "path", settings.Path)

		return store, func() {}, nil
	case config.BackendRedis:
		prefix := settings.RedisPrefix
		if prefix == "" {
			prefix = ledger.DefaultRedisPrefix
		}

		store, err := ledger.DialRedisStore(ctx, settings.RedisAddress, prefix)
		if err != nil {
			return nil, nil, err
		}

		logger.InfoKV(ctx, "Ledger connected to Redis", "address", settings.RedisAddress, "prefix", prefix)

		return store, func() {
			if closeErr := store.Close(); closeErr != nil {
				logger.ErrorKV(ctx, "Failed to close Redis ledger", "error", closeErr)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", errUnsupportedBackend, settings.Backend)
	}
}

// expiryAccounting converts the configured mode name.
func expiryAccounting(name string) (contract.ExpiryAccounting, error) {
	switch name {
	case config.ExpiryRelease, "":
		return contract.ReleaseOnExpiry, nil
	case config.ExpiryLegacy:
		return contract.LegacyExpiry, nil
	default:
		return 0, fmt.Errorf("%w: %q", errUnknownExpiryAccounting, name)
	}
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Bind on all interfaces.
	return ":" + port, nil
}
