package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/aid-escrow/internal/config"
	"github.com/oshokin/aid-escrow/internal/service/server"
	"github.com/oshokin/aid-escrow/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile overrides the ledger file of the file backend.
	stateFile string
	// logLevel overrides the configured log level.
	logLevel string

	// rootCmd represents the base command for running the gRPC server.
	rootCmd = &cobra.Command{
		Use:   "escrow-server [listen-address]",
		Short: "Run the aid escrow gRPC server.",
		Long: `Starts the gRPC escrow server that holds a pooled fund and pays it out as aid packages.

The server listens on the specified address or uses settings from configuration file.
Only the port from server_addr config is used for listening (e.g., :7001).
Listen address can be provided as argument to override config (e.g., :9090, 0.0.0.0:7001).
The ledger is kept in memory, in a JSON file or in Redis, as set by the store section.
Only one server may run over a ledger file at a time.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:     configPath,
				ListenAddress:  listenAddress,
				StateFile:      stateFile,
				LogLevel:       logLevel,
				SingleInstance: true,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the escrow-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&stateFile, "state-file", "s", "", "ledger file of the file store, overrides the configured path")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "minimum log level (debug, info, warn, error)")
}
