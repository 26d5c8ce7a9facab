package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/aid-escrow/internal/config"
	"github.com/oshokin/aid-escrow/internal/service/client"
	"github.com/oshokin/aid-escrow/internal/service/common"
	"github.com/oshokin/aid-escrow/internal/version"
)

var (
	// connectOptions are filled from the persistent flags.
	connectOptions client.Options

	// rootCmd represents the base command of the escrow client.
	rootCmd = &cobra.Command{
		Use:   "escrow-cli",
		Short: "Operate the aid escrow service.",
		Long: `Calls the aid escrow server: fund the pool, create, claim, disburse, revoke
and refund aid packages, and inspect packages and balances.

Every call is signed as one identity, taken from --identity, the identity
setting or the local user name, with the API key from --key or the api_key
setting. The server address comes from --server or the settings file.`,
		SilenceUsage: true,
	}
)

// Execute runs the escrow-cli CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withClient connects to the server, runs fn and closes the connection.
func withClient(fn func(ctx context.Context, c *common.Client) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	c, err := client.Connect(ctx, &connectOptions)
	if err != nil {
		return err
	}

	defer func() {
		_ = c.Close()
	}()

	return fn(ctx, c)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&connectOptions.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVarP(&connectOptions.ServerAddress, "server", "s", "", "escrow server address, overrides the settings file")
	flags.StringVarP(&connectOptions.Identity, "identity", "i", "", "identity to sign calls as")
	flags.StringVarP(&connectOptions.APIKey, "key", "k", "", "API key of the identity")
}
