package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pumped-fn/canopy/internal/logging"
)

type options struct {
	logLevel string
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	return logging.NewWriter(cmd.ErrOrStderr(), logging.ParseLevel(o.logLevel))
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "canopy",
		Short: "Canopy binds node receivers to capabilities exposed up a hierarchy",
		Long: `Canopy inspects binding configuration files and runs the bundled
scoreboard hierarchy to show how receivers follow their providers.`,
		SilenceUsage: true,
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newValidateCmd(),
		newFingerprintCmd(),
		newDemoCmd(opts),
		newTreeCmd(opts),
	)
	return cmd
}
