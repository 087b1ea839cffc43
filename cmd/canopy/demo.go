package main

import (
	"github.com/spf13/cobra"

	"github.com/pumped-fn/canopy"
	"github.com/pumped-fn/canopy/extensions"
	"github.com/pumped-fn/canopy/internal/demo"
)

func newDemoCmd(opts *options) *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the scoreboard scenario",
		Long: `Builds a game with a main display, a side display and a ticker, then
disables and re-enables the main display while the score changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd)
			engineOpts := []canopy.EngineOption{canopy.WithLogger(logger)}
			if trace {
				engineOpts = append(engineOpts, canopy.WithExtension(extensions.NewLoggingExtension(logger)))
			}
			return demo.Run(cmd.OutOrStdout(), engineOpts...)
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "Log every lifecycle operation")
	return cmd
}
