package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pumped-fn/canopy"
	"github.com/pumped-fn/canopy/extensions"
	"github.com/pumped-fn/canopy/internal/demo"
)

func newTreeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Draw the scoreboard hierarchy with node states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := demo.NewScoreboard(io.Discard)
			debug := extensions.NewTreeDebugExtension(s.Tree, opts.logger(cmd).Handler())
			engine, err := canopy.NewEngine(
				canopy.WithTree(s.Tree),
				canopy.WithIntrospector(demo.Catalog()),
				canopy.WithLogger(opts.logger(cmd)),
				canopy.WithExtension(debug),
			)
			if err != nil {
				return err
			}
			defer engine.Dispose()

			if _, err := engine.Activate(s.Main, nil); err != nil {
				return err
			}
			ticker := engine.Controller(s.Ticker, demo.TickerConfig)
			if err := ticker.Create(); err != nil {
				return err
			}
			side := engine.Controller(s.Side, nil)
			if err := side.Create(); err != nil {
				return err
			}
			if err := side.Enable(); err != nil {
				return err
			}
			if err := side.Disable(); err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), debug.Render(engine, nil))
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}
