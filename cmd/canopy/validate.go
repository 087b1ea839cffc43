package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pumped-fn/canopy/pkg/config"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a binding configuration file",
		Long:  `Loads a YAML or JSON binding configuration file and reports malformed records.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load(args[0])
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid (%d nodes) ✅\n", args[0], len(f.Nodes))
			return nil
		},
	}
}
