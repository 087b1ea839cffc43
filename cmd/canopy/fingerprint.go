package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pumped-fn/canopy/pkg/config"
)

func newFingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint FILE",
		Short: "Print the plan cache fingerprint of every configured node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load(args[0])
			if err != nil {
				return err
			}
			for _, name := range f.Names() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", f.For(name).Fingerprint(), name)
			}
			return nil
		},
	}
}
