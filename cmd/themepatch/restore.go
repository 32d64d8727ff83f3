package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fjelltone/themepatch/internal/messages"
)

func newRestoreCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   messages.RestoreUse,
		Short: messages.RestoreShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			jar, err := requireJar(flags)
			if err != nil {
				return err
			}
			mgr, err := newManager(cmd, flags)
			if err != nil {
				return err
			}
			if err := mgr.Restore(cmd.Context(), jar); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.RestoreDoneFmt, jar)
			return nil
		},
	}
}
