package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fjelltone/themepatch"
	"github.com/fjelltone/themepatch/internal/messages"
)

func newPatchCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   messages.PatchUse,
		Short: messages.PatchShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			jar, err := requireJar(flags)
			if err != nil {
				return err
			}
			mgr, err := newManager(cmd, flags)
			if err != nil {
				return err
			}
			if err := mgr.Patch(cmd.Context(), jar); err != nil {
				if errors.Is(err, themepatch.ErrAlreadyPatched) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.PatchAlreadyFmt, jar)
					return nil
				}
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.PatchDoneFmt, jar)
			return nil
		},
	}
}
