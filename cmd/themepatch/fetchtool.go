package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fjelltone/themepatch/internal/messages"
)

func newFetchToolCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   messages.FetchToolUse,
		Short: messages.FetchToolShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager(cmd, flags)
			if err != nil {
				return err
			}
			path, err := mgr.EnsureTool(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.FetchToolDoneFmt, path)
			return nil
		},
	}
}
