package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fjelltone/themepatch/internal/elevate"
	"github.com/fjelltone/themepatch/internal/messages"
)

func newStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   messages.StatusUse,
		Short: messages.StatusShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			jar, err := requireJar(flags)
			if err != nil {
				return err
			}
			mgr, err := newManager(cmd, flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printYesNo(out, messages.StatusPatchedFmt, mgr.IsPatched(jar))
			printYesNo(out, messages.StatusBackupFmt, mgr.HasBackup(jar))
			printYesNo(out, messages.StatusWritableFmt, elevate.CanWrite(jar))
			return nil
		},
	}
}

func printYesNo(out io.Writer, format string, value bool) {
	answer := messages.StatusNo
	if value {
		answer = messages.StatusYes
	}
	_, _ = fmt.Fprintf(out, format, answer)
}
