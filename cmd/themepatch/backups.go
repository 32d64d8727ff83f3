package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fjelltone/themepatch/internal/messages"
)

func newBackupsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   messages.BackupsUse,
		Short: messages.BackupsShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			jar, err := requireJar(flags)
			if err != nil {
				return err
			}
			mgr, err := newManager(cmd, flags)
			if err != nil {
				return err
			}
			records, err := mgr.Backups(jar)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				_, _ = fmt.Fprintln(out, messages.BackupsNone)
				return nil
			}
			for _, rec := range records {
				when := time.Unix(rec.Timestamp, 0).UTC().Format(time.RFC3339)
				line := rec.BackupPath
				if !rec.HasChecksum() {
					line += " " + messages.BackupsInvalid
				}
				_, _ = fmt.Fprintf(out, messages.BackupsLineFmt, when, line)
			}
			return nil
		},
	}
}
