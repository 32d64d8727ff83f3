package patch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fjelltone/themepatch/internal/backup"
	"github.com/fjelltone/themepatch/internal/messages"
	"github.com/fjelltone/themepatch/patcherr"
)

// Restore copies the latest verified backup over target and removes the
// marker. The namespaced store is tried first, then the fixed-name copy
// beside the jar. An un-elevated attempt runs first; elevation is tried
// only when the failure is permission-class, since a missing backup or a
// checksum mismatch would fail identically as root.
func (e *Executor) Restore(ctx context.Context, target string) error {
	_, _ = fmt.Fprintf(e.LogOutput, messages.RestoreEventStartFmt, target)

	// A jar with no marker and no backup was never patched by us; a lost
	// marker alone does not block the restore when backup bytes exist.
	if !IsPatched(target) && !e.Backups.Has(target) {
		return fmt.Errorf(messages.RestoreNotPatchedFmt, target, patcherr.ErrNotPatched)
	}

	markerPath := MarkerPath(target)
	err := e.Backups.Restore(target, markerPath)
	if errors.Is(err, patcherr.ErrBackupNotFound) {
		// The namespaced store can be wiped (cleared cache) while the
		// fixed-name copy still sits next to the jar.
		_, _ = fmt.Fprintf(e.LogOutput, messages.RestoreEventSimpleFmt, backup.SimplePath(target))
		err = e.Backups.RestoreSimple(target, markerPath)
	}
	if err == nil {
		_, _ = fmt.Fprintf(e.LogOutput, messages.RestoreEventDoneFmt, target)
		return nil
	}
	if !errors.Is(err, fs.ErrPermission) {
		return err
	}

	if !e.Platform.HasMechanism() {
		return fmt.Errorf(messages.ElevateNoMechanismFmt, patcherr.ErrPermissionDenied)
	}
	_, _ = fmt.Fprintf(e.LogOutput, messages.RestoreEventElevatedFmt, e.Platform.MechanismName())

	backupPath, sumPath, err := e.restoreSource(target)
	if err != nil {
		return err
	}

	// The elevated script re-runs the same verify -> copy -> unmark
	// sequence inside the privileged context. Verification happens there
	// too: the checksum gate must hold wherever the copy happens.
	script := e.Platform.NewScript()
	if sumPath != "" {
		if err := script.VerifyChecksum(backupPath, sumPath); err != nil {
			return err
		}
	}
	if err := script.Copy(backupPath, target); err != nil {
		return err
	}
	if err := script.Remove(markerPath); err != nil {
		return err
	}

	if _, err := e.Platform.RunElevated(ctx, script); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(e.LogOutput, messages.RestoreEventDoneFmt, target)
	return nil
}

// restoreSource picks the newest namespaced record, falling back to the
// fixed-name copy when the store has none. The simple backup's sidecar is
// optional; an empty sumPath means no checksum gate.
func (e *Executor) restoreSource(target string) (backupPath string, sumPath string, err error) {
	rec, err := e.Backups.FindLatest(target)
	if err == nil {
		return rec.BackupPath, rec.ChecksumPath, nil
	}
	if !errors.Is(err, patcherr.ErrBackupNotFound) {
		return "", "", err
	}
	simple := backup.SimplePath(target)
	if _, statErr := os.Stat(simple); statErr != nil {
		return "", "", err
	}
	sum := backup.SimpleChecksumPath(target)
	if _, statErr := os.Stat(sum); statErr != nil {
		sum = ""
	}
	return simple, sum, nil
}

// HasBackup reports whether any restorable backup exists for target.
func (e *Executor) HasBackup(target string) bool {
	return e.Backups.Has(target)
}
