package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fjelltone/themepatch/internal/checksum"
	"github.com/fjelltone/themepatch/internal/messages"
	"github.com/fjelltone/themepatch/patcherr"
)

// The simple backup is a single fixed-name copy next to the artifact,
// created once and never overwritten. It is a distinct retention policy
// from the namespaced store: the non-elevated patch path uses it so the
// pristine jar survives even if the cache root is wiped.
const (
	simpleSuffix         = ".jar.backup"
	simpleChecksumSuffix = ".jar.backup.sha256"
)

// SimplePath returns the simple backup path for target.
func SimplePath(target string) string {
	return replaceExt(target, simpleSuffix)
}

// SimpleChecksumPath returns the checksum sidecar path for the simple backup.
func SimpleChecksumPath(target string) string {
	return replaceExt(target, simpleChecksumSuffix)
}

// CreateSimple snapshots target to its fixed-name backup unless one already
// exists. The existing backup is presumed to hold the pristine bytes and is
// never overwritten.
func (s *Store) CreateSimple(target string) (string, error) {
	if _, err := s.sys.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf(messages.PatchTargetMissingFmt, target, patcherr.ErrTargetNotFound)
		}
		return "", fmt.Errorf(messages.PatchStatTargetFmt, target, err)
	}

	backupPath := SimplePath(target)
	if _, err := s.sys.Stat(backupPath); err == nil {
		return backupPath, nil
	}

	if err := s.sys.CopyFile(target, backupPath); err != nil {
		return "", fmt.Errorf(messages.BackupCopyFmt, target, backupPath, err)
	}
	data, err := s.sys.ReadFile(backupPath)
	if err != nil {
		return "", fmt.Errorf(messages.BackupReadChecksumFmt, backupPath, err)
	}
	sumPath := SimpleChecksumPath(target)
	if err := s.sys.WriteFile(sumPath, []byte(checksum.Bytes(data)), 0o644); err != nil {
		return "", fmt.Errorf(messages.BackupWriteChecksumFmt, sumPath, err)
	}
	return backupPath, nil
}

// RestoreSimple copies the fixed-name backup over target, verifying the
// checksum sidecar when it exists, and removes markerPath when present.
func (s *Store) RestoreSimple(target string, markerPath string) error {
	backupPath := SimplePath(target)
	if _, err := s.sys.Stat(backupPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf(messages.BackupNotFoundFmt, target, patcherr.ErrBackupNotFound)
		}
		return fmt.Errorf(messages.PatchStatTargetFmt, backupPath, err)
	}

	sumPath := SimpleChecksumPath(target)
	if expectedRaw, err := s.sys.ReadFile(sumPath); err == nil {
		data, err := s.sys.ReadFile(backupPath)
		if err != nil {
			return fmt.Errorf(messages.BackupReadChecksumFmt, backupPath, err)
		}
		if strings.TrimSpace(string(expectedRaw)) != checksum.Bytes(data) {
			return fmt.Errorf(messages.BackupChecksumGateFmt, backupPath, patcherr.ErrChecksumMismatch)
		}
	}

	if err := s.sys.CopyFile(backupPath, target); err != nil {
		return fmt.Errorf(messages.BackupRestoreCopyFmt, backupPath, target, err)
	}
	if markerPath != "" {
		if _, err := s.sys.Stat(markerPath); err == nil {
			if err := s.sys.Remove(markerPath); err != nil {
				return fmt.Errorf(messages.PatchRemoveMarkerFmt, markerPath, err)
			}
		}
	}
	return nil
}

// replaceExt swaps the final extension of path for suffix, so
// /opt/bitwig/bitwig.jar with ".jar.backup" becomes /opt/bitwig/bitwig.jar.backup.
func replaceExt(path string, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}
