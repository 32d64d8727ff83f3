// Package backup owns every backup the subsystem creates: the namespaced
// multi-generation store under the cache root and the simple fixed-name
// backup that lives next to the artifact.
//
// Executors read and write backups only through this package.
package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fjelltone/themepatch/internal/checksum"
	"github.com/fjelltone/themepatch/internal/messages"
	"github.com/fjelltone/themepatch/patcherr"
)

const (
	backupExt      = ".jar"
	checksumSuffix = ".jar.sha256"

	// maxRetained bounds the namespaced store per target. Creation prunes
	// the oldest records past this count.
	maxRetained = 20
)

// Record identifies one namespaced backup generation.
type Record struct {
	Timestamp    int64
	BackupPath   string
	ChecksumPath string
}

// HasChecksum reports whether the checksum sidecar is present on disk.
// Content verification happens at restore time; a missing sidecar already
// disqualifies the record there.
func (r Record) HasChecksum() bool {
	_, err := os.Stat(r.ChecksumPath)
	return err == nil
}

// Store is the namespaced multi-generation backup store. Each target jar
// gets its own namespace directory keyed by a hash of the target's resolved
// path (not its content), so moving the jar starts a fresh namespace while
// repatching the same install reuses one.
type Store struct {
	root string
	sys  System

	now     func() time.Time
	absPath func(string) (string, error)
}

// NewStore returns a Store rooted at cacheRoot/backups.
func NewStore(cacheRoot string, sys System) *Store {
	return &Store{
		root:    filepath.Join(cacheRoot, "backups"),
		sys:     sys,
		now:     time.Now,
		absPath: filepath.Abs,
	}
}

// NamespaceDir returns the backup directory for target.
func (s *Store) NamespaceDir(target string) (string, error) {
	resolved, err := s.absPath(target)
	if err != nil {
		return "", fmt.Errorf(messages.BackupResolveTargetFmt, target, err)
	}
	return filepath.Join(s.root, checksum.Bytes([]byte(filepath.Clean(resolved)))), nil
}

// Create snapshots target into its namespace as <unix-ts>.jar with a
// <unix-ts>.jar.sha256 sidecar holding the checksum of the copied bytes.
func (s *Store) Create(target string) (Record, error) {
	if _, err := s.sys.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, fmt.Errorf(messages.PatchTargetMissingFmt, target, patcherr.ErrTargetNotFound)
		}
		return Record{}, fmt.Errorf(messages.PatchStatTargetFmt, target, err)
	}

	dir, err := s.NamespaceDir(target)
	if err != nil {
		return Record{}, err
	}
	if err := s.prune(dir, maxRetained-1); err != nil {
		return Record{}, err
	}
	if err := s.sys.MkdirAll(dir, 0o755); err != nil {
		return Record{}, fmt.Errorf(messages.BackupCreateDirFmt, dir, err)
	}

	ts := s.now().Unix()
	rec := Record{
		Timestamp:    ts,
		BackupPath:   filepath.Join(dir, strconv.FormatInt(ts, 10)+backupExt),
		ChecksumPath: filepath.Join(dir, strconv.FormatInt(ts, 10)+checksumSuffix),
	}
	if err := s.sys.CopyFile(target, rec.BackupPath); err != nil {
		return Record{}, fmt.Errorf(messages.BackupCopyFmt, target, rec.BackupPath, err)
	}

	// Checksum the copied bytes, not the live target: the target could be
	// rewritten between the copy and the hash.
	data, err := s.sys.ReadFile(rec.BackupPath)
	if err != nil {
		return Record{}, fmt.Errorf(messages.BackupReadChecksumFmt, rec.BackupPath, err)
	}
	if err := s.sys.WriteFile(rec.ChecksumPath, []byte(checksum.Bytes(data)), 0o644); err != nil {
		return Record{}, fmt.Errorf(messages.BackupWriteChecksumFmt, rec.ChecksumPath, err)
	}
	return rec, nil
}

// FindLatest returns the valid record with the greatest timestamp. A record
// is valid only when its checksum sidecar exists.
func (s *Store) FindLatest(target string) (Record, error) {
	records, err := s.List(target)
	if err != nil {
		return Record{}, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if _, err := s.sys.Stat(records[i].ChecksumPath); err == nil {
			return records[i], nil
		}
	}
	return Record{}, fmt.Errorf(messages.BackupNotFoundFmt, target, patcherr.ErrBackupNotFound)
}

// List returns every record in the target's namespace, oldest first.
// Records missing their checksum sidecar are included so callers can
// report them; FindLatest skips them.
func (s *Store) List(target string) ([]Record, error) {
	dir, err := s.NamespaceDir(target)
	if err != nil {
		return nil, err
	}
	entries, err := s.sys.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(messages.BackupReadDirFmt, dir, err)
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, backupExt) {
			continue
		}
		ts, err := strconv.ParseInt(strings.TrimSuffix(name, backupExt), 10, 64)
		if err != nil {
			continue
		}
		records = append(records, Record{
			Timestamp:    ts,
			BackupPath:   filepath.Join(dir, name),
			ChecksumPath: filepath.Join(dir, strconv.FormatInt(ts, 10)+checksumSuffix),
		})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})
	return records, nil
}

// Restore copies the latest verified backup over target and removes
// markerPath when present. The checksum sidecar must exist and match the
// backup bytes exactly; on any integrity failure the target is left
// untouched.
func (s *Store) Restore(target string, markerPath string) error {
	rec, err := s.FindLatest(target)
	if err != nil {
		return err
	}
	if err := s.verify(rec); err != nil {
		return err
	}
	if err := s.sys.CopyFile(rec.BackupPath, target); err != nil {
		return fmt.Errorf(messages.BackupRestoreCopyFmt, rec.BackupPath, target, err)
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

// Has reports whether any restorable backup exists for target, in either
// the namespaced store or the simple fixed-name location.
func (s *Store) Has(target string) bool {
	if _, err := s.sys.Stat(SimplePath(target)); err == nil {
		return true
	}
	_, err := s.FindLatest(target)
	return err == nil
}

// verify recomputes the backup checksum and compares it to the sidecar.
// A missing sidecar is a mismatch: integrity is never assumed.
func (s *Store) verify(rec Record) error {
	expectedRaw, err := s.sys.ReadFile(rec.ChecksumPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf(messages.BackupChecksumGateFmt, rec.BackupPath, patcherr.ErrChecksumMismatch)
		}
		return fmt.Errorf(messages.BackupReadChecksumFmt, rec.ChecksumPath, err)
	}
	data, err := s.sys.ReadFile(rec.BackupPath)
	if err != nil {
		return fmt.Errorf(messages.BackupReadChecksumFmt, rec.BackupPath, err)
	}
	if strings.TrimSpace(string(expectedRaw)) != checksum.Bytes(data) {
		return fmt.Errorf(messages.BackupChecksumGateFmt, rec.BackupPath, patcherr.ErrChecksumMismatch)
	}
	return nil
}

// prune removes the oldest records past retain, keeping namespaces bounded.
func (s *Store) prune(dir string, retain int) error {
	entries, err := s.sys.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(messages.BackupReadDirFmt, dir, err)
	}
	type pair struct {
		ts   int64
		name string
	}
	pairs := make([]pair, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, backupExt) {
			continue
		}
		ts, err := strconv.ParseInt(strings.TrimSuffix(name, backupExt), 10, 64)
		if err != nil {
			continue
		}
		pairs = append(pairs, pair{ts: ts, name: name})
	}
	if len(pairs) <= retain {
		return nil
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].ts < pairs[j].ts })
	for _, old := range pairs[:len(pairs)-retain] {
		backupPath := filepath.Join(dir, old.name)
		if err := s.sys.Remove(backupPath); err != nil {
			return fmt.Errorf(messages.BackupPruneFmt, backupPath, err)
		}
		sumPath := filepath.Join(dir, strconv.FormatInt(old.ts, 10)+checksumSuffix)
		if err := s.sys.Remove(sumPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf(messages.BackupPruneFmt, sumPath, err)
		}
	}
	return nil
}
