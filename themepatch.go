// Package themepatch patches Bitwig Studio's bitwig.jar in place to enable
// theme support, with verified backups, marker-based patch state, and
// transparent privilege elevation.
//
// The actual bytecode patching is delegated to an external, checksum-pinned
// tool; this package orchestrates backup, integrity verification, runtime
// discovery, and direct or elevated execution around it.
package themepatch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fjelltone/themepatch/internal/acquire"
	"github.com/fjelltone/themepatch/internal/backup"
	"github.com/fjelltone/themepatch/internal/elevate"
	"github.com/fjelltone/themepatch/internal/jre"
	"github.com/fjelltone/themepatch/internal/patch"
)

// Platform is the OS capability set (write probing, elevation, script
// generation). Use DefaultPlatform unless a test needs a fake.
type Platform = elevate.Platform

// Identity carries the invoking user's home, user name, and login name into
// elevated contexts.
type Identity = elevate.Identity

// BackupRecord identifies one namespaced backup generation.
type BackupRecord = backup.Record

// BackupPolicy names the availability-over-safety trade-off for pre-patch
// backups.
type BackupPolicy = patch.BackupPolicy

// Backup policies.
const (
	BackupBestEffort = patch.BackupBestEffort
	BackupRequired   = patch.BackupRequired
)

// Installation is what an installation detector supplies. LikelyNeedsElevation
// is a best-effort hint for UI guidance only; patch decisions rely on live
// permission probing.
type Installation struct {
	JarPath              string
	Version              string
	LikelyNeedsElevation bool
}

// Options configures a Manager. The zero value works: ambient defaults are
// resolved in NewManager, never read lazily from process globals.
type Options struct {
	// CacheRoot holds the patcher tool and namespaced backups.
	// Defaults to <user-cache-dir>/themepatch.
	CacheRoot string
	// TempRoot holds elevation scripts and staging files.
	// Defaults to <tmp>/themepatch.
	TempRoot string
	// LogOutput receives one-line operation events. Defaults to discard.
	LogOutput io.Writer
	// Timeout bounds each individual subprocess call. Elevation prompts
	// are exempt so an abandoned prompt is left pending, not killed.
	// Zero disables the bound.
	Timeout time.Duration
	// BackupPolicy defaults to BackupBestEffort.
	BackupPolicy BackupPolicy
	// Platform defaults to the variant for the current OS.
	Platform Platform
	// Identity defaults to the current environment's identity.
	Identity *Identity
	// JavaPath, when set, is tried before the discovery chain.
	JavaPath string
	// ToolURL and ToolSHA256 override the pinned patcher tool release.
	// Both must be set together to stay coherent; each defaults
	// independently to the pinned constant.
	ToolURL    string
	ToolSHA256 string
	// ToolName overrides the cached tool filename.
	ToolName string
}

// Manager is the public entry point for patch, restore, and state queries.
type Manager struct {
	exec *patch.Executor
}

// NewManager resolves defaults and wires the subsystem.
func NewManager(opts Options) (*Manager, error) {
	cacheRoot := opts.CacheRoot
	if cacheRoot == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}
		cacheRoot = filepath.Join(base, "themepatch")
	}
	tempRoot := opts.TempRoot
	if tempRoot == "" {
		tempRoot = filepath.Join(os.TempDir(), "themepatch")
	}
	logOutput := opts.LogOutput
	if logOutput == nil {
		logOutput = io.Discard
	}
	platform := opts.Platform
	if platform == nil {
		platform = elevate.DefaultPlatform(runtime.GOOS, tempRoot, logOutput)
	}
	id := elevate.CurrentIdentity(os.Getenv, runtime.GOOS)
	if opts.Identity != nil {
		id = *opts.Identity
	}

	store := backup.NewStore(cacheRoot, backup.RealSystem{})
	acquirer := acquire.New(cacheRoot, opts.ToolURL, opts.ToolName, opts.ToolSHA256, logOutput)
	acquirer.Timeout = opts.Timeout
	finder := jre.NewFinder(runtime.GOOS, opts.JavaPath, logOutput)
	finder.Timeout = opts.Timeout

	exec := patch.NewExecutor(store, platform, finder, acquirer, id, tempRoot, logOutput)
	exec.Policy = opts.BackupPolicy
	exec.Timeout = opts.Timeout
	return &Manager{exec: exec}, nil
}

// Patch patches the jar at artifactPath, elevating when it is not writable.
// A second call returns ErrAlreadyPatched without invoking the tool.
func (m *Manager) Patch(ctx context.Context, artifactPath string) error {
	return m.exec.Patch(ctx, artifactPath)
}

// Restore reverses a patch from the latest verified backup, elevating only
// when the un-elevated attempt fails with a permission error.
func (m *Manager) Restore(ctx context.Context, artifactPath string) error {
	return m.exec.Restore(ctx, artifactPath)
}

// IsPatched reports whether the patch marker exists. This is a pure stat
// check with no side effects.
func (m *Manager) IsPatched(artifactPath string) bool {
	return patch.IsPatched(artifactPath)
}

// HasBackup reports whether any restorable backup exists for artifactPath.
func (m *Manager) HasBackup(artifactPath string) bool {
	return m.exec.HasBackup(artifactPath)
}

// Backups lists the namespaced backup records for artifactPath, oldest
// first.
func (m *Manager) Backups(artifactPath string) ([]BackupRecord, error) {
	return m.exec.Backups.List(artifactPath)
}

// EnsureTool downloads and verifies the patcher tool ahead of time,
// returning its cached path.
func (m *Manager) EnsureTool(ctx context.Context) (string, error) {
	return m.exec.Acquirer.EnsureAvailable(ctx)
}
