// Package patch orchestrates the patch and restore flows: backup, runtime
// discovery, tool acquisition, direct or elevated execution, and marker
// state.
//
// All operations are synchronous. The executor does not coordinate
// concurrent operations on the same jar; callers serialize per target.
package patch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fjelltone/themepatch/internal/backup"
	"github.com/fjelltone/themepatch/internal/elevate"
	"github.com/fjelltone/themepatch/internal/messages"
	"github.com/fjelltone/themepatch/patcherr"
)

// RuntimeFinder locates a validated java executable.
type RuntimeFinder interface {
	Find(ctx context.Context) (string, error)
}

// ToolAcquirer produces a checksum-verified patcher tool path.
type ToolAcquirer interface {
	EnsureAvailable(ctx context.Context) (string, error)
}

// Executor runs the patch and restore flows for one configuration.
type Executor struct {
	Backups   *backup.Store
	Platform  elevate.Platform
	Finder    RuntimeFinder
	Acquirer  ToolAcquirer
	Identity  elevate.Identity
	Policy    BackupPolicy
	TempRoot  string
	Timeout   time.Duration
	LogOutput io.Writer

	runTool func(ctx context.Context, javaPath string, toolPath string, jarPath string, id elevate.Identity) (string, string, error)
	nowNano func() int64
}

// NewExecutor wires an Executor with the real subprocess runner.
func NewExecutor(backups *backup.Store, platform elevate.Platform, finder RuntimeFinder, acquirer ToolAcquirer, id elevate.Identity, tempRoot string, logOutput io.Writer) *Executor {
	if logOutput == nil {
		logOutput = io.Discard
	}
	return &Executor{
		Backups:   backups,
		Platform:  platform,
		Finder:    finder,
		Acquirer:  acquirer,
		Identity:  id,
		TempRoot:  tempRoot,
		LogOutput: logOutput,
		runTool:   runTool,
		nowNano:   func() int64 { return time.Now().UnixNano() },
	}
}

// opCtx bounds a single subprocess invocation. A zero timeout disables the
// wrapper; a hung child then hangs the operation. Elevated runs never go
// through here: an abandoned prompt is left pending, not killed.
func (e *Executor) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.Timeout)
}

// Patch patches target in place. The flow is: existence and marker checks,
// best-effort backup, runtime discovery, tool acquisition, then direct or
// staged-elevated execution. No marker is ever written on failure.
func (e *Executor) Patch(ctx context.Context, target string) error {
	_, _ = fmt.Fprintf(e.LogOutput, messages.PatchEventStartFmt, target)

	if _, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf(messages.PatchTargetMissingFmt, target, patcherr.ErrTargetNotFound)
		}
		return fmt.Errorf(messages.PatchStatTargetFmt, target, err)
	}
	if IsPatched(target) {
		return fmt.Errorf(messages.PatchAlreadyPatchedFmt, target, patcherr.ErrAlreadyPatched)
	}

	if err := e.preBackup(target); err != nil {
		return err
	}

	javaPath, err := e.Finder.Find(ctx)
	if err != nil {
		return err
	}
	toolPath, err := e.Acquirer.EnsureAvailable(ctx)
	if err != nil {
		return err
	}

	if e.Platform.CanWrite(target) {
		_, _ = fmt.Fprintf(e.LogOutput, messages.PatchEventDirectFmt)
		return e.patchDirect(ctx, target, javaPath, toolPath)
	}
	_, _ = fmt.Fprintf(e.LogOutput, messages.PatchEventElevatedFmt, e.Platform.MechanismName())
	return e.patchStaged(ctx, target, javaPath, toolPath)
}

// preBackup snapshots target into the namespaced store according to the
// backup policy. Under BackupBestEffort a failure is logged and the patch
// continues; it is never silently skipped.
func (e *Executor) preBackup(target string) error {
	rec, err := e.Backups.Create(target)
	if err != nil {
		if e.Policy == BackupRequired {
			return err
		}
		_, _ = fmt.Fprintf(e.LogOutput, messages.PatchEventBackupFailedFmt, err)
		return nil
	}
	_, _ = fmt.Fprintf(e.LogOutput, messages.PatchEventBackupCreatedFmt, rec.BackupPath)
	return nil
}

// patchDirect runs the tool straight against the writable target.
func (e *Executor) patchDirect(ctx context.Context, target string, javaPath string, toolPath string) error {
	// The non-elevated path also keeps a fixed-name pristine copy next to
	// the jar; same availability trade-off as the namespaced backup.
	simplePath := backup.SimplePath(target)
	if _, err := os.Stat(simplePath); err == nil {
		_, _ = fmt.Fprintf(e.LogOutput, messages.BackupSimpleExistsFmt, simplePath)
	}
	if _, err := e.Backups.CreateSimple(target); err != nil {
		if e.Policy == BackupRequired {
			return err
		}
		_, _ = fmt.Fprintf(e.LogOutput, messages.PatchEventBackupFailedFmt, err)
	}

	toolCtx, cancel := e.opCtx(ctx)
	stdout, stderr, err := e.runTool(toolCtx, javaPath, toolPath, target, e.Identity)
	cancel()
	if err != nil {
		return fmt.Errorf(messages.PatchRunToolFmt, target, err)
	}
	if reportsAlreadyPatched(stdout, stderr) {
		_, _ = fmt.Fprintf(e.LogOutput, messages.PatchEventAlreadyPatchedFmt, target)
		return nil
	}

	if err := e.writeMarker(ctx, target); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(e.LogOutput, messages.PatchEventDoneFmt, target)
	return nil
}

// patchStaged handles an unwritable target: the tool runs un-elevated
// against a staged copy in user temp space, and only the final copy-back
// and marker write run elevated. This keeps the privileged surface to a
// two-line script.
func (e *Executor) patchStaged(ctx context.Context, target string, javaPath string, toolPath string) error {
	if !e.Platform.HasMechanism() {
		return fmt.Errorf(messages.ElevateNoMechanismFmt, patcherr.ErrPermissionDenied)
	}

	if err := os.MkdirAll(e.TempRoot, 0o700); err != nil {
		return fmt.Errorf(messages.PatchCreateStageDirFmt, e.TempRoot, err)
	}
	stagePath := filepath.Join(e.TempRoot, fmt.Sprintf("stage-%d.jar", e.nowNano()))
	// A leaked staging file is tolerated; the remove is best-effort.
	defer func() { _ = os.Remove(stagePath) }()

	for _, source := range e.stageSources(target) {
		_, _ = fmt.Fprintf(e.LogOutput, messages.PatchEventStageSourceFmt, source)
		if err := copyFile(source, stagePath); err != nil {
			return fmt.Errorf(messages.PatchCopyStageFmt, source, stagePath, err)
		}

		toolCtx, cancel := e.opCtx(ctx)
		stdout, stderr, err := e.runTool(toolCtx, javaPath, toolPath, stagePath, e.Identity)
		cancel()
		if err != nil {
			return fmt.Errorf(messages.PatchRunToolFmt, stagePath, err)
		}
		if reportsAlreadyPatched(stdout, stderr) {
			// This source already carried the patch; an older unpatched
			// source may still work.
			_, _ = fmt.Fprintf(e.LogOutput, messages.PatchEventAlreadyPatchedFmt, source)
			continue
		}

		script := e.Platform.NewScript()
		if err := script.Copy(stagePath, target); err != nil {
			return err
		}
		if err := script.WriteString(MarkerPath(target), markerContent); err != nil {
			return err
		}
		if _, err := e.Platform.RunElevated(ctx, script); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(e.LogOutput, messages.PatchEventDoneFmt, target)
		return nil
	}

	return fmt.Errorf(messages.PatchStageSourcesExhaustedFmt, patcherr.ErrAlreadyPatched)
}

// stageSources lists candidate bytes to stage, preferring pristine backups
// over the live (possibly already patched) target.
func (e *Executor) stageSources(target string) []string {
	var sources []string
	for _, suffix := range staleBackupSuffixes {
		candidate := sidecarPath(target, suffix)
		if _, err := os.Stat(candidate); err == nil {
			sources = append(sources, candidate)
		}
	}
	if rec, err := e.Backups.FindLatest(target); err == nil {
		sources = append(sources, rec.BackupPath)
	}
	return append(sources, target)
}

// writeMarker records patched state, elevating only the marker write when
// its parent directory is privileged. An elevated marker failure is logged
// rather than fatal: the jar is patched either way, and the external tool
// remains authoritative.
func (e *Executor) writeMarker(ctx context.Context, target string) error {
	markerPath := MarkerPath(target)
	if e.Platform.CanWrite(markerPath) {
		if err := os.WriteFile(markerPath, []byte(markerContent), 0o644); err != nil {
			return fmt.Errorf(messages.PatchWriteMarkerFmt, markerPath, err)
		}
		return nil
	}
	if !e.Platform.HasMechanism() {
		_, _ = fmt.Fprintf(e.LogOutput, messages.PatchEventMarkerWarnFmt, patcherr.ErrPermissionDenied)
		return nil
	}
	script := e.Platform.NewScript()
	if err := script.WriteString(markerPath, markerContent); err != nil {
		return err
	}
	if _, err := e.Platform.RunElevated(ctx, script); err != nil {
		_, _ = fmt.Fprintf(e.LogOutput, messages.PatchEventMarkerWarnFmt, err)
	}
	return nil
}

// copyFile copies src to dst without going through the backup store; the
// staging file is scratch space, not a backup.
func copyFile(src string, dst string) error {
	return backup.RealSystem{}.CopyFile(src, dst)
}
