// Package patcherr defines the error taxonomy shared by the patch, restore,
// backup, elevation, and acquisition layers.
//
// Sentinel errors are matched with errors.Is; payload-carrying errors
// (ToolExecutionError, ElevationFailedError, InvalidInputError) are matched
// with errors.As.
package patcherr

import (
	"errors"
	"fmt"
)

var (
	// ErrTargetNotFound indicates the jar to patch or restore does not exist.
	ErrTargetNotFound = errors.New("target jar not found")

	// ErrAlreadyPatched indicates the patch marker is already present.
	ErrAlreadyPatched = errors.New("jar is already patched")

	// ErrNotPatched indicates the patch marker is absent where one is expected.
	ErrNotPatched = errors.New("jar is not patched")

	// ErrBackupNotFound indicates no backup exists for the target.
	ErrBackupNotFound = errors.New("backup not found")

	// ErrChecksumMismatch indicates integrity verification failed. This class
	// always fails closed: data that does not verify is never trusted.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrPermissionDenied indicates the target is not writable and no
	// elevation mechanism is available.
	ErrPermissionDenied = errors.New("permission denied and no elevation mechanism available")

	// ErrElevationCancelled indicates the user dismissed the elevation prompt.
	// It is distinct from generic elevation failure so callers can show a
	// neutral message.
	ErrElevationCancelled = errors.New("elevation cancelled by user")

	// ErrRuntimeNotFound indicates no working java runtime was discovered.
	ErrRuntimeNotFound = errors.New("java runtime not found")

	// ErrDownloadFailed indicates the patcher tool could not be downloaded.
	ErrDownloadFailed = errors.New("patcher tool download failed")
)

// ToolExecutionError reports a non-zero exit from the external patcher tool.
// Stdout and Stderr carry the tool's full captured output, which is the
// authoritative source of compatibility diagnostics.
type ToolExecutionError struct {
	Stdout string
	Stderr string
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("patcher tool failed\nstdout: %s\nstderr: %s", e.Stdout, e.Stderr)
}

// ElevationFailedError reports a failed elevated execution that was not a
// user cancellation.
type ElevationFailedError struct {
	Stderr string
}

func (e *ElevationFailedError) Error() string {
	return fmt.Sprintf("elevated execution failed: %s", e.Stderr)
}

// InvalidInputError reports an environment-derived value rejected before
// script generation because it contained a newline, carriage return, or
// null byte.
type InvalidInputError struct {
	Name string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("unsafe value for %s rejected", e.Name)
}
