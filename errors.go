package themepatch

import "github.com/fjelltone/themepatch/patcherr"

// The error taxonomy lives in patcherr; these re-exports let callers match
// with errors.Is/As against this package alone. The values are identical,
// so either import path works.
var (
	ErrTargetNotFound     = patcherr.ErrTargetNotFound
	ErrAlreadyPatched     = patcherr.ErrAlreadyPatched
	ErrNotPatched         = patcherr.ErrNotPatched
	ErrBackupNotFound     = patcherr.ErrBackupNotFound
	ErrChecksumMismatch   = patcherr.ErrChecksumMismatch
	ErrPermissionDenied   = patcherr.ErrPermissionDenied
	ErrElevationCancelled = patcherr.ErrElevationCancelled
	ErrRuntimeNotFound    = patcherr.ErrRuntimeNotFound
	ErrDownloadFailed     = patcherr.ErrDownloadFailed
)

// Payload-carrying error types, matched with errors.As.
type (
	ToolExecutionError   = patcherr.ToolExecutionError
	ElevationFailedError = patcherr.ElevationFailedError
	InvalidInputError    = patcherr.InvalidInputError
)
