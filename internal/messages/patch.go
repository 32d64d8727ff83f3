package messages

// Patch and restore executor messages.
const (
	// PatchTargetMissingFmt formats the missing-target error.
	PatchTargetMissingFmt         = "target jar %s: %w"
	PatchAlreadyPatchedFmt        = "target jar %s: %w"
	PatchStatTargetFmt            = "stat target jar %s: %w"
	PatchCreateStageDirFmt        = "create staging dir %s: %w"
	PatchCopyStageFmt             = "copy %s to staging file %s: %w"
	PatchWriteMarkerFmt           = "write patch marker %s: %w"
	PatchRemoveMarkerFmt          = "remove patch marker %s: %w"
	PatchRunToolFmt               = "run patcher tool against %s: %w"
	PatchStageSourcesExhausted    = "every staging source already carries the patch"
	PatchStageSourcesExhaustedFmt = PatchStageSourcesExhausted + ": %w"

	// Event log lines. Written to the executor's log output, never fatal.
	PatchEventStartFmt          = "patch: start target=%s\n"
	PatchEventBackupFailedFmt   = "patch: backup failed (continuing): %v\n"
	PatchEventBackupCreatedFmt  = "patch: backup created %s\n"
	PatchEventDirectFmt         = "patch: target writable, running tool directly\n"
	PatchEventElevatedFmt       = "patch: target not writable, staging via %s\n"
	PatchEventStageSourceFmt    = "patch: staging source %s\n"
	PatchEventAlreadyPatchedFmt = "patch: tool reports already patched for %s\n"
	PatchEventMarkerWarnFmt     = "patch: marker write failed (continuing): %v\n"
	PatchEventDoneFmt           = "patch: done target=%s\n"

	RestoreNotPatchedFmt = "target jar %s: %w"

	RestoreEventStartFmt    = "restore: start target=%s\n"
	RestoreEventSimpleFmt   = "restore: namespaced store empty, trying %s\n"
	RestoreEventElevatedFmt = "restore: permission denied, retrying via %s\n"
	RestoreEventDoneFmt     = "restore: done target=%s\n"
)
