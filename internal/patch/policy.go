package patch

// BackupPolicy names the trade-off between availability and safety when the
// pre-patch backup cannot be created.
type BackupPolicy int

const (
	// BackupBestEffort logs a failed backup and proceeds with the patch.
	// This favors availability: a user whose cache dir is broken can still
	// patch, at the cost of an easy undo.
	BackupBestEffort BackupPolicy = iota

	// BackupRequired aborts the patch when the backup cannot be created.
	BackupRequired
)
