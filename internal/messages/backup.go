package messages

// Backup store messages.
const (
	// BackupCreateDirFmt formats namespace directory creation failures.
	BackupCreateDirFmt     = "create backup dir %s: %w"
	BackupCopyFmt          = "copy %s to backup %s: %w"
	BackupWriteChecksumFmt = "write backup checksum %s: %w"
	BackupReadDirFmt       = "read backup dir %s: %w"
	BackupReadChecksumFmt  = "read backup checksum %s: %w"
	BackupRestoreCopyFmt   = "copy backup %s over %s: %w"
	BackupResolveTargetFmt = "resolve target path %s: %w"
	BackupPruneFmt         = "prune old backup %s: %w"
	BackupNotFoundFmt      = "no backup for %s: %w"
	BackupChecksumGateFmt  = "backup %s failed integrity check: %w"
	BackupSimpleExistsFmt  = "simple backup already present at %s\n"
)
