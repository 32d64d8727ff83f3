package messages

// Patcher tool acquisition messages.
const (
	// AcquireCreateCacheDirFmt formats tool cache directory failures.
	AcquireCreateCacheDirFmt = "create tool cache dir %s: %w"
	AcquireNoTransferTool    = "neither curl nor wget is available"
	AcquireNoTransferToolFmt = AcquireNoTransferTool + ": %w"
	AcquireTransferFailedFmt = "download %s with %s (%v): %w"
	AcquireTransferStderrFmt = "download %s with %s (%s): %w"
	AcquireChecksumFmt       = "patcher tool %s: expected sha256 %s, got %s: %w"
	AcquireOpenLockFmt       = "open tool cache lock %s: %w"
	AcquireLockFmt           = "lock tool cache %s: %w"
	AcquireLockTimeoutFmt    = "timed out after %s waiting for tool cache lock"

	AcquireEventCachedFmt   = "acquire: cached tool verified %s\n"
	AcquireEventCorruptFmt  = "acquire: cached tool corrupt, re-downloading: %v\n"
	AcquireEventDownloadFmt = "acquire: downloading with %s -> %s\n"
	AcquireEventVerifiedFmt = "acquire: downloaded tool verified %s\n"
)
