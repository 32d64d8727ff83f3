package messages

// Config messages for configuration loading and validation.
const (
	// ConfigReadFileFmt formats config file read failures.
	ConfigReadFileFmt        = "read config file %s: %w"
	ConfigParseFmt           = "parse config %s: %w"
	ConfigInvalidShaFmt      = "%s: tool_sha256 must be 64 lowercase hex characters"
	ConfigNegativeTimeoutFmt = "%s: timeout_seconds must not be negative"
	ConfigResolveHomeFmt     = "resolve home dir: %w"
	ConfigResolveCacheDirFmt = "resolve user cache dir: %w"
)
