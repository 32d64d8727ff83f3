package messages

// Privilege broker messages.
const (
	// ElevateCreateScriptDirFmt formats temp script directory failures.
	ElevateCreateScriptDirFmt = "create script dir %s: %w"
	ElevateWriteScriptFmt     = "write elevation script %s: %w"
	ElevateChmodScriptFmt     = "chmod elevation script %s: %w"
	ElevateRunFmt             = "run %s: %w"
	ElevateUnsafeValueFmt     = "value for %s contains a newline, carriage return, or null byte: %w"
	ElevateNoMechanism        = "no elevation mechanism available"
	ElevateNoMechanismFmt     = ElevateNoMechanism + ": %w"

	ElevateEventRunFmt     = "elevate: running %s script %s\n"
	ElevateEventCleanupFmt = "elevate: script cleanup failed (ignored): %v\n"
)
