package messages

// CLI messages for user-facing commands and prompts.
const (
	// RootUse is the CLI command name.
	RootUse   = "themepatch"
	RootShort = "Patch Bitwig Studio's jar for theme support"

	RootFlagJar       = "Path to the bitwig.jar to operate on"
	RootFlagCacheRoot = "Override the cache directory (patcher tool and backups)"
	RootFlagTimeout   = "Timeout for subprocess calls (0 disables)"
	RootFlagConfig    = "Path to an optional config.toml"
	RootFlagVersion   = "Print version and exit"
	RootFlagVerbose   = "Log operation events to stderr"
	RootJarRequired   = "--jar is required"

	PatchUse        = "patch"
	PatchShort      = "Patch the jar in place (elevates when needed)"
	PatchDoneFmt    = "Patched %s\n"
	PatchAlreadyFmt = "%s is already patched\n"

	RestoreUse     = "restore"
	RestoreShort   = "Restore the jar from the latest verified backup"
	RestoreDoneFmt = "Restored %s\n"

	StatusUse         = "status"
	StatusShort       = "Show patch, backup, and writability state"
	StatusPatchedFmt  = "patched:  %s\n"
	StatusBackupFmt   = "backup:   %s\n"
	StatusWritableFmt = "writable: %s\n"
	StatusYes         = "yes"
	StatusNo          = "no"

	BackupsUse     = "backups"
	BackupsShort   = "List backups recorded for the jar"
	BackupsNone    = "No backups recorded."
	BackupsLineFmt = "%s  %s\n"
	BackupsInvalid = "(missing checksum)"

	FetchToolUse     = "fetch-tool"
	FetchToolShort   = "Download and verify the patcher tool ahead of time"
	FetchToolDoneFmt = "Patcher tool cached at %s\n"

	DoctorUse          = "doctor"
	DoctorShort        = "Check java, elevation, transfer tools, and cache health"
	DoctorHeaderFmt    = "Checking patch prerequisites...\n"
	DoctorCheckJava    = "java runtime"
	DoctorCheckElevate = "elevation mechanism"
	DoctorCheckFetch   = "transfer tool (curl/wget)"
	DoctorCheckCache   = "cache directory"
	DoctorJavaOKFmt    = "found at %s"
	DoctorJavaMissing  = "not found; install a Java Runtime Environment or set JAVA_HOME"
	DoctorElevateOKFmt = "%s available"
	DoctorElevateMiss  = "not available; patching privileged installs will fail"
	DoctorFetchOKFmt   = "%s available"
	DoctorFetchMissing = "neither curl nor wget found; tool download will fail"
	DoctorCacheOKFmt   = "writable at %s"
	DoctorCacheFailFmt = "not writable: %v"
	DoctorStatusPass   = "PASS"
	DoctorStatusWarn   = "WARN"
	DoctorStatusFail   = "FAIL"
	DoctorResultFmt    = "[%s] %s: %s\n"
	DoctorFailed       = "one or more doctor checks failed"

	VersionTemplate  = "{{.Version}}\n"
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
)
