package messages

// Java runtime discovery messages.
const (
	// JreNotFound is returned when every discovery stage is exhausted.
	JreNotFound         = "no working java runtime found (checked bundled JRE, PATH, install roots, JAVA_HOME)"
	JreNotFoundFmt      = JreNotFound + ": %w"
	JreEventFoundFmt    = "jre: found java at %s (%s)\n"
	JreStageBundled     = "bundled"
	JreStagePath        = "path"
	JreStageInstallRoot = "install-root"
	JreStageJavaHome    = "java-home"
)
