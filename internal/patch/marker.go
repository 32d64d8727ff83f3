package patch

import (
	"os"
	"path/filepath"
	"strings"
)

// markerContent is what gets written into the marker file. Only the file's
// existence carries meaning; the content is informational.
const markerContent = "patched"

// MarkerPath returns the patch marker sidecar for target, swapping the
// final extension: /opt/bitwig/bitwig.jar -> /opt/bitwig/bitwig.patched.
func MarkerPath(target string) string {
	return strings.TrimSuffix(target, filepath.Ext(target)) + ".patched"
}

// IsPatched reports whether target carries the patch marker. Marker
// existence is the sole truth for patched state.
func IsPatched(target string) bool {
	_, err := os.Stat(MarkerPath(target))
	return err == nil
}

// staleBackupSuffixes are sidecar names older installs may have left next
// to the jar. When staging for an elevated patch they are preferred over
// the live target, since they hold unpatched bytes.
var staleBackupSuffixes = []string{".jar.bak", ".jar.backup", ".backup"}

func sidecarPath(target string, suffix string) string {
	return strings.TrimSuffix(target, filepath.Ext(target)) + suffix
}
