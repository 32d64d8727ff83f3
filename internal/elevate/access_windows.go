//go:build windows

package elevate

import (
	"fmt"
	"os"
	"path/filepath"
)

// dirWritable probes by creating and removing a scratch file; Windows has
// no access(2) analogue that honors ACLs.
func dirWritable(dir string) bool {
	probe := filepath.Join(dir, fmt.Sprintf(".themepatch-probe-%d", nowNano()))
	file, err := os.OpenFile(probe, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return false
	}
	_ = file.Close()
	_ = os.Remove(probe)
	return true
}
