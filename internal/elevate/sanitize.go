package elevate

import (
	"fmt"
	"strings"

	"github.com/fjelltone/themepatch/internal/messages"
	"github.com/fjelltone/themepatch/patcherr"
)

// checkSafe rejects values that could break out of a quoted script string.
// Newlines, carriage returns, and null bytes end the quoted context on at
// least one platform, so they fail closed before any script is written.
func checkSafe(name string, value string) error {
	if strings.ContainsAny(value, "\n\r\x00") {
		return fmt.Errorf(messages.ElevateUnsafeValueFmt, name, &patcherr.InvalidInputError{Name: name})
	}
	return nil
}

// quotePosix returns value single-quoted for POSIX shell, with embedded
// single quotes escaped as '\''.
func quotePosix(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

// quotePS returns value single-quoted for PowerShell, where a single quote
// is escaped by doubling it.
func quotePS(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
