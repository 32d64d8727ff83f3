package patch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/fjelltone/themepatch/internal/elevate"
	"github.com/fjelltone/themepatch/patcherr"
)

// alreadyPatchedIndicator is the phrase the external tool prints when the
// jar already carries the patch. The tool is authoritative over local
// marker state, so this output is parsed rather than trusted less.
const alreadyPatchedIndicator = "already patched"

func reportsAlreadyPatched(stdout string, stderr string) bool {
	return strings.Contains(stdout, alreadyPatchedIndicator) ||
		strings.Contains(stderr, alreadyPatchedIndicator)
}

// runTool invokes the patcher tool against jarPath with explicit identity
// flags so the tool resolves theme files against the real invoking user.
// A non-zero exit returns a ToolExecutionError carrying the full output.
func runTool(ctx context.Context, javaPath string, toolPath string, jarPath string, id elevate.Identity) (string, string, error) {
	args := []string{
		fmt.Sprintf("-Duser.home=%s", id.Home),
		fmt.Sprintf("-Duser.name=%s", id.User),
		fmt.Sprintf("-Duser.dir=%s", id.Home),
		"-jar", toolPath, jarPath,
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, javaPath, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), stderr.String(), &patcherr.ToolExecutionError{
				Stdout: stdout.String(),
				Stderr: stderr.String(),
			}
		}
		return stdout.String(), stderr.String(), err
	}
	return stdout.String(), stderr.String(), nil
}
