// Package elevate decides between direct and privileged execution and runs
// generated scripts through the platform's elevation mechanism.
//
// The platform differences (write probing, mechanism detection, script
// syntax, invocation) are collapsed into the Platform capability set with
// Posix and Windows variants. Both variants compile everywhere; selection
// happens at runtime so either can be exercised in tests on any host.
package elevate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/fjelltone/themepatch/internal/messages"
	"github.com/fjelltone/themepatch/patcherr"
)

// Result carries the captured output of an elevated execution.
type Result struct {
	Stdout string
	Stderr string
}

// Script accumulates fully-rendered, injection-safe script lines. Every
// method escapes its arguments and rejects unsafe values up front, so a
// Script that built without error is safe to write and execute.
type Script interface {
	// ExportIdentity makes the invoking user's identity visible inside the
	// privileged context.
	ExportIdentity(id Identity) error
	// MkdirAll ensures a directory exists.
	MkdirAll(path string) error
	// Copy copies src over dst.
	Copy(src string, dst string) error
	// HashTo writes the lowercase hex SHA-256 of src to sumPath.
	HashTo(src string, sumPath string) error
	// Run invokes bin with args.
	Run(bin string, args ...string) error
	// WriteString writes content to path, replacing it.
	WriteString(path string, content string) error
	// Remove deletes path, ignoring a missing file.
	Remove(path string) error
	// VerifyChecksum aborts the script unless the SHA-256 of backupPath
	// matches the digest stored at sumPath.
	VerifyChecksum(backupPath string, sumPath string) error

	// Body returns the rendered script text.
	Body() string
	// Ext returns the script filename extension including the dot.
	Ext() string
}

// Platform is the capability set for one operating system family.
type Platform interface {
	// CanWrite probes write permission for path, falling back to the parent
	// directory when path does not exist yet.
	CanWrite(path string) bool
	// HasMechanism reports whether an elevation mechanism is available.
	HasMechanism() bool
	// MechanismName names the mechanism for log and doctor output.
	MechanismName() string
	// NewScript returns an empty script with the platform preamble.
	NewScript() Script
	// RunElevated writes script to a private temp file, executes it through
	// the elevation mechanism synchronously, and deletes the file
	// best-effort regardless of outcome. A user dismissal surfaces as
	// patcherr.ErrElevationCancelled; other failures as ElevationFailedError.
	RunElevated(ctx context.Context, script Script) (Result, error)
}

// DefaultPlatform returns the Platform for goos ("windows" selects the
// Windows variant, anything else Posix). Scripts are staged under tempRoot;
// events go to logOutput.
func DefaultPlatform(goos string, tempRoot string, logOutput io.Writer) Platform {
	if goos == "windows" {
		return NewWindowsPlatform(tempRoot, logOutput)
	}
	return NewPosixPlatform(tempRoot, logOutput)
}

// CanWrite reports whether the current user can open path for writing.
// When path does not exist the probe is scoped to its parent directory,
// since creating the file is what the caller will attempt.
func CanWrite(path string) bool {
	if _, err := os.Stat(path); err == nil {
		file, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return false
		}
		_ = file.Close()
		return true
	}
	return dirWritable(filepath.Dir(path))
}

// nowNano is a seam so tests can pin temp filename ids.
var nowNano = func() int64 { return time.Now().UnixNano() }

// writeTempScript writes body to an owner-only file under an owner-only
// temp directory and returns its path. The nanosecond id keeps scripts for
// different targets from colliding; it is not a concurrency guard for a
// single target.
func writeTempScript(tempRoot string, prefix string, body string, ext string) (string, error) {
	if err := os.MkdirAll(tempRoot, 0o700); err != nil {
		return "", fmt.Errorf(messages.ElevateCreateScriptDirFmt, tempRoot, err)
	}
	// MkdirAll does not tighten an existing directory.
	_ = os.Chmod(tempRoot, 0o700)

	path := filepath.Join(tempRoot, fmt.Sprintf("%s-%d%s", prefix, nowNano(), ext))
	if err := os.WriteFile(path, []byte(body), 0o700); err != nil {
		return "", fmt.Errorf(messages.ElevateWriteScriptFmt, path, err)
	}
	// WriteFile's mode is subject to the umask.
	if err := os.Chmod(path, 0o700); err != nil {
		return "", fmt.Errorf(messages.ElevateChmodScriptFmt, path, err)
	}
	return path, nil
}

// runCapture executes a command synchronously, capturing stdout and stderr.
// The exit code is -1 when the process could not be started.
func runCapture(ctx context.Context, name string, args ...string) (string, string, int, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	exitCode := 0
	if err != nil {
		exitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
			err = nil
		}
	}
	return stdout.String(), stderr.String(), exitCode, err
}

func classifyFailure(cancelled bool, stderr string) error {
	if cancelled {
		return patcherr.ErrElevationCancelled
	}
	return &patcherr.ElevationFailedError{Stderr: stderr}
}
