package elevate

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/fjelltone/themepatch/internal/messages"
)

// pkexec exits 126 when the authentication dialog is dismissed.
const pkexecDismissedExitCode = 126

// PosixPlatform elevates through pkexec over generated bash scripts.
type PosixPlatform struct {
	tempRoot  string
	logOutput io.Writer

	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) (string, string, int, error)
}

// NewPosixPlatform returns the pkexec/bash platform variant.
func NewPosixPlatform(tempRoot string, logOutput io.Writer) *PosixPlatform {
	if logOutput == nil {
		logOutput = io.Discard
	}
	return &PosixPlatform{
		tempRoot:  tempRoot,
		logOutput: logOutput,
		lookPath:  exec.LookPath,
		run:       runCapture,
	}
}

// CanWrite probes write permission for path.
func (p *PosixPlatform) CanWrite(path string) bool {
	return CanWrite(path)
}

// HasMechanism reports whether pkexec is on the search path.
func (p *PosixPlatform) HasMechanism() bool {
	_, err := p.lookPath("pkexec")
	return err == nil
}

// MechanismName names the elevation mechanism.
func (p *PosixPlatform) MechanismName() string { return "pkexec" }

// NewScript returns an empty bash script with the standard preamble.
func (p *PosixPlatform) NewScript() Script {
	return &bashScript{lines: []string{"#!/bin/bash", "set -e"}}
}

// RunElevated executes the script via pkexec and classifies the outcome.
func (p *PosixPlatform) RunElevated(ctx context.Context, script Script) (Result, error) {
	path, err := writeTempScript(p.tempRoot, "elevated", script.Body(), script.Ext())
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			_, _ = fmt.Fprintf(p.logOutput, messages.ElevateEventCleanupFmt, err)
		}
	}()

	_, _ = fmt.Fprintf(p.logOutput, messages.ElevateEventRunFmt, p.MechanismName(), path)
	stdout, stderr, exitCode, err := p.run(ctx, "pkexec", "bash", path)
	if err != nil {
		return Result{}, fmt.Errorf(messages.ElevateRunFmt, p.MechanismName(), err)
	}
	result := Result{Stdout: stdout, Stderr: stderr}
	if exitCode == 0 {
		return result, nil
	}
	cancelled := exitCode == pkexecDismissedExitCode || strings.Contains(stderr, "dismissed")
	return result, classifyFailure(cancelled, stderr)
}

// bashScript renders bash lines with single-quoted, escaped values.
type bashScript struct {
	lines []string
}

func (s *bashScript) add(format string, quoted ...string) {
	args := make([]any, len(quoted))
	for i, q := range quoted {
		args[i] = q
	}
	s.lines = append(s.lines, fmt.Sprintf(format, args...))
}

func (s *bashScript) quoteAll(pairs map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for name, value := range pairs {
		if err := checkSafe(name, value); err != nil {
			return nil, err
		}
		out[name] = quotePosix(value)
	}
	return out, nil
}

func (s *bashScript) ExportIdentity(id Identity) error {
	quoted, err := s.quoteAll(map[string]string{"HOME": id.Home, "USER": id.User, "LOGNAME": id.Login})
	if err != nil {
		return err
	}
	s.add("export HOME=%s", quoted["HOME"])
	s.add("export USER=%s", quoted["USER"])
	s.add("export LOGNAME=%s", quoted["LOGNAME"])
	return nil
}

func (s *bashScript) MkdirAll(path string) error {
	if err := checkSafe("path", path); err != nil {
		return err
	}
	s.add("mkdir -p %s", quotePosix(path))
	return nil
}

func (s *bashScript) Copy(src string, dst string) error {
	quoted, err := s.quoteAll(map[string]string{"src": src, "dst": dst})
	if err != nil {
		return err
	}
	s.add("cp %s %s", quoted["src"], quoted["dst"])
	return nil
}

func (s *bashScript) HashTo(src string, sumPath string) error {
	quoted, err := s.quoteAll(map[string]string{"src": src, "sum": sumPath})
	if err != nil {
		return err
	}
	s.add("sha256sum %s | cut -d' ' -f1 > %s", quoted["src"], quoted["sum"])
	return nil
}

func (s *bashScript) Run(bin string, args ...string) error {
	if err := checkSafe("bin", bin); err != nil {
		return err
	}
	parts := []string{quotePosix(bin)}
	for _, arg := range args {
		if err := checkSafe("arg", arg); err != nil {
			return err
		}
		parts = append(parts, quotePosix(arg))
	}
	s.lines = append(s.lines, strings.Join(parts, " "))
	return nil
}

func (s *bashScript) WriteString(path string, content string) error {
	quoted, err := s.quoteAll(map[string]string{"path": path, "content": content})
	if err != nil {
		return err
	}
	s.add("printf '%%s' %s > %s", quoted["content"], quoted["path"])
	return nil
}

func (s *bashScript) Remove(path string) error {
	if err := checkSafe("path", path); err != nil {
		return err
	}
	s.add("rm -f %s", quotePosix(path))
	return nil
}

func (s *bashScript) VerifyChecksum(backupPath string, sumPath string) error {
	quoted, err := s.quoteAll(map[string]string{"backup": backupPath, "sum": sumPath})
	if err != nil {
		return err
	}
	s.add("if [ ! -f %s ]; then echo 'checksum missing' >&2; exit 1; fi", quoted["sum"])
	s.add("EXPECTED=$(cat %s)", quoted["sum"])
	s.add("ACTUAL=$(sha256sum %s | cut -d' ' -f1)", quoted["backup"])
	s.lines = append(s.lines, `if [ "$EXPECTED" != "$ACTUAL" ]; then echo 'checksum mismatch' >&2; exit 1; fi`)
	return nil
}

func (s *bashScript) Body() string {
	return strings.Join(s.lines, "\n") + "\n"
}

func (s *bashScript) Ext() string { return ".sh" }
