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

// Start-Process reports ERROR_CANCELLED when the UAC prompt is dismissed.
const uacCancelledExitCode = 1223

// WindowsPlatform elevates through a UAC prompt by running generated
// PowerShell scripts with Start-Process -Verb RunAs.
type WindowsPlatform struct {
	tempRoot  string
	logOutput io.Writer

	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) (string, string, int, error)
}

// NewWindowsPlatform returns the PowerShell/UAC platform variant.
func NewWindowsPlatform(tempRoot string, logOutput io.Writer) *WindowsPlatform {
	if logOutput == nil {
		logOutput = io.Discard
	}
	return &WindowsPlatform{
		tempRoot:  tempRoot,
		logOutput: logOutput,
		lookPath:  exec.LookPath,
		run:       runCapture,
	}
}

// CanWrite probes write permission for path.
func (p *WindowsPlatform) CanWrite(path string) bool {
	return CanWrite(path)
}

// HasMechanism reports whether powershell is on the search path.
func (p *WindowsPlatform) HasMechanism() bool {
	_, err := p.lookPath("powershell")
	return err == nil
}

// MechanismName names the elevation mechanism.
func (p *WindowsPlatform) MechanismName() string { return "powershell RunAs" }

// NewScript returns an empty PowerShell script with the standard preamble.
func (p *WindowsPlatform) NewScript() Script {
	return &psScript{lines: []string{"$ErrorActionPreference = 'Stop'"}}
}

// RunElevated executes the script under UAC elevation and classifies the
// outcome.
func (p *WindowsPlatform) RunElevated(ctx context.Context, script Script) (Result, error) {
	path, err := writeTempScript(p.tempRoot, "elevated", script.Body(), script.Ext())
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			_, _ = fmt.Fprintf(p.logOutput, messages.ElevateEventCleanupFmt, err)
		}
	}()

	launch := fmt.Sprintf(
		"Start-Process -FilePath 'powershell' -ArgumentList '-NoProfile', '-ExecutionPolicy', 'Bypass', '-File', %s -Verb RunAs -Wait -WindowStyle Hidden",
		quotePS(path),
	)

	_, _ = fmt.Fprintf(p.logOutput, messages.ElevateEventRunFmt, p.MechanismName(), path)
	stdout, stderr, exitCode, err := p.run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", launch)
	if err != nil {
		return Result{}, fmt.Errorf(messages.ElevateRunFmt, p.MechanismName(), err)
	}
	result := Result{Stdout: stdout, Stderr: stderr}
	if exitCode == 0 {
		return result, nil
	}
	cancelled := exitCode == uacCancelledExitCode ||
		strings.Contains(stderr, "canceled") ||
		strings.Contains(stderr, "cancelled")
	return result, classifyFailure(cancelled, stderr)
}

// psScript renders PowerShell lines with single-quoted, escaped values.
type psScript struct {
	lines []string
}

func (s *psScript) add(format string, quoted ...string) {
	args := make([]any, len(quoted))
	for i, q := range quoted {
		args[i] = q
	}
	s.lines = append(s.lines, fmt.Sprintf(format, args...))
}

func (s *psScript) quoteAll(pairs map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for name, value := range pairs {
		if err := checkSafe(name, value); err != nil {
			return nil, err
		}
		out[name] = quotePS(value)
	}
	return out, nil
}

func (s *psScript) ExportIdentity(id Identity) error {
	quoted, err := s.quoteAll(map[string]string{"USERPROFILE": id.Home, "USERNAME": id.User})
	if err != nil {
		return err
	}
	s.add("$env:USERPROFILE = %s", quoted["USERPROFILE"])
	s.add("$env:USERNAME = %s", quoted["USERNAME"])
	return nil
}

func (s *psScript) MkdirAll(path string) error {
	if err := checkSafe("path", path); err != nil {
		return err
	}
	s.add("New-Item -ItemType Directory -Force -Path %s | Out-Null", quotePS(path))
	return nil
}

func (s *psScript) Copy(src string, dst string) error {
	quoted, err := s.quoteAll(map[string]string{"src": src, "dst": dst})
	if err != nil {
		return err
	}
	s.add("Copy-Item -Path %s -Destination %s -Force", quoted["src"], quoted["dst"])
	return nil
}

func (s *psScript) HashTo(src string, sumPath string) error {
	quoted, err := s.quoteAll(map[string]string{"src": src, "sum": sumPath})
	if err != nil {
		return err
	}
	s.add("$hash = (Get-FileHash -Path %s -Algorithm SHA256).Hash.ToLower()", quoted["src"])
	s.add("Set-Content -Path %s -Value $hash -NoNewline", quoted["sum"])
	return nil
}

func (s *psScript) Run(bin string, args ...string) error {
	if err := checkSafe("bin", bin); err != nil {
		return err
	}
	parts := []string{"&", quotePS(bin)}
	for _, arg := range args {
		if err := checkSafe("arg", arg); err != nil {
			return err
		}
		parts = append(parts, quotePS(arg))
	}
	s.lines = append(s.lines, strings.Join(parts, " "))
	return nil
}

func (s *psScript) WriteString(path string, content string) error {
	quoted, err := s.quoteAll(map[string]string{"path": path, "content": content})
	if err != nil {
		return err
	}
	s.add("Set-Content -Path %s -Value %s -NoNewline", quoted["path"], quoted["content"])
	return nil
}

func (s *psScript) Remove(path string) error {
	if err := checkSafe("path", path); err != nil {
		return err
	}
	s.add("Remove-Item -Path %s -Force -ErrorAction SilentlyContinue", quotePS(path))
	return nil
}

func (s *psScript) VerifyChecksum(backupPath string, sumPath string) error {
	quoted, err := s.quoteAll(map[string]string{"backup": backupPath, "sum": sumPath})
	if err != nil {
		return err
	}
	s.add("$expected = (Get-Content -Path %s -Raw).Trim()", quoted["sum"])
	s.add("$actual = (Get-FileHash -Path %s -Algorithm SHA256).Hash.ToLower()", quoted["backup"])
	s.lines = append(s.lines, "if ($expected -ne $actual) { throw 'checksum mismatch' }")
	return nil
}

func (s *psScript) Body() string {
	return strings.Join(s.lines, "\r\n") + "\r\n"
}

func (s *psScript) Ext() string { return ".ps1" }
