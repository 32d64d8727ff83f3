// Package acquire downloads and verifies the external patcher tool.
//
// The tool is pinned by SHA-256: a cached or downloaded copy is either
// verified or deleted, never partially trusted. Transfer is delegated to
// whichever of curl or wget is installed.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/fjelltone/themepatch/internal/checksum"
	"github.com/fjelltone/themepatch/internal/messages"
	"github.com/fjelltone/themepatch/patcherr"
)

// Pinned release of the bitwig-theme-editor patcher tool.
const (
	DefaultToolURL    = "https://github.com/Berikai/bitwig-theme-editor/releases/download/2.2.0/bitwig-theme-editor-2.2.0.jar"
	DefaultToolName   = "bitwig-theme-editor-2.2.0.jar"
	DefaultToolSHA256 = "a3d90aed113cc92cc9f2c8ebb086a54f82f6e7edf70afac34d3fe378e9732e2d"
)

// Acquirer caches the patcher tool under <cacheRoot>/patcher.
type Acquirer struct {
	cacheDir  string
	url       string
	name      string
	sha256    string
	logOutput io.Writer

	// Timeout bounds the transfer subprocess. Zero disables the bound.
	Timeout time.Duration

	lookPath func(string) (string, error)
	transfer func(ctx context.Context, tool string, args []string) (string, error)
}

// New returns an Acquirer for the pinned tool release. Empty url, name, or
// sum fall back to the pinned defaults.
func New(cacheRoot string, url string, name string, sum string, logOutput io.Writer) *Acquirer {
	if url == "" {
		url = DefaultToolURL
	}
	if name == "" {
		name = DefaultToolName
	}
	if sum == "" {
		sum = DefaultToolSHA256
	}
	if logOutput == nil {
		logOutput = io.Discard
	}
	return &Acquirer{
		cacheDir:  filepath.Join(cacheRoot, "patcher"),
		url:       url,
		name:      name,
		sha256:    sum,
		logOutput: logOutput,
		lookPath:  exec.LookPath,
		transfer:  runTransfer,
	}
}

// ToolPath returns where the verified tool lives once cached.
func (a *Acquirer) ToolPath() string {
	return filepath.Join(a.cacheDir, a.name)
}

// EnsureAvailable returns the path to a checksum-verified tool, downloading
// it when the cache is empty or corrupt. An unverified artifact is never
// returned: a corrupt copy is deleted before any error is reported.
func (a *Acquirer) EnsureAvailable(ctx context.Context) (string, error) {
	toolPath := a.ToolPath()
	if err := a.verifyCached(toolPath); err == nil {
		_, _ = fmt.Fprintf(a.logOutput, messages.AcquireEventCachedFmt, toolPath)
		return toolPath, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		_, _ = fmt.Fprintf(a.logOutput, messages.AcquireEventCorruptFmt, err)
	}

	if err := os.MkdirAll(a.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf(messages.AcquireCreateCacheDirFmt, a.cacheDir, err)
	}

	// Concurrent processes may ensure the same tool; the lock makes the
	// download once-only per cache.
	if err := withFileLock(toolPath+".lock", func() error {
		if err := a.verifyCached(toolPath); err == nil {
			return nil
		}
		return a.download(ctx, toolPath)
	}); err != nil {
		return "", err
	}
	return toolPath, nil
}

// verifyCached checks the cached copy against the pinned digest, deleting
// it on mismatch. os.ErrNotExist means no cached copy.
func (a *Acquirer) verifyCached(toolPath string) error {
	if _, err := os.Stat(toolPath); err != nil {
		return err
	}
	actual, err := checksum.File(toolPath)
	if err != nil {
		return err
	}
	if actual != a.sha256 {
		_ = os.Remove(toolPath)
		return fmt.Errorf(messages.AcquireChecksumFmt, toolPath, a.sha256, actual, patcherr.ErrChecksumMismatch)
	}
	return nil
}

func (a *Acquirer) download(ctx context.Context, toolPath string) error {
	tool, args, err := a.findTransfer(toolPath)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(a.logOutput, messages.AcquireEventDownloadFmt, tool, toolPath)
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}
	stderr, err := a.transfer(ctx, tool, args)
	if err != nil {
		_ = os.Remove(toolPath)
		if stderr != "" {
			return fmt.Errorf(messages.AcquireTransferStderrFmt, a.url, tool, stderr, patcherr.ErrDownloadFailed)
		}
		return fmt.Errorf(messages.AcquireTransferFailedFmt, a.url, tool, err, patcherr.ErrDownloadFailed)
	}

	if err := a.verifyCached(toolPath); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.logOutput, messages.AcquireEventVerifiedFmt, toolPath)
	return nil
}

// findTransfer picks the first available transfer mechanism. The two are
// interchangeable; curl wins when both exist.
func (a *Acquirer) findTransfer(toolPath string) (string, []string, error) {
	if _, err := a.lookPath("curl"); err == nil {
		return "curl", []string{"-L", "-o", toolPath, a.url}, nil
	}
	if _, err := a.lookPath("wget"); err == nil {
		return "wget", []string{"-O", toolPath, a.url}, nil
	}
	return "", nil, fmt.Errorf(messages.AcquireNoTransferToolFmt, patcherr.ErrDownloadFailed)
}

// TransferToolName reports which transfer mechanism would be used, for
// doctor output. ok is false when neither exists.
func (a *Acquirer) TransferToolName() (string, bool) {
	if _, err := a.lookPath("curl"); err == nil {
		return "curl", true
	}
	if _, err := a.lookPath("wget"); err == nil {
		return "wget", true
	}
	return "", false
}

// runTransfer executes the transfer tool, returning its stderr when the
// exit status is non-zero.
func runTransfer(ctx context.Context, tool string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, tool, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), err
	}
	return "", nil
}
