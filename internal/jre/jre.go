// Package jre locates a working Java runtime.
//
// Discovery is an ordered chain: an explicit override, Bitwig's bundled JRE
// (the most compatible choice), the search path, known vendor install roots
// on Windows, and finally JAVA_HOME. A candidate only counts when invoking
// it with -version actually succeeds; existence alone proves nothing.
package jre

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/fjelltone/themepatch/internal/messages"
	"github.com/fjelltone/themepatch/patcherr"
)

// Finder discovers a validated java executable.
type Finder struct {
	goos      string
	override  string
	logOutput io.Writer

	// Timeout bounds each -version probe. Zero disables the bound.
	Timeout time.Duration

	getenv   func(string) string
	lookPath func(string) (string, error)
	readDir  func(string) ([]os.DirEntry, error)
	stat     func(string) (os.FileInfo, error)
	homeDir  func() (string, error)
	validate func(ctx context.Context, javaPath string) bool
}

// NewFinder returns a Finder for goos. override, when non-empty, is tried
// before the discovery chain (still subject to validation).
func NewFinder(goos string, override string, logOutput io.Writer) *Finder {
	if logOutput == nil {
		logOutput = io.Discard
	}
	return &Finder{
		goos:      goos,
		override:  override,
		logOutput: logOutput,
		getenv:    os.Getenv,
		lookPath:  exec.LookPath,
		readDir:   os.ReadDir,
		stat:      os.Stat,
		homeDir:   homedir.Dir,
		validate:  runVersionCheck,
	}
}

// Find walks the discovery chain and returns the first java executable that
// validates. It fails with patcherr.ErrRuntimeNotFound when the chain is
// exhausted.
func (f *Finder) Find(ctx context.Context) (string, error) {
	if f.override != "" && f.valid(ctx, f.override) {
		_, _ = fmt.Fprintf(f.logOutput, messages.JreEventFoundFmt, f.override, "override")
		return f.override, nil
	}

	if path := f.findBundled(ctx); path != "" {
		_, _ = fmt.Fprintf(f.logOutput, messages.JreEventFoundFmt, path, messages.JreStageBundled)
		return path, nil
	}

	exe := f.exeName()
	if path, err := f.lookPath(exe); err == nil && f.valid(ctx, path) {
		_, _ = fmt.Fprintf(f.logOutput, messages.JreEventFoundFmt, path, messages.JreStagePath)
		return path, nil
	}

	if f.goos == "windows" {
		if path := f.findVendorRoots(ctx); path != "" {
			_, _ = fmt.Fprintf(f.logOutput, messages.JreEventFoundFmt, path, messages.JreStageInstallRoot)
			return path, nil
		}
	}

	if javaHome := f.getenv("JAVA_HOME"); javaHome != "" {
		path := filepath.Join(javaHome, "bin", exe)
		if f.exists(path) && f.valid(ctx, path) {
			_, _ = fmt.Fprintf(f.logOutput, messages.JreEventFoundFmt, path, messages.JreStageJavaHome)
			return path, nil
		}
	}

	return "", fmt.Errorf(messages.JreNotFoundFmt, patcherr.ErrRuntimeNotFound)
}

func (f *Finder) exeName() string {
	if f.goos == "windows" {
		return "java.exe"
	}
	return "java"
}

// findBundled searches Bitwig Studio's own install locations for the JRE it
// ships with.
func (f *Finder) findBundled(ctx context.Context) string {
	switch f.goos {
	case "windows":
		programFiles := f.getenv("ProgramFiles")
		if programFiles == "" {
			programFiles = `C:\Program Files`
		}
		bitwig := filepath.Join(programFiles, "Bitwig Studio")
		candidates := []string{
			filepath.Join(bitwig, "jre", "bin", "java.exe"),
			filepath.Join(bitwig, "lib", "jre", "bin", "java.exe"),
			filepath.Join(bitwig, "runtime", "bin", "java.exe"),
		}
		return f.firstValid(ctx, candidates)
	case "darwin":
		apps := []string{"/Applications/Bitwig Studio.app"}
		if home, err := f.homeDir(); err == nil {
			apps = append(apps, filepath.Join(home, "Applications", "Bitwig Studio.app"))
		}
		var candidates []string
		for _, app := range apps {
			candidates = append(candidates,
				filepath.Join(app, "Contents", "PlugIns", "jre", "Contents", "Home", "bin", "java"),
				filepath.Join(app, "Contents", "Resources", "app", "lib", "jre", "bin", "java"),
			)
		}
		return f.firstValid(ctx, candidates)
	default:
		roots := []string{"/opt/bitwig-studio", "/usr/share/bitwig-studio"}
		if home, err := f.homeDir(); err == nil {
			roots = append(roots, filepath.Join(home, ".local", "share", "bitwig-studio"))
		}
		var candidates []string
		for _, root := range roots {
			if !f.exists(root) {
				continue
			}
			// Version-numbered subdirectories first, then the root itself.
			if entries, err := f.readDir(root); err == nil {
				for _, entry := range entries {
					if !entry.IsDir() {
						continue
					}
					versionDir := filepath.Join(root, entry.Name())
					candidates = append(candidates,
						filepath.Join(versionDir, "lib", "jre", "bin", "java"),
						filepath.Join(versionDir, "jre", "bin", "java"),
					)
				}
			}
			candidates = append(candidates,
				filepath.Join(root, "lib", "jre", "bin", "java"),
				filepath.Join(root, "jre", "bin", "java"),
			)
		}
		return f.firstValid(ctx, candidates)
	}
}

// findVendorRoots scans common Windows JDK/JRE vendor directories.
func (f *Finder) findVendorRoots(ctx context.Context) string {
	programFiles := f.getenv("ProgramFiles")
	if programFiles == "" {
		programFiles = `C:\Program Files`
	}
	programFilesX86 := f.getenv("ProgramFiles(x86)")
	if programFilesX86 == "" {
		programFilesX86 = `C:\Program Files (x86)`
	}
	roots := []string{
		filepath.Join(programFiles, "Java"),
		filepath.Join(programFiles, "Eclipse Adoptium"),
		filepath.Join(programFiles, "Microsoft"),
		filepath.Join(programFiles, "Amazon Corretto"),
		filepath.Join(programFiles, "Zulu"),
		filepath.Join(programFiles, "BellSoft"),
		filepath.Join(programFiles, "OpenJDK"),
		filepath.Join(programFilesX86, "Java"),
	}
	for _, root := range roots {
		entries, err := f.readDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			candidate := filepath.Join(root, entry.Name(), "bin", "java.exe")
			if f.exists(candidate) && f.valid(ctx, candidate) {
				return candidate
			}
		}
	}
	return ""
}

func (f *Finder) firstValid(ctx context.Context, candidates []string) string {
	for _, candidate := range candidates {
		if f.exists(candidate) && f.valid(ctx, candidate) {
			return candidate
		}
	}
	return ""
}

// valid runs the -version probe, bounding each invocation with Timeout.
func (f *Finder) valid(ctx context.Context, javaPath string) bool {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	return f.validate(ctx, javaPath)
}

func (f *Finder) exists(path string) bool {
	_, err := f.stat(path)
	return err == nil
}

// runVersionCheck reports whether javaPath runs successfully.
func runVersionCheck(ctx context.Context, javaPath string) bool {
	cmd := exec.CommandContext(ctx, javaPath, "-version")
	return cmd.Run() == nil
}
