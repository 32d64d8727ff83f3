package jre

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fjelltone/themepatch/patcherr"
)

// fakeFinder returns a Finder whose filesystem and subprocess seams are
// all stubbed empty. Tests poke in what each scenario needs.
func fakeFinder(goos string) *Finder {
	f := NewFinder(goos, "", nil)
	f.getenv = func(string) string { return "" }
	f.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	f.readDir = func(string) ([]os.DirEntry, error) { return nil, fs.ErrNotExist }
	f.stat = func(string) (os.FileInfo, error) { return nil, fs.ErrNotExist }
	f.homeDir = func() (string, error) { return "", errors.New("no home") }
	f.validate = func(context.Context, string) bool { return true }
	return f
}

func TestFind_OverrideWins(t *testing.T) {
	f := fakeFinder("linux")
	f.override = "/custom/java"
	path, err := f.Find(context.Background())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if path != "/custom/java" {
		t.Fatalf("expected override, got %q", path)
	}
}

func TestFind_InvalidOverrideFallsThrough(t *testing.T) {
	f := fakeFinder("linux")
	f.override = "/broken/java"
	f.validate = func(ctx context.Context, javaPath string) bool {
		return javaPath == "/usr/bin/java"
	}
	f.lookPath = func(string) (string, error) { return "/usr/bin/java", nil }
	path, err := f.Find(context.Background())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if path != "/usr/bin/java" {
		t.Fatalf("expected PATH java after invalid override, got %q", path)
	}
}

func TestFind_BundledBeforePath(t *testing.T) {
	bundled := filepath.Join("/opt/bitwig-studio", "lib", "jre", "bin", "java")
	f := fakeFinder("linux")
	f.stat = func(path string) (os.FileInfo, error) {
		if path == "/opt/bitwig-studio" || path == bundled {
			return nil, nil
		}
		return nil, fs.ErrNotExist
	}
	f.lookPath = func(string) (string, error) { return "/usr/bin/java", nil }
	path, err := f.Find(context.Background())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if path != bundled {
		t.Fatalf("expected bundled JRE preferred, got %q", path)
	}
}

func TestFind_LinuxVersionedSubdir(t *testing.T) {
	root := "/usr/share/bitwig-studio"
	versioned := filepath.Join(root, "5.2.7", "lib", "jre", "bin", "java")
	f := fakeFinder("linux")
	f.stat = func(path string) (os.FileInfo, error) {
		if path == root || path == versioned {
			return nil, nil
		}
		return nil, fs.ErrNotExist
	}
	f.readDir = func(dir string) ([]os.DirEntry, error) {
		if dir == root {
			return readRealDirWithOneSubdir(t, "5.2.7"), nil
		}
		return nil, fs.ErrNotExist
	}
	path, err := f.Find(context.Background())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if path != versioned {
		t.Fatalf("expected versioned bundled JRE, got %q", path)
	}
}

// readRealDirWithOneSubdir builds a real DirEntry slice containing a single
// directory with the given name.
func readRealDirWithOneSubdir(t *testing.T, name string) []os.DirEntry {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	return entries
}

func TestFind_JavaHomeLast(t *testing.T) {
	f := fakeFinder("linux")
	javaHome := "/opt/jdk"
	expected := filepath.Join(javaHome, "bin", "java")
	f.getenv = func(key string) string {
		if key == "JAVA_HOME" {
			return javaHome
		}
		return ""
	}
	f.stat = func(path string) (os.FileInfo, error) {
		if path == expected {
			return nil, nil
		}
		return nil, fs.ErrNotExist
	}
	path, err := f.Find(context.Background())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if path != expected {
		t.Fatalf("expected JAVA_HOME java, got %q", path)
	}
}

func TestFind_WindowsVendorRoots(t *testing.T) {
	vendor := filepath.Join(`C:\Program Files`, "Eclipse Adoptium")
	expected := filepath.Join(vendor, "jdk-21", "bin", "java.exe")
	f := fakeFinder("windows")
	f.readDir = func(dir string) ([]os.DirEntry, error) {
		if dir == vendor {
			return readRealDirWithOneSubdir(t, "jdk-21"), nil
		}
		return nil, fs.ErrNotExist
	}
	f.stat = func(path string) (os.FileInfo, error) {
		if path == expected {
			return nil, nil
		}
		return nil, fs.ErrNotExist
	}
	path, err := f.Find(context.Background())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if path != expected {
		t.Fatalf("expected vendor JRE, got %q", path)
	}
}

func TestFind_NothingValidates(t *testing.T) {
	f := fakeFinder("linux")
	f.validate = func(context.Context, string) bool { return false }
	f.lookPath = func(string) (string, error) { return "/usr/bin/java", nil }
	_, err := f.Find(context.Background())
	if !errors.Is(err, patcherr.ErrRuntimeNotFound) {
		t.Fatalf("expected ErrRuntimeNotFound, got %v", err)
	}
}

func TestExeName(t *testing.T) {
	if got := fakeFinder("windows").exeName(); got != "java.exe" {
		t.Fatalf("windows exe = %q", got)
	}
	if got := fakeFinder("linux").exeName(); got != "java" {
		t.Fatalf("linux exe = %q", got)
	}
}

func TestFind_ValidationDeadlinePerProbe(t *testing.T) {
	f := fakeFinder("linux")
	f.override = "/custom/java"
	f.Timeout = time.Minute
	var sawDeadline bool
	f.validate = func(ctx context.Context, javaPath string) bool {
		_, sawDeadline = ctx.Deadline()
		return true
	}
	if _, err := f.Find(context.Background()); err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !sawDeadline {
		t.Fatalf("version probe must run under the configured deadline")
	}
}
