package checksum

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFile_MatchesBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.jar")
	content := []byte("jar bytes here")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fromFile, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if fromFile != Bytes(content) {
		t.Fatalf("File and Bytes disagree: %q vs %q", fromFile, Bytes(content))
	}
}

func TestBytes_KnownVector(t *testing.T) {
	// sha256 of the empty input.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Bytes(nil); got != want {
		t.Fatalf("Bytes(nil) = %q, want %q", got, want)
	}
}

func TestFile_DetectsBitFlip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.jar")
	content := []byte("jar bytes here")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	before, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	content[0] ^= 0x01
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	after, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if before == after {
		t.Fatalf("expected digest to change after bit flip")
	}
}

func TestFile_Missing(t *testing.T) {
	if _, err := File(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
