package patch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMarkerPath(t *testing.T) {
	cases := []struct {
		target string
		want   string
	}{
		{"/opt/bitwig/bitwig.jar", "/opt/bitwig/bitwig.patched"},
		{"bitwig.jar", "bitwig.patched"},
		{"/opt/noext", "/opt/noext.patched"},
	}
	for _, tc := range cases {
		if got := MarkerPath(tc.target); got != tc.want {
			t.Fatalf("MarkerPath(%q) = %q, want %q", tc.target, got, tc.want)
		}
	}
}

func TestIsPatched(t *testing.T) {
	target := filepath.Join(t.TempDir(), "bitwig.jar")
	if IsPatched(target) {
		t.Fatalf("missing marker reported patched")
	}
	if err := os.WriteFile(MarkerPath(target), []byte("patched"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	if !IsPatched(target) {
		t.Fatalf("present marker not reported")
	}
}

func TestReportsAlreadyPatched(t *testing.T) {
	if !reportsAlreadyPatched("The jar is already patched!", "") {
		t.Fatalf("stdout indicator missed")
	}
	if !reportsAlreadyPatched("", "warning: already patched") {
		t.Fatalf("stderr indicator missed")
	}
	if reportsAlreadyPatched("Patching complete", "") {
		t.Fatalf("false positive on success output")
	}
}
