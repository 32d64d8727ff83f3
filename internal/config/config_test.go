package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse_FullConfig(t *testing.T) {
	data := []byte(`
cache_root = "/var/cache/themepatch"
temp_root = "/var/tmp/themepatch"
java_path = "/usr/bin/java"
tool_url = "https://example.test/tool.jar"
tool_sha256 = "a3d90aed113cc92cc9f2c8ebb086a54f82f6e7edf70afac34d3fe378e9732e2d"
timeout_seconds = 120
`)
	cfg, err := Parse(data, "test.toml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.CacheRoot != "/var/cache/themepatch" || cfg.JavaPath != "/usr/bin/java" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.TimeoutSeconds != 120 {
		t.Fatalf("timeout = %d", cfg.TimeoutSeconds)
	}
}

func TestParse_RejectsBadSha(t *testing.T) {
	cases := []string{
		`tool_sha256 = "xyz"`,
		`tool_sha256 = "A3D90AED113CC92CC9F2C8EBB086A54F82F6E7EDF70AFAC34D3FE378E9732E2D"`,
		`tool_sha256 = "a3d90aed"`,
	}
	for _, body := range cases {
		if _, err := Parse([]byte(body), "test.toml"); err == nil {
			t.Fatalf("expected rejection for %q", body)
		}
	}
}

func TestParse_RejectsNegativeTimeout(t *testing.T) {
	if _, err := Parse([]byte(`timeout_seconds = -5`), "test.toml"); err == nil {
		t.Fatalf("expected rejection of negative timeout")
	}
}

func TestParse_MalformedToml(t *testing.T) {
	_, err := Parse([]byte(`cache_root = [broken`), "broken.toml")
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !strings.Contains(err.Error(), "broken.toml") {
		t.Fatalf("error should name the source: %v", err)
	}
}

func TestLoadOptional_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if *cfg != (Config{}) {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestLoadOptional_BrokenFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`tool_sha256 = "nope"`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadOptional(path); err == nil {
		t.Fatalf("a present but invalid config must not be ignored")
	}
}

func TestResolveTempRoot(t *testing.T) {
	cfg := &Config{TempRoot: "/custom/tmp"}
	if got := cfg.ResolveTempRoot(); got != "/custom/tmp" {
		t.Fatalf("ResolveTempRoot = %q", got)
	}
	def := (&Config{}).ResolveTempRoot()
	if filepath.Base(def) != "themepatch" {
		t.Fatalf("default temp root = %q", def)
	}
}

func TestResolveCacheRoot(t *testing.T) {
	cfg := &Config{CacheRoot: "/custom/cache"}
	got, err := cfg.ResolveCacheRoot()
	if err != nil {
		t.Fatalf("ResolveCacheRoot: %v", err)
	}
	if got != "/custom/cache" {
		t.Fatalf("ResolveCacheRoot = %q", got)
	}
}
