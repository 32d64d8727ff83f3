// Package config loads the optional themepatch config file.
//
// Everything has a working default; the file exists so users with unusual
// setups (custom cache location, proxy-hosted tool mirror, slow machines)
// can override without environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/fjelltone/themepatch/internal/messages"
)

// Config holds the optional overrides read from config.toml.
type Config struct {
	CacheRoot      string `toml:"cache_root"`
	TempRoot       string `toml:"temp_root"`
	JavaPath       string `toml:"java_path"`
	ToolURL        string `toml:"tool_url"`
	ToolSHA256     string `toml:"tool_sha256"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

var shaPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// DefaultPath returns ~/.config/themepatch/config.toml.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf(messages.ConfigResolveHomeFmt, err)
	}
	return filepath.Join(home, ".config", "themepatch", "config.toml"), nil
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(messages.ConfigReadFileFmt, path, err)
	}
	return Parse(data, path)
}

// LoadOptional reads path when it exists and returns zero-value defaults
// when it does not. Any other read or parse failure is an error: a present
// but broken config should never be silently ignored.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes and validates raw TOML. source names the origin for error
// messages.
func Parse(data []byte, source string) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf(messages.ConfigParseFmt, source, err)
	}
	if err := cfg.validate(source); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate(source string) error {
	if c.ToolSHA256 != "" && !shaPattern.MatchString(c.ToolSHA256) {
		return fmt.Errorf(messages.ConfigInvalidShaFmt, source)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf(messages.ConfigNegativeTimeoutFmt, source)
	}
	return nil
}

// ResolveCacheRoot returns the configured cache root or the platform
// default <user-cache-dir>/themepatch.
func (c *Config) ResolveCacheRoot() (string, error) {
	if c.CacheRoot != "" {
		return c.CacheRoot, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf(messages.ConfigResolveCacheDirFmt, err)
	}
	return filepath.Join(base, "themepatch"), nil
}

// ResolveTempRoot returns the configured temp root or the platform default
// <tmp>/themepatch.
func (c *Config) ResolveTempRoot() string {
	if c.TempRoot != "" {
		return c.TempRoot
	}
	return filepath.Join(os.TempDir(), "themepatch")
}
