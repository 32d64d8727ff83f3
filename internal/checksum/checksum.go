// Package checksum computes SHA-256 digests for integrity checks.
//
// Every value this subsystem trusts (backups, the downloaded patcher tool)
// is gated on an exact digest match of the raw bytes.
package checksum

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// File returns the lowercase hex SHA-256 of the file at path.
func File(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// Bytes returns the lowercase hex SHA-256 of data.
func Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum)
}
