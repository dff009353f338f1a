// Package fingerprint computes content digests used to detect no-op rewrites
// of build output files.
//
// A Digest is the lowercase hex SHA-256 of the content. Identical content
// always yields the identical digest; different content practically never
// collides.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Digest is a hex encoded SHA-256 content digest.
type Digest string

// String returns the digest as a string.
func (d Digest) String() string {
	return string(d)
}

// Sum returns the digest of data.
func Sum(data []byte) Digest {
	sum := sha256.Sum256(data)
	return Digest(hex.EncodeToString(sum[:]))
}

// SumFile returns the digest of the file at path without loading it into
// memory at once.
func SumFile(path string) (Digest, error) {
	f, err := os.Open(path) // nolint:gosec
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close() // nolint:errcheck

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Digest(hex.EncodeToString(h.Sum(nil))), nil
}

// Combine folds an ordered list of parts into one digest. Each part is
// length-prefixed so that ("ab", "c") and ("a", "bc") differ.
//
// Callers must order parts deterministically.
func Combine(parts ...string) Digest {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:%s;", len(p), p)
	}
	return Digest(hex.EncodeToString(h.Sum(nil)))
}
