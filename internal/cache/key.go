// Package cache keeps recently extracted programs in memory, keyed by the
// file's path and content, so watch loops and MCP calls skip unchanged files.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key identifies one version of a file. Renaming a file or changing a single
// byte yields a new key.
func Key(path string, source []byte) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(source)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash is the SHA-256 of source alone, as stored with persisted runs.
func ContentHash(source []byte) string {
	h := sha256.Sum256(source)
	return hex.EncodeToString(h[:])
}
