package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// EncodeHash returns the hex sha256 of s. Version payloads are hashed so
// "was this payload ever live" is a cheap equality lookup.
func EncodeHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
