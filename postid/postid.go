// Package postid derives the short, stable identifier of a post from its
// logical path.
package postid

import (
	"crypto/sha256"
	"encoding/hex"
)

// Length is the number of hex characters in an identifier.
const Length = 12

// New returns the first Length hex characters of the SHA-256 digest of path.
// Identifiers live in a 48-bit namespace; collisions are not detected.
func New(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])[:Length]
}
