package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DefaultLength is the number of random bytes used for session and CSRF tokens.
const DefaultLength = 32

// Generate returns a cryptographically random token encoded as lowercase hex.
// The encoded string is 2*byteLength characters long.
func Generate(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = DefaultLength
	}

	b := make([]byte, byteLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return hex.EncodeToString(b), nil
}

// ValidFormat reports whether token is exactly hexLength lowercase hex characters.
// It is a cheap pre-filter used to reject malformed tokens before any storage lookup.
func ValidFormat(token string, hexLength int) bool {
	if len(token) != hexLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Hash returns the SHA-256 digest of a raw token as lowercase hex.
// Only this digest is ever persisted; the raw token is returned to the
// client once and never stored.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
