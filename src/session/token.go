package session

import (
	"crypto/rand"
	"fmt"
)

const (
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tokenLength   = 8
)

// newToken generates a random uppercase-alphanumeric session identifier from
// a cryptographic source. Collisions against live sessions are handled by
// the caller regenerating, never by overwriting.
func newToken() (string, error) {
	buf := make([]byte, tokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	for i, b := range buf {
		buf[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(buf), nil
}
