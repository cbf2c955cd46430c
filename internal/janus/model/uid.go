package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeUID strips separator characters from a raw credential UID and
// uppercases it, so "04:a1:b2" and "04-A1-B2" normalize identically.
// Only alphanumeric runes survive.
func NormalizeUID(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		}
	}
	return b.String()
}

// HashUID returns the hex SHA-256 digest of a normalized UID. This is the
// only form in which credentials are stored or compared; the raw UID is
// never persisted. Deterministic, collision-free for practical purposes.
func HashUID(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
