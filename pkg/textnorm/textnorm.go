// Package textnorm holds the whitespace and dedup normalization shared by
// chunking, cleaning and dataset merging.
package textnorm

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Normalize collapses every whitespace run (newlines included) into a
// single space and trims both ends. It is idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	return strings.Join(strings.Fields(text), " ")
}

// DedupNormalize prepares text for duplicate detection: lowercased,
// punctuation and symbols removed, whitespace collapsed.
func DedupNormalize(text string) string {
	lowered := strings.ToLower(text)
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, lowered)
	return Normalize(stripped)
}

// Fingerprint returns the hex SHA-256 of DedupNormalize(text).
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(DedupNormalize(text)))
	return hex.EncodeToString(sum[:])
}
