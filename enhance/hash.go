package enhance

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// ContentHash computes the duplicate-detection key: a SHA-256 over the
// content with whitespace collapsed, punctuation stripped and case
// folded, so formatting variants of the same provision collide.
func ContentHash(content string) string {
	var sb strings.Builder
	sb.Grow(len(content))
	prevSpace := false
	for _, r := range strings.ToLower(content) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		}
		// Punctuation is dropped entirely.
	}
	canonical := strings.TrimSpace(sb.String())

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
