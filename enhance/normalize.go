package enhance

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// punctuationFixes maps Unicode punctuation that PDF extraction mangles
// to ASCII/common equivalents.
var punctuationFixes = strings.NewReplacer(
	"–", "-", // en dash
	"—", "-", // em dash
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"•", "-", // bullet
	" ", " ", // no-break space
	"°", " degrees ", // degree sign
)

// NormalizeText maps problematic punctuation to ASCII, applies NFKC,
// strips residual non-Latin-1 characters and collapses whitespace runs.
// The second return reports whether the input was already encoding-clean
// (normalization changed nothing beyond whitespace).
//
// Idempotent: NormalizeText(NormalizeText(x)) == NormalizeText(x).
func NormalizeText(s string) (string, bool) {
	fixed := punctuationFixes.Replace(s)
	fixed = norm.NFKC.String(fixed)

	var sb strings.Builder
	sb.Grow(len(fixed))
	for _, r := range fixed {
		if r <= 0xFF {
			sb.WriteRune(r)
		}
	}

	normalized := collapseWhitespace(sb.String())
	clean := normalized == collapseWhitespace(s)
	return normalized, clean
}

// collapseWhitespace reduces whitespace runs to single spaces and trims.
func collapseWhitespace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
