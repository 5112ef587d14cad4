package docload

import (
	"strings"
	"unicode"
)

// ExtractionQuality captures metrics about native PDF text extraction.
// Low ratios flag scanned or font-mangled documents that need the
// external converter (or OCR) instead of the content-stream path.
type ExtractionQuality struct {
	PageCount      int     `json:"page_count"`
	CharsPerPage   float64 `json:"chars_per_page"`
	PrintableRatio float64 `json:"printable_ratio"`
	WordlikeRatio  float64 `json:"wordlike_ratio"`
}

// Degraded reports whether extraction likely lost text.
func (q ExtractionQuality) Degraded() bool {
	return q.CharsPerPage < 50 || q.PrintableRatio < 0.85
}

// Merge folds another file's metrics into q, page-weighted, so a single
// record can cover a jurisdiction split across several section PDFs.
func (q *ExtractionQuality) Merge(other ExtractionQuality) {
	if other.PageCount == 0 {
		return
	}
	if q.PageCount == 0 {
		*q = other
		return
	}
	total := float64(q.PageCount + other.PageCount)
	wq := float64(q.PageCount) / total
	wo := float64(other.PageCount) / total
	q.CharsPerPage = q.CharsPerPage*wq + other.CharsPerPage*wo
	q.PrintableRatio = q.PrintableRatio*wq + other.PrintableRatio*wo
	q.WordlikeRatio = q.WordlikeRatio*wq + other.WordlikeRatio*wo
	q.PageCount += other.PageCount
}

// printableRatio returns the ratio of printable characters.
// Excludes PUA U+E000-U+F8FF, control chars < U+0020 (except \n\r\t), U+FFFD.
func printableRatio(text string) float64 {
	if len(text) == 0 {
		return 1.0
	}
	total, printable := 0, 0
	for _, r := range text {
		total++
		if isGarbageRune(r) {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(printable) / float64(total)
}

func isGarbageRune(r rune) bool {
	if r >= 0xE000 && r <= 0xF8FF {
		return true
	}
	if r == 0xFFFD {
		return true
	}
	if r < 0x0020 && r != '\n' && r != '\r' && r != '\t' {
		return true
	}
	return false
}

// wordlikeRatio returns the ratio of tokens of plausible word length
// (2-15 runes) to total tokens. Character-by-character extraction from
// broken font maps produces mostly single-rune tokens.
func wordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	wordlike := 0
	for _, f := range fields {
		if n := len([]rune(f)); n >= 2 && n <= 15 {
			wordlike++
		}
	}
	return float64(wordlike) / float64(len(fields))
}
