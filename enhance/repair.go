package enhance

import (
	"regexp"
	"strings"
	"unicode"
)

// closingVocabulary lists words that plausibly end a regulatory sentence.
// The append-a-period heuristic only fires when a truncated chunk trails
// off on one of these. Best-effort: occasionally wrong on merged lines,
// by specification.
var closingVocabulary = map[string]bool{
	"shall":    true,
	"must":     true,
	"will":     true,
	"required": true,
	"percent":  true,
	"points":   true,
	"dollars":  true,
}

// runTogetherRe finds sentence-ending punctuation glued to a capital
// letter, a common PDF extraction artifact.
var runTogetherRe = regexp.MustCompile(`([.!?])([A-Z])`)

// terminalPunctuation ends a complete sentence.
func endsWithTerminal(s string) bool {
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case '.', '!', '?', ':', ';':
		return true
	}
	return false
}

// RepairSentences fixes run-together sentences and appends a terminal
// period to truncated chunks. Returns the repaired text and whether any
// repair was applied.
//
// The period is appended only when all hold: the text is at least 50
// characters, does not already end in terminal punctuation, ends in a
// word character, has more than 5 words, and one of its trailing 1-3
// words belongs to the closing-clause vocabulary.
func RepairSentences(s string) (string, bool) {
	repaired := false

	if fixed := runTogetherRe.ReplaceAllString(s, "$1 $2"); fixed != s {
		s = fixed
		repaired = true
	}

	if shouldAppendPeriod(s) {
		s += "."
		repaired = true
	}

	return s, repaired
}

func shouldAppendPeriod(s string) bool {
	if len(s) < 50 || endsWithTerminal(s) {
		return false
	}
	last := rune(s[len(s)-1])
	if !unicode.IsLetter(last) && !unicode.IsDigit(last) {
		return false
	}

	words := strings.Fields(s)
	if len(words) <= 5 {
		return false
	}

	tail := words
	if len(tail) > 3 {
		tail = tail[len(tail)-3:]
	}
	for _, w := range tail {
		w = strings.ToLower(strings.Trim(w, ",()\"'"))
		if closingVocabulary[w] {
			return true
		}
	}
	return false
}
