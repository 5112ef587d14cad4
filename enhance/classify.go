package enhance

import (
	"regexp"
	"strings"
)

// appendixTitleWords in a section title short-circuit classification.
var appendixTitleWords = []string{"appendix", "exhibit", "attachment", "schedule"}

// listLinePatterns detect bullet, numbered and lettered list lines.
// Declared as a registry so the markers are testable apart from Classify.
var listLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^\s*[-*•]\s+\S`),      // bullet lines
	regexp.MustCompile(`(?m)^\s*\d+[.)]\s+\S`),    // numbered lines
	regexp.MustCompile(`(?m)^\s*\(?[a-zA-Z]\)\s+`), // lettered lines
}

// regulationKeywords signal regulatory prose when they cluster.
var regulationKeywords = []string{
	"section", "subsection", "paragraph", "shall", "must",
	"required", "prohibited", "compliance", "violation", "penalty",
}

var (
	sectionSymbolRe  = regexp.MustCompile(`§\s*\d+`)
	numericTripletRe = regexp.MustCompile(`\b\d[\d,.]*\s+\d[\d,.]*\s+\d[\d,.]*\b`)
	pipeHeaderRe     = regexp.MustCompile(`(?m)^\s*\|.*\|\s*$`)
)

// Classify reclassifies a chunk's content type. Precedence: appendix
// (from the section title), then table, list, regulation, and finally
// plain text.
func Classify(sectionTitle, content string) ContentType {
	title := strings.ToLower(sectionTitle)
	for _, w := range appendixTitleWords {
		if strings.Contains(title, w) {
			return TypeAppendix
		}
	}

	if looksTabular(content) {
		return TypeTable
	}

	if listMatches(content) >= 2 {
		return TypeList
	}

	if looksRegulatory(content) {
		return TypeRegulation
	}

	return TypeText
}

func looksTabular(content string) bool {
	if strings.Count(content, "|") >= 3 {
		return true
	}
	if strings.Count(content, "\t") >= 5 {
		return true
	}
	if numericTripletRe.MatchString(content) {
		return true
	}
	return pipeHeaderRe.MatchString(content)
}

func listMatches(content string) int {
	n := 0
	for _, pat := range listLinePatterns {
		n += len(pat.FindAllString(content, -1))
	}
	return n
}

func looksRegulatory(content string) bool {
	if sectionSymbolRe.MatchString(content) {
		return true
	}
	lower := strings.ToLower(content)
	hits := 0
	for _, kw := range regulationKeywords {
		hits += strings.Count(lower, kw)
		if hits >= 3 {
			return true
		}
	}
	return false
}
