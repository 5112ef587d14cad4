package definitions

import (
	"regexp"
	"strings"
)

// categoryKeywords map keyword affinity to a definition category. The
// first category whose keywords hit wins, so order is most-specific
// first.
var categoryKeywords = []struct {
	Category string
	Words    []string
}{
	{CategoryAccessibility, []string{"accessible", "mobility", "hearing", "vision", "disability", "ada"}},
	{CategoryIncome, []string{"income", "ami", "median", "rent limit", "gross rent"}},
	{CategoryScoring, []string{"point", "score", "scoring", "tiebreaker", "ranking", "competitive"}},
	{CategoryCompliance, []string{"compliance", "monitoring", "certification", "audit", "recapture", "violation"}},
	{CategoryFinancing, []string{"loan", "bond", "credit", "basis", "equity", "syndication", "debt"}},
	{CategoryDevelopment, []string{"construction", "rehabilitation", "unit", "site", "building", "density"}},
}

// classifyTerm assigns a category from keyword affinity of the term and
// its definition body.
func classifyTerm(term, body string) string {
	haystack := strings.ToLower(term + " " + body)
	for _, ck := range categoryKeywords {
		for _, w := range ck.Words {
			if strings.Contains(haystack, w) {
				return ck.Category
			}
		}
	}
	return CategoryGeneral
}

// distinctMatches returns the distinct matches of re in s, in
// first-occurrence order.
func distinctMatches(re *regexp.Regexp, s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range re.FindAllString(s, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
