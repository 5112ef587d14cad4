package regmap

import (
	"regexp"
	"sort"
)

// Reference types, keyed by the pattern registry below.
const (
	RefIRC        = "irc"
	RefCFR        = "cfr"
	RefPublicLaw  = "public_law"
	RefHealthSafe = "health_safety_code"
	RefRevTax     = "revenue_taxation_code"
	RefInternal   = "internal"
)

// contextWindow is the number of characters captured on each side of a
// citation for human review.
const contextWindow = 50

// refPatterns is the fixed per-type citation registry. Internal
// cross-references cover the 10300s sibling-section family.
var refPatterns = []struct {
	Type string
	Re   *regexp.Regexp
}{
	{RefIRC, regexp.MustCompile(`(?:IRC|Internal Revenue Code)\s+[Ss]ection[s]?\s+\d+[\w().]*`)},
	{RefCFR, regexp.MustCompile(`\d+\s+C\.?F\.?R\.?\s+(?:Part\s+)?[\d.]+`)},
	{RefPublicLaw, regexp.MustCompile(`Public Law\s+\d+-\d+`)},
	{RefHealthSafe, regexp.MustCompile(`Health (?:and|&) Safety Code\s+[Ss]ection[s]?\s+[\d.]+`)},
	{RefRevTax, regexp.MustCompile(`Revenue (?:and|&) Taxation Code\s+[Ss]ection[s]?\s+[\d.]+`)},
	{RefInternal, regexp.MustCompile(`(?:Section\s+|§\s*)103\d\d`)},
}

var internalNumRe = regexp.MustCompile(`103\d\d`)

// extractReferences runs the citation registry over content, capturing
// a ±50-character context window around each match.
func extractReferences(content string) []LegalReference {
	var refs []LegalReference
	for _, pat := range refPatterns {
		for _, loc := range pat.Re.FindAllStringIndex(content, -1) {
			start := loc[0] - contextWindow
			if start < 0 {
				start = 0
			}
			end := loc[1] + contextWindow
			if end > len(content) {
				end = len(content)
			}
			refs = append(refs, LegalReference{
				Type:     pat.Type,
				Citation: content[loc[0]:loc[1]],
				Context:  content[start:end],
			})
		}
	}
	return refs
}

// internalCrossRefs returns the deduplicated, sorted set of sibling
// section numbers cited in content.
func internalCrossRefs(content string) []string {
	seen := make(map[string]bool)
	for _, loc := range refPatterns[len(refPatterns)-1].Re.FindAllString(content, -1) {
		if num := internalNumRe.FindString(loc); num != "" {
			seen[num] = true
		}
	}
	out := make([]string, 0, len(seen))
	for num := range seen {
		out = append(out, num)
	}
	sort.Strings(out)
	return out
}
