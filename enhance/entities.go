package enhance

import "regexp"

// entityPatterns pull out the named values downstream reports key on.
var entityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`),              // dollar amounts
	regexp.MustCompile(`\b\d+(?:\.\d+)?\s*(?:%|percent)\b`), // percentages
	regexp.MustCompile(`\bForm\s+[A-Z0-9-]+\b`),             // agency forms
	regexp.MustCompile(`\b(?:19|20)\d{2}\b`),                // years
}

// crossRefRe finds citations to other sections inside a chunk.
var crossRefRe = regexp.MustCompile(`(?:Section|§)\s*(\d{3,5})(?:\(([a-z])\))?`)

// extractEntities returns the distinct entity strings found in content,
// in first-occurrence order.
func extractEntities(content string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, pat := range entityPatterns {
		for _, m := range pat.FindAllString(content, -1) {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out
}

// extractCrossRefs returns the distinct section citations found in
// content, in first-occurrence order.
func extractCrossRefs(content string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range crossRefRe.FindAllString(content, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
