package enhance

import "strings"

// scoreChunk computes the deterministic quality score from a chunk's
// flags. Always in [0, 100].
func scoreChunk(c *EnhancedChunk) int {
	score := 100

	n := len(c.NormalizedContent)
	if n < 50 {
		score -= 30
	}
	if n > 5000 {
		score -= 10
	}
	if !c.SentencesComplete {
		score -= 20
	}
	if !c.EncodingClean {
		score -= 15
	}
	if c.IsDuplicate {
		score -= 25
	}
	if c.ContentTypeFinal == TypeRegulation {
		lower := strings.ToLower(c.NormalizedContent)
		// A "regulation" without an operative verb is a classification
		// smell; dock it.
		if !strings.Contains(lower, "shall") && !strings.Contains(lower, "must") {
			score -= 10
		}
	}
	if len(c.CrossRefs) > 0 {
		score += 5
	}
	if len(c.Entities) > 0 {
		score += 5
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
