package enhance

import (
	"log/slog"
	"strings"

	"github.com/lihtc-analytics/qapflow/docload"
)

// minContentLength filters out chunks too short to carry meaning.
// Dropping them is a filter, not an error.
const minContentLength = 10

// Enhancer runs the two-pass enhancement over a jurisdiction's chunks.
type Enhancer struct {
	logger *slog.Logger
}

// NewEnhancer creates an Enhancer. A nil logger falls back to the default.
func NewEnhancer(logger *slog.Logger) *Enhancer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enhancer{logger: logger}
}

// Enhance processes a chunk stream. Pass one normalizes, repairs,
// classifies, hashes and scores every chunk; pass two collapses each
// duplicate group to its single best-scoring member and prunes the rest
// from the output set. Output order follows input order.
func (e *Enhancer) Enhance(raw []docload.RawChunk) Result {
	var res Result

	// Pass 1: per-chunk derivation.
	enhanced := make([]*EnhancedChunk, 0, len(raw))
	for _, rc := range raw {
		if len(strings.TrimSpace(rc.Content)) < minContentLength {
			res.DroppedEmpty++
			continue
		}

		c := &EnhancedChunk{RawChunk: rc}

		normalized, clean := NormalizeText(rc.Content)
		repaired, wasRepaired := RepairSentences(normalized)

		c.NormalizedContent = repaired
		c.EncodingClean = clean
		c.SentencesComplete = !wasRepaired && endsWithTerminal(repaired)
		c.ContentTypeFinal = Classify(rc.SectionTitle, repaired)
		c.ContentHash = ContentHash(repaired)
		c.Entities = extractEntities(repaired)
		c.CrossRefs = extractCrossRefs(repaired)
		c.QualityScore = scoreChunk(c)

		enhanced = append(enhanced, c)
	}

	// Pass 2: resolve duplicate groups. The first occurrence of a hash
	// anchors its group; the best-scoring member survives (ties go to the
	// earliest), the rest are pruned and flagged.
	groups := make(map[string][]*EnhancedChunk)
	order := make([]string, 0, len(enhanced))
	for _, c := range enhanced {
		if _, ok := groups[c.ContentHash]; !ok {
			order = append(order, c.ContentHash)
		}
		groups[c.ContentHash] = append(groups[c.ContentHash], c)
	}

	survivors := make(map[*EnhancedChunk]bool, len(enhanced))
	for _, hash := range order {
		group := groups[hash]
		best := group[0]
		for _, c := range group[1:] {
			if c.QualityScore > best.QualityScore {
				best = c
			}
		}
		survivors[best] = true

		for _, c := range group {
			if c == best {
				continue
			}
			c.IsDuplicate = true
			c.DuplicateGroupID = best.ChunkID
			c.QualityScore = scoreChunk(c)
			res.Duplicates = append(res.Duplicates, *c)
			res.DuplicatesRemoved++
		}
	}

	for _, c := range enhanced {
		if survivors[c] {
			res.Chunks = append(res.Chunks, *c)
		}
	}

	if res.DroppedEmpty > 0 || res.DuplicatesRemoved > 0 {
		e.logger.Debug("enhancement pruning",
			"dropped_empty", res.DroppedEmpty,
			"duplicates_removed", res.DuplicatesRemoved,
			"survivors", len(res.Chunks))
	}
	return res
}
