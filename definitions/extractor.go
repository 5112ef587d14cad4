package definitions

import (
	"log/slog"
	"strings"

	"github.com/lihtc-analytics/qapflow/enhance"
	"github.com/lihtc-analytics/qapflow/idgen"
)

// Extractor scans enhanced chunks for legal definitions.
type Extractor struct {
	logger *slog.Logger
	newID  idgen.Generator
}

// NewExtractor creates an Extractor. Nil arguments fall back to
// defaults.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger, newID: idgen.Definition}
}

// Extract runs the pattern registry over every chunk and returns the
// definitions found, in chunk order. Duplicate terms within a
// jurisdiction keep only the highest-confidence occurrence. After
// extraction, usage locations are resolved by scanning the full corpus
// for each term's recurrence.
func (e *Extractor) Extract(chunks []enhance.EnhancedChunk) []Definition {
	byTerm := make(map[string]*Definition)
	var order []string

	for _, c := range chunks {
		for _, d := range e.extractFromChunk(c) {
			key := strings.ToLower(d.Term)
			if prev, ok := byTerm[key]; ok {
				if d.Confidence > prev.Confidence {
					d.DefinitionID = prev.DefinitionID
					*prev = d
				}
				continue
			}
			dd := d
			byTerm[key] = &dd
			order = append(order, key)
		}
	}

	defs := make([]Definition, 0, len(order))
	for _, key := range order {
		d := *byTerm[key]
		d.UsageLocations = usagePages(d.Term, d.PDFPage, chunks)
		defs = append(defs, d)
	}

	e.logger.Debug("definition extraction complete",
		"chunks", len(chunks), "definitions", len(defs))
	return defs
}

// extractFromChunk applies each registry pattern to one chunk. A
// sentence region claimed by an earlier (stronger) pattern is not
// re-matched by later ones.
func (e *Extractor) extractFromChunk(c enhance.EnhancedChunk) []Definition {
	content := c.NormalizedContent
	var out []Definition
	claimed := make([]bool, len(content))

	for _, pat := range extractionPatterns {
		for _, loc := range pat.Re.FindAllStringSubmatchIndex(content, -1) {
			if regionClaimed(claimed, loc[0], loc[1]) {
				continue
			}
			term := strings.TrimSpace(content[loc[2]:loc[3]])
			body := strings.TrimSpace(content[loc[4]:loc[5]])
			if !plausibleTerm(term) {
				continue
			}
			markClaimed(claimed, loc[0], loc[1])

			d := Definition{
				DefinitionID:  e.newID(),
				Term:          term,
				Definition:    body,
				StateCode:     c.StateCode,
				PDFPage:       c.PageNumber,
				SectionTitle:  c.SectionTitle,
				SourceChunkID: c.ChunkID,
				Category:      classifyTerm(term, body),
				Confidence:    pat.Confidence,
				PatternID:     pat.ID,
				CrossRefs:     distinctMatches(crossRefRe, body),
			}
			if m := sectionRefRe.FindStringSubmatch(body); m != nil {
				d.SectionReference = m[0]
			}
			out = append(out, d)
		}
	}
	return out
}

// plausibleTerm rejects matches that are sentence fragments rather
// than defined terms.
func plausibleTerm(term string) bool {
	if len(term) < 2 || len(term) > 80 {
		return false
	}
	words := strings.Fields(term)
	if len(words) == 0 || len(words) > 8 {
		return false
	}
	// Fragments starting mid-sentence ("The program", "This section")
	// are prose, not terms.
	switch strings.ToLower(words[0]) {
	case "the", "this", "that", "these", "those", "a", "an", "it", "such":
		return false
	}
	return true
}

// usagePages lists the distinct pages, other than the defining page,
// where the term recurs across the corpus. Sorted by chunk order,
// which is page order within a jurisdiction.
func usagePages(term string, definingPage int, chunks []enhance.EnhancedChunk) []int {
	lower := strings.ToLower(term)
	var pages []int
	seen := map[int]bool{definingPage: true}
	for _, c := range chunks {
		if seen[c.PageNumber] {
			continue
		}
		if strings.Contains(strings.ToLower(c.NormalizedContent), lower) {
			seen[c.PageNumber] = true
			pages = append(pages, c.PageNumber)
		}
	}
	return pages
}

func regionClaimed(claimed []bool, start, end int) bool {
	for i := start; i < end && i < len(claimed); i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}

func markClaimed(claimed []bool, start, end int) {
	for i := start; i < end && i < len(claimed); i++ {
		claimed[i] = true
	}
}
