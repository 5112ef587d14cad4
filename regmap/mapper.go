package regmap

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/lihtc-analytics/qapflow/enhance"
)

// Mapper maps extracted content onto a jurisdiction's configured
// architecture.
type Mapper struct {
	table  *JurisdictionTable
	logger *slog.Logger
}

// NewMapper creates a Mapper for one jurisdiction table.
func NewMapper(table *JurisdictionTable, logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{table: table, logger: logger}
}

// ContentBySection groups enhanced chunks into section-keyed content
// blobs using each chunk's section title. Duplicate-flagged chunks are
// excluded. Keys preserve the source titles; matching against the
// configured architecture is the mapper's job.
func ContentBySection(chunks []enhance.EnhancedChunk) map[string]string {
	var order []string
	parts := make(map[string][]string)
	for _, c := range chunks {
		if c.IsDuplicate {
			continue
		}
		key := c.SectionTitle
		if key == "" {
			key = "untitled"
		}
		if _, ok := parts[key]; !ok {
			order = append(order, key)
		}
		parts[key] = append(parts[key], c.NormalizedContent)
	}
	out := make(map[string]string, len(order))
	for _, key := range order {
		out[key] = strings.Join(parts[key], "\n")
	}
	return out
}

// Map analyzes the content map against every configured section and
// returns the full report. Sections with no matching content are
// recorded as missing and excluded from the statistics.
func (m *Mapper) Map(content map[string]string) *Report {
	rep := &Report{
		Jurisdiction: m.table.Jurisdiction,
		Agency:       m.table.Agency,
	}

	var densest string
	var densestScore float64
	var largest string
	var largestChars int

	for _, spec := range m.table.Sections {
		sec := MappedSection{SectionSpec: spec}

		key, text := m.locate(spec, content)
		if key == "" {
			rep.Missing = append(rep.Missing, spec.Number)
			rep.Sections = append(rep.Sections, sec)
			m.logger.Debug("section has no content", "jurisdiction", m.table.Jurisdiction, "section", spec.Number)
			continue
		}

		sec.Found = true
		sec.ContentKey = key
		sec.CharCount = len(text)
		sec.References = extractReferences(text)
		sec.CrossRefs = internalCrossRefs(text)

		rep.FoundCount++
		rep.TotalChars += sec.CharCount
		rep.TotalRefs += len(sec.References)
		rep.TotalCrossRefs += len(sec.CrossRefs)

		if sec.CharCount > largestChars {
			largestChars = sec.CharCount
			largest = spec.Number
		}
		if sec.CharCount > 0 {
			score := float64(len(sec.References)) / float64(sec.CharCount) * 1000
			if score > densestScore {
				densestScore = score
				densest = spec.Number
			}
		}

		rep.Sections = append(rep.Sections, sec)
	}

	rep.DensestSection = densest
	rep.LargestSection = largest
	return rep
}

// locate finds the content blob for a configured section: exact key
// match on number or title first, then a substring fallback over all
// keys using the bare section number or the slugified title.
func (m *Mapper) locate(spec SectionSpec, content map[string]string) (string, string) {
	if text, ok := content[spec.Number]; ok {
		return spec.Number, text
	}
	if text, ok := content[spec.Title]; ok {
		return spec.Title, text
	}

	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic fallback when several keys match

	slug := slugify(spec.Title)
	for _, k := range keys {
		lower := strings.ToLower(k)
		if strings.Contains(lower, spec.Number) || (slug != "" && strings.Contains(slugify(k), slug)) {
			return k, content[k]
		}
	}
	return "", ""
}

// slugify lowercases and strips a title down to letters, digits and
// single underscores.
func slugify(s string) string {
	var sb strings.Builder
	prevUnder := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			prevUnder = false
		default:
			if !prevUnder {
				sb.WriteByte('_')
				prevUnder = true
			}
		}
	}
	return strings.Trim(sb.String(), "_")
}
