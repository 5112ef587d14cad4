// Package regmap maps extracted QAP content onto a jurisdiction's
// statutory section architecture and mines legal references out of it.
//
// The section table is configuration, not derived data: it is shipped as
// a versioned YAML artifact per jurisdiction and loaded (or embedded)
// at startup. A section with no matched content is reported as NO
// CONTENT and excluded from statistics, never treated as fatal.
package regmap

// SectionSpec is one statutory section as configured for a
// jurisdiction.
type SectionSpec struct {
	Number        string `yaml:"number" json:"number"`
	Title         string `yaml:"title" json:"title"`
	Description   string `yaml:"description" json:"description"`
	LIHTCCategory string `yaml:"lihtc_category" json:"lihtc_category,omitempty"`
}

// JurisdictionTable is the full configured architecture for one
// jurisdiction.
type JurisdictionTable struct {
	Jurisdiction string        `yaml:"jurisdiction" json:"jurisdiction"`
	Agency       string        `yaml:"agency" json:"agency"`
	Sections     []SectionSpec `yaml:"sections" json:"sections"`
}

// LegalReference is one citation found inside a section's content, with
// a context window for human review.
type LegalReference struct {
	Type     string `json:"type"`
	Citation string `json:"citation"`
	Context  string `json:"context"`
}

// MappedSection is the analysis result for one configured section.
// Found=false means NO CONTENT: the section exists in the architecture
// but no extracted content matched it this run.
type MappedSection struct {
	SectionSpec

	Found      bool             `json:"found"`
	ContentKey string           `json:"content_key,omitempty"`
	CharCount  int              `json:"char_count"`
	References []LegalReference `json:"references,omitempty"`
	CrossRefs  []string         `json:"cross_refs,omitempty"`
}

// RefCounts aggregates reference counts by type for one section.
func (s *MappedSection) RefCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range s.References {
		counts[r.Type]++
	}
	return counts
}

// Report is the full architecture analysis for one jurisdiction run.
// FoundCount+len(Missing) always equals len(table.Sections).
type Report struct {
	Jurisdiction   string          `json:"jurisdiction"`
	Agency         string          `json:"agency"`
	Sections       []MappedSection `json:"sections"`
	Missing        []string        `json:"missing"` // section numbers with NO CONTENT
	FoundCount     int             `json:"found_count"`
	TotalChars     int             `json:"total_chars"`
	TotalRefs      int             `json:"total_refs"`
	TotalCrossRefs int             `json:"total_cross_refs"`
	DensestSection string          `json:"densest_section,omitempty"` // most legal refs per 1k chars
	LargestSection string          `json:"largest_section,omitempty"`
}
