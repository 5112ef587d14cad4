// Package definitions mines legal term definitions out of enhanced QAP
// chunks.
//
// Extraction is regex-registry driven and best-effort: an empty result
// for a document is valid output, not an error. Every Definition
// inherits its page number and section title verbatim from the chunk it
// was extracted from, never re-derived.
package definitions

// Definition is one extracted legal term-and-meaning pair with
// page-accurate source attribution.
type Definition struct {
	DefinitionID     string   `json:"definition_id"`
	Term             string   `json:"term"`
	Definition       string   `json:"definition"`
	StateCode        string   `json:"state_code"`
	PDFPage          int      `json:"pdf_page"`
	SectionTitle     string   `json:"section_title"`
	SectionReference string   `json:"section_reference,omitempty"`
	SourceChunkID    string   `json:"source_chunk_id"`
	Category         string   `json:"category"`
	Confidence       float64  `json:"confidence"`
	PatternID        string   `json:"pattern_id"`
	CrossRefs        []string `json:"cross_refs,omitempty"`
	UsageLocations   []int    `json:"usage_locations,omitempty"` // pages where the term recurs
}

// Categories a definition can classify into, by keyword affinity.
const (
	CategoryIncome        = "income_limits"
	CategoryScoring       = "scoring_criteria"
	CategoryCompliance    = "compliance"
	CategoryDevelopment   = "development_standards"
	CategoryFinancing     = "financing"
	CategoryAccessibility = "accessibility"
	CategoryGeneral       = "general"
)
