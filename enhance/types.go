// Package enhance normalizes, repairs, classifies, deduplicates and
// scores raw QAP text chunks.
//
// Enhancement is a two-pass algorithm: pass one normalizes, classifies
// and hashes every chunk; pass two resolves duplicate groups, retaining
// only the best-scoring chunk of each group. All per-chunk processing is
// deterministic and exception-free.
package enhance

import "github.com/lihtc-analytics/qapflow/docload"

// ContentType classifies a chunk's structure.
type ContentType string

const (
	TypeText       ContentType = "text"
	TypeTable      ContentType = "table"
	TypeList       ContentType = "list"
	TypeRegulation ContentType = "regulation"
	TypeAppendix   ContentType = "appendix"
)

// EnhancedChunk is a RawChunk plus derived quality fields. QualityScore
// is always recomputable from the flags; a chunk with IsDuplicate=true
// always carries the DuplicateGroupID of its retained sibling.
type EnhancedChunk struct {
	docload.RawChunk

	NormalizedContent string      `json:"normalized_content"`
	ContentTypeFinal  ContentType `json:"content_type_final"`
	ContentHash       string      `json:"content_hash"`
	QualityScore      int         `json:"quality_score"` // 0-100
	EncodingClean     bool        `json:"encoding_clean"`
	SentencesComplete bool        `json:"sentences_complete"`
	IsDuplicate       bool        `json:"is_duplicate"`
	DuplicateGroupID  string      `json:"duplicate_group_id,omitempty"`
	Entities          []string    `json:"entities,omitempty"`
	CrossRefs         []string    `json:"cross_refs,omitempty"`
}

// Result is the outcome of enhancing one jurisdiction's chunk stream.
// Chunks preserves the page/section order of the input; pruned duplicates
// are reported separately, flagged with their surviving sibling.
type Result struct {
	Chunks            []EnhancedChunk `json:"chunks"`
	Duplicates        []EnhancedChunk `json:"duplicates,omitempty"`
	DroppedEmpty      int             `json:"dropped_empty"`
	DuplicatesRemoved int             `json:"duplicates_removed"`
}
