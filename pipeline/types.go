// Package pipeline orchestrates the full QAP run: PDF preprocessing,
// chunk extraction, enhancement, definition mining, section mapping and
// source-link annotation, fanned out per jurisdiction.
//
// Each jurisdiction is an independently failing unit of work. A panic
// or error in one jurisdiction is recorded in the aggregate failure
// list and never aborts its siblings. Results are self-contained per
// worker and merged only after the worker completes, so the merge needs
// no locking beyond one map insert per jurisdiction.
package pipeline

import (
	"time"

	"github.com/lihtc-analytics/qapflow/definitions"
	"github.com/lihtc-analytics/qapflow/docload"
	"github.com/lihtc-analytics/qapflow/enhance"
	"github.com/lihtc-analytics/qapflow/regmap"
	"github.com/lihtc-analytics/qapflow/sourcelink"
)

// ProcessingMetrics summarizes one jurisdiction's run. Extraction is set
// only for the native chunk source; the Docling path carries no
// extraction-quality signal.
type ProcessingMetrics struct {
	DurationMS        int64                      `json:"duration_ms"`
	RawChunks         int                        `json:"raw_chunks"`
	DroppedEmpty      int                        `json:"dropped_empty"`
	DuplicatesRemoved int                        `json:"duplicates_removed"`
	PagesSeen         int                        `json:"pages_seen"`
	Extraction        *docload.ExtractionQuality `json:"extraction,omitempty"`
}

// DefinitionsDatabase is the durable per-jurisdiction JSON artifact.
// All state is recomputed from source PDFs each run; these files are
// the only persistent output.
type DefinitionsDatabase struct {
	StateCode        string                   `json:"state_code"`
	ProcessingDate   time.Time                `json:"processing_date"`
	SourceFile       string                   `json:"source_file"`
	DefinitionsCount int                      `json:"definitions_count"`
	ChunksCount      int                      `json:"chunks_count"`
	Definitions      []AnnotatedDefinition    `json:"definitions"`
	EnhancedChunks   []enhance.EnhancedChunk  `json:"enhanced_chunks"`
	PageMapping      map[string][]string      `json:"page_mapping"` // page -> chunk IDs
	Metrics          ProcessingMetrics        `json:"processing_metrics"`
}

// AnnotatedDefinition couples a definition with its verification links.
type AnnotatedDefinition struct {
	definitions.Definition

	Verification sourcelink.Links `json:"verification"`
}

// JurisdictionResult is the self-contained output of one worker.
type JurisdictionResult struct {
	StateCode    string               `json:"state_code"`
	Database     *DefinitionsDatabase `json:"-"`
	DatabasePath string               `json:"database_path"`
	Architecture *regmap.Report       `json:"architecture,omitempty"`
}

// Failure records one jurisdiction that could not be processed.
type Failure struct {
	StateCode string `json:"state_code"`
	Stage     string `json:"stage"`
	Reason    string `json:"reason"`
}

// RunResult aggregates a whole batch, keyed by jurisdiction code.
// len(Results)+len(Failures) always equals the number of jurisdictions
// attempted.
type RunResult struct {
	RunID      string                         `json:"run_id"`
	StartedAt  time.Time                      `json:"started_at"`
	FinishedAt time.Time                      `json:"finished_at"`
	Attempted  int                            `json:"attempted"`
	Results    map[string]*JurisdictionResult `json:"results"`
	Failures   []Failure                      `json:"failures"`
}
