// Package docload turns processing-ready PDFs into ordered raw text
// chunks with page provenance.
//
// Two sources implement the same boundary: a loader for chunk-export JSON
// produced by an external converter (Docling), and a native pdfcpu
// content-stream extractor for environments without the converter. The
// downstream enhancement stage consumes either stream identically.
package docload

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lihtc-analytics/qapflow/idgen"
)

// RawChunk is the atomic unit of extracted text before enhancement.
// Content is read-only for consumers; page and section metadata carry the
// provenance every downstream definition inherits.
type RawChunk struct {
	ChunkID       string `json:"chunk_id"`
	StateCode     string `json:"state_code"`
	DocumentTitle string `json:"document_title"`
	PageNumber    int    `json:"page_number"`
	SectionTitle  string `json:"section_title"`
	Content       string `json:"content"`
	ContentType   string `json:"content_type"` // unclassified until enhancement
	ProgramType   string `json:"program_type"` // 9% | 4% | both
}

// ChunkSource converts one processing-ready PDF into an ordered chunk
// stream. Order must follow page order within the document.
type ChunkSource interface {
	Chunks(ctx context.Context, path, stateCode string) ([]RawChunk, error)
}

// doclingExport mirrors the chunk-export JSON written by the external
// Docling-based converter.
type doclingExport struct {
	DocumentTitle string `json:"document_title"`
	StateCode     string `json:"state_code"`
	Chunks        []struct {
		ChunkID      string `json:"chunk_id"`
		PageNumber   int    `json:"page_number"`
		SectionTitle string `json:"section_title"`
		Content      string `json:"content"`
		ContentType  string `json:"content_type"`
		ProgramType  string `json:"program_type"`
	} `json:"chunks"`
}

// ExportLoader reads Docling chunk-export JSON files.
type ExportLoader struct {
	// NewID generates identifiers for chunks the export did not assign
	// one. Defaults to idgen.Chunk.
	NewID idgen.Generator
}

// ExportPathFor maps a processing-ready PDF to its sibling chunk-export
// file: doc.pdf -> doc.chunks.json.
func ExportPathFor(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".chunks.json"
}

// Chunks loads the export at path. A non-JSON path is resolved to its
// sibling export file, so the loader accepts the same PDF paths the
// preprocessing stage emits. stateCode overrides the export's own code
// when non-empty, so directory layout stays authoritative.
func (l ExportLoader) Chunks(_ context.Context, path, stateCode string) ([]RawChunk, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		path = ExportPathFor(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chunk export %s: %w", path, err)
	}
	var export doclingExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("parse chunk export %s: %w", path, err)
	}

	code := stateCode
	if code == "" {
		code = export.StateCode
	}

	newID := l.NewID
	if newID == nil {
		newID = idgen.Chunk
	}

	chunks := make([]RawChunk, 0, len(export.Chunks))
	for _, c := range export.Chunks {
		id := c.ChunkID
		if id == "" {
			id = newID()
		}
		chunks = append(chunks, RawChunk{
			ChunkID:       id,
			StateCode:     code,
			DocumentTitle: export.DocumentTitle,
			PageNumber:    c.PageNumber,
			SectionTitle:  c.SectionTitle,
			Content:       c.Content,
			ContentType:   c.ContentType,
			ProgramType:   c.ProgramType,
		})
	}
	return chunks, nil
}
