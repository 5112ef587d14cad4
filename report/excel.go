// Package report renders a batch run as an Excel workbook for analysts
// who review QAP extractions outside the JSON tooling.
package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/lihtc-analytics/qapflow/pipeline"
)

const (
	sheetSummary     = "Summary"
	sheetDefinitions = "Definitions"
	sheetSections    = "Sections"
)

// WriteWorkbook writes the three-sheet workbook: Summary (per
// jurisdiction), Definitions (every extracted definition) and Sections
// (statutory architecture coverage where available).
func WriteWorkbook(path string, run *pipeline.RunResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummary(f, run); err != nil {
		return err
	}
	if err := writeDefinitions(f, run); err != nil {
		return err
	}
	if err := writeSections(f, run); err != nil {
		return err
	}

	// The default sheet is replaced by Summary.
	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func sortedCodes(run *pipeline.RunResult) []string {
	codes := make([]string, 0, len(run.Results))
	for code := range run.Results {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func writeSummary(f *excelize.File, run *pipeline.RunResult) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}
	header := []any{"Jurisdiction", "Chunks", "Definitions", "Dropped Empty", "Duplicates Removed", "Duration (ms)"}
	if err := f.SetSheetRow(sheetSummary, "A1", &header); err != nil {
		return err
	}

	row := 2
	for _, code := range sortedCodes(run) {
		db := run.Results[code].Database
		values := []any{
			code,
			db.ChunksCount,
			db.DefinitionsCount,
			db.Metrics.DroppedEmpty,
			db.Metrics.DuplicatesRemoved,
			db.Metrics.DurationMS,
		}
		if err := f.SetSheetRow(sheetSummary, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
		row++
	}

	for _, fail := range run.Failures {
		values := []any{fail.StateCode, "FAILED: " + fail.Reason}
		if err := f.SetSheetRow(sheetSummary, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeDefinitions(f *excelize.File, run *pipeline.RunResult) error {
	if _, err := f.NewSheet(sheetDefinitions); err != nil {
		return err
	}
	header := []any{"Jurisdiction", "Term", "Definition", "Page", "Section Reference", "Category", "Confidence", "Trust Score"}
	if err := f.SetSheetRow(sheetDefinitions, "A1", &header); err != nil {
		return err
	}

	row := 2
	for _, code := range sortedCodes(run) {
		for _, d := range run.Results[code].Database.Definitions {
			values := []any{
				code,
				d.Term,
				d.Definition.Definition,
				d.PDFPage,
				d.SectionReference,
				d.Category,
				d.Confidence,
				d.Verification.TrustScore,
			}
			if err := f.SetSheetRow(sheetDefinitions, fmt.Sprintf("A%d", row), &values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeSections(f *excelize.File, run *pipeline.RunResult) error {
	if _, err := f.NewSheet(sheetSections); err != nil {
		return err
	}
	header := []any{"Jurisdiction", "Section", "Title", "Category", "Found", "Characters", "Legal Refs", "Cross Refs"}
	if err := f.SetSheetRow(sheetSections, "A1", &header); err != nil {
		return err
	}

	row := 2
	for _, code := range sortedCodes(run) {
		arch := run.Results[code].Architecture
		if arch == nil {
			continue
		}
		for _, sec := range arch.Sections {
			values := []any{
				code,
				sec.Number,
				sec.Title,
				sec.LIHTCCategory,
				sec.Found,
				sec.CharCount,
				len(sec.References),
				len(sec.CrossRefs),
			}
			if err := f.SetSheetRow(sheetSections, fmt.Sprintf("A%d", row), &values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}
