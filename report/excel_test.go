package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lihtc-analytics/qapflow/definitions"
	"github.com/lihtc-analytics/qapflow/pipeline"
	"github.com/lihtc-analytics/qapflow/regmap"
)

func sampleRun() *pipeline.RunResult {
	db := &pipeline.DefinitionsDatabase{
		StateCode:      "CA",
		ProcessingDate: time.Now(),
		ChunksCount:    42,
		Definitions: []pipeline.AnnotatedDefinition{
			{Definition: definitions.Definition{
				Term: "Accessible Housing Unit", Definition: "a Housing Unit with Mobility Features",
				PDFPage: 15, SectionReference: "Section 10302(a)", Category: "accessibility", Confidence: 0.85,
			}},
		},
		Metrics: pipeline.ProcessingMetrics{DroppedEmpty: 3, DuplicatesRemoved: 2, DurationMS: 1200},
	}
	db.DefinitionsCount = len(db.Definitions)

	return &pipeline.RunResult{
		RunID: "run_test",
		Results: map[string]*pipeline.JurisdictionResult{
			"CA": {
				StateCode: "CA",
				Database:  db,
				Architecture: &regmap.Report{
					Jurisdiction: "CA",
					FoundCount:   1,
					Sections: []regmap.MappedSection{
						{
							SectionSpec: regmap.SectionSpec{Number: "10302", Title: "Definitions", LIHTCCategory: "definitions"},
							Found:       true,
							CharCount:   940,
						},
						{
							SectionSpec: regmap.SectionSpec{Number: "10330", Title: "Appeals"},
						},
					},
					Missing: []string{"10330"},
				},
			},
		},
		Failures: []pipeline.Failure{{StateCode: "TX", Stage: "process", Reason: "extraction failed"}},
	}
}

// WHAT: the workbook writes and reopens with all three sheets populated.
func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qap_report.xlsx")
	if err := WriteWorkbook(path, sampleRun()); err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{sheetSummary, sheetDefinitions, sheetSections} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Errorf("sheet %q missing", sheet)
		}
	}

	rows, err := f.GetRows(sheetDefinitions)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("definitions sheet has %d rows, want header + 1", len(rows))
	}
	if rows[1][1] != "Accessible Housing Unit" {
		t.Errorf("definition row = %v", rows[1])
	}

	rows, err = f.GetRows(sheetSummary)
	if err != nil {
		t.Fatal(err)
	}
	// Header, one jurisdiction, one failure row.
	if len(rows) != 3 {
		t.Fatalf("summary sheet has %d rows, want 3", len(rows))
	}

	rows, err = f.GetRows(sheetSections)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("sections sheet has %d rows, want header + 2", len(rows))
	}
}
