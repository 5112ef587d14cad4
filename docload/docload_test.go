package docload

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExportLoader_ParsesChunks(t *testing.T) {
	// WHAT: A Docling-style chunk export loads into ordered RawChunks with
	// page and section metadata intact.
	// WHY: The external converter is the primary chunk source in production.
	dir := t.TempDir()
	path := filepath.Join(dir, "CA_chunks.json")
	export := `{
		"document_title": "CA 2025 QAP",
		"state_code": "CA",
		"chunks": [
			{"page_number": 1, "section_title": "Section 10300. Purpose and Scope", "content": "These regulations implement...", "content_type": "text"},
			{"chunk_id": "custom_7", "page_number": 2, "section_title": "Section 10302. Definitions", "content": "Accessible Housing Unit means..."}
		]
	}`
	if err := os.WriteFile(path, []byte(export), 0644); err != nil {
		t.Fatal(err)
	}

	chunks, err := ExportLoader{}.Chunks(context.Background(), path, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].StateCode != "CA" || chunks[0].PageNumber != 1 {
		t.Errorf("chunk[0] = %+v", chunks[0])
	}
	if !strings.HasPrefix(chunks[0].ChunkID, "chk_") {
		t.Errorf("chunk[0].ChunkID = %q, want a synthesized chk_ id", chunks[0].ChunkID)
	}
	if chunks[1].ChunkID != "custom_7" {
		t.Errorf("chunk[1].ChunkID = %q, want custom_7 (export ids preserved)", chunks[1].ChunkID)
	}
	if chunks[1].DocumentTitle != "CA 2025 QAP" {
		t.Errorf("chunk[1].DocumentTitle = %q", chunks[1].DocumentTitle)
	}
}

func TestExportLoader_ResolvesPDFPath(t *testing.T) {
	// WHAT: handing the loader a PDF path reads the sibling chunks.json.
	// WHY: The pipeline passes processing-ready PDF paths to whichever
	// chunk source is configured.
	dir := t.TempDir()
	export := `{"state_code":"CA","chunks":[{"page_number":3,"content":"Compliance Period means fifteen years."}]}`
	if err := os.WriteFile(filepath.Join(dir, "ca_qap.chunks.json"), []byte(export), 0644); err != nil {
		t.Fatal(err)
	}

	chunks, err := ExportLoader{}.Chunks(context.Background(), filepath.Join(dir, "ca_qap.pdf"), "CA")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 || chunks[0].PageNumber != 3 {
		t.Fatalf("chunks = %+v, want one page-3 chunk", chunks)
	}
}

func TestExportLoader_StateCodeOverride(t *testing.T) {
	// WHAT: A caller-supplied state code wins over the export's own.
	// WHY: Directory layout is authoritative for jurisdiction identity.
	dir := t.TempDir()
	path := filepath.Join(dir, "chunks.json")
	if err := os.WriteFile(path, []byte(`{"state_code":"XX","chunks":[{"page_number":1,"content":"x"}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	chunks, err := ExportLoader{}.Chunks(context.Background(), path, "TX")
	if err != nil {
		t.Fatal(err)
	}
	if chunks[0].StateCode != "TX" {
		t.Errorf("state code = %q, want TX", chunks[0].StateCode)
	}
}

func TestPDFExtractor_PagedChunks(t *testing.T) {
	// WHAT: Native extraction emits one chunk per non-empty page in page
	// order, with quality metrics.
	// WHY: Fallback path when the external converter is unavailable.
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(path, buildPagedPDF(3), 0644); err != nil {
		t.Fatal(err)
	}

	var q ExtractionQuality
	ex := &PDFExtractor{Quality: &q}
	chunks, err := ex.Chunks(context.Background(), path, "CA")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for i, c := range chunks {
		if c.PageNumber != i+1 {
			t.Errorf("chunk[%d].PageNumber = %d, want %d", i, c.PageNumber, i+1)
		}
		if c.StateCode != "CA" {
			t.Errorf("chunk[%d].StateCode = %q", i, c.StateCode)
		}
		if !strings.Contains(c.Content, fmt.Sprintf("Page %d", i+1)) {
			t.Errorf("chunk[%d] content %q missing page marker", i, c.Content)
		}
	}
	if q.PageCount != 3 {
		t.Errorf("quality.PageCount = %d, want 3", q.PageCount)
	}
	if q.PrintableRatio < 0.95 {
		t.Errorf("printable ratio = %f for clean text", q.PrintableRatio)
	}
}

func TestExtractionQuality_Merge(t *testing.T) {
	// WHAT: merged quality is page-weighted and sums page counts.
	// WHY: A jurisdiction split into section PDFs reports one record.
	var q ExtractionQuality
	q.Merge(ExtractionQuality{PageCount: 1, CharsPerPage: 100, PrintableRatio: 1.0, WordlikeRatio: 0.8})
	q.Merge(ExtractionQuality{PageCount: 3, CharsPerPage: 200, PrintableRatio: 0.6, WordlikeRatio: 0.4})

	if q.PageCount != 4 {
		t.Errorf("page count = %d, want 4", q.PageCount)
	}
	if q.CharsPerPage != 175 {
		t.Errorf("chars/page = %f, want 175", q.CharsPerPage)
	}
	if math.Abs(q.PrintableRatio-0.7) > 1e-9 {
		t.Errorf("printable = %f, want 0.7", q.PrintableRatio)
	}

	// Empty inputs leave the accumulator untouched.
	before := q
	q.Merge(ExtractionQuality{})
	if q != before {
		t.Errorf("merge of empty record changed %+v to %+v", before, q)
	}
}

func TestPrintableRatio_Garbage(t *testing.T) {
	// WHAT: PUA and control characters drive the printable ratio down.
	// WHY: Detects garbled extraction from CIDFonts without ToUnicode maps.
	garbage := "abc\x01\x02\x03"
	if ratio := printableRatio(garbage); ratio >= 0.85 {
		t.Errorf("printable ratio = %f, want < 0.85", ratio)
	}
	if ratio := printableRatio("Normal regulatory text about housing credits."); ratio < 0.95 {
		t.Errorf("printable ratio = %f, want > 0.95", ratio)
	}
}

func TestWordlikeRatio(t *testing.T) {
	// WHAT: Single-character token streams score low; prose scores high.
	// WHY: Flags character-by-character extraction breakage.
	if ratio := wordlikeRatio("a b c d e f g h i j"); ratio >= 0.40 {
		t.Errorf("wordlike = %f for single chars, want < 0.40", ratio)
	}
	if ratio := wordlikeRatio("the applicant shall submit the form"); ratio < 0.70 {
		t.Errorf("wordlike = %f for prose, want > 0.70", ratio)
	}
}

func TestDecodePDFString_Escapes(t *testing.T) {
	// WHAT: Backslash and octal escapes decode per the PDF spec.
	// WHY: Section symbols arrive as octal escapes in content streams.
	got := decodePDFString([]byte(`Section \247 10302 \(a\)`))
	want := "Section \xa7 10302 (a)"
	if got != want {
		t.Errorf("decode = %q, want %q", got, want)
	}
}

// buildPagedPDF creates a valid PDF with n pages, each holding one text line.
func buildPagedPDF(n int) []byte {
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	total := 2*n + 3
	offsets := make([]int, total+1)

	kids := make([]string, n)
	for i := 0; i < n; i++ {
		kids[i] = fmt.Sprintf("%d 0 R", 3+i)
	}

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = b.Len()
	fmt.Fprintf(&b, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), n)

	fontObj := 2*n + 3
	for i := 0; i < n; i++ {
		offsets[3+i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 %d 0 R >> >> >>\nendobj\n",
			3+i, n+3+i, fontObj)
	}
	for i := 0; i < n; i++ {
		stream := fmt.Sprintf("BT\n/F1 12 Tf\n72 720 Td\n(Page %d of the QAP) Tj\nET", i+1)
		offsets[n+3+i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", n+3+i, len(stream), stream)
	}

	offsets[fontObj] = b.Len()
	fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n", fontObj)

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", total+1)
	for i := 1; i <= total; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total+1, xref)
	return []byte(b.String())
}
