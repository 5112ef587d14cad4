package pdfprep

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// buildTestPDF creates a valid PDF with n pages and proper xref offsets.
// Each page carries a one-line text stream so extraction tests have
// something to find.
func buildTestPDF(n int) []byte {
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	// Object layout: 1=catalog, 2=pages, 3..n+2=page objects,
	// n+3..2n+2=content streams, 2n+3=font.
	total := 2*n + 3
	offsets := make([]int, total+1)

	kids := make([]string, n)
	for i := 0; i < n; i++ {
		kids[i] = fmt.Sprintf("%d 0 R", 3+i)
	}

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = b.Len()
	fmt.Fprintf(&b, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), n)

	fontObj := 2*n + 3
	for i := 0; i < n; i++ {
		pageObj := 3 + i
		contentObj := n + 3 + i
		offsets[pageObj] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 %d 0 R >> >> >>\nendobj\n",
			pageObj, contentObj, fontObj)
	}

	for i := 0; i < n; i++ {
		contentObj := n + 3 + i
		stream := fmt.Sprintf("BT\n/F1 12 Tf\n72 720 Td\n(Page %d) Tj\nET", i+1)
		offsets[contentObj] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
			contentObj, len(stream), stream)
	}

	offsets[fontObj] = b.Len()
	fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n", fontObj)

	xrefOffset := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", total+1)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= total; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		total+1, xrefOffset)

	return []byte(b.String())
}

func writeTestPDF(t *testing.T, path string, pages int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buildTestPDF(pages), 0644); err != nil {
		t.Fatal(err)
	}
}
