package sourcelink

import (
	"strings"
	"testing"
	"time"
)

func caSource() PDFSource {
	return PDFSource{
		StateCode:   "CA",
		Filename:    "ca_qap_2025.pdf",
		Title:       "California 2025 QAP Regulations",
		TotalPages:  180,
		Available:   true,
		Official:    true,
		BaseURL:     "https://www.treasurer.ca.gov/ctcac",
		LastUpdated: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

// WHAT: an available official PDF yields page-anchored view, download
// and search links.
func TestResolveAvailable(t *testing.T) {
	l := NewLinker([]PDFSource{caSource()})
	links := l.Resolve(Request{
		Term:             "Accessible Housing Unit",
		StateCode:        "CA",
		Page:             15,
		SectionReference: "Section 10302(a)",
		Confidence:       0.85,
	})

	if !links.PDFAvailable {
		t.Fatal("expected pdf_available=true")
	}
	if !strings.HasSuffix(links.ViewURL, "#page=15") {
		t.Errorf("view URL not page-anchored: %q", links.ViewURL)
	}
	if !strings.HasSuffix(links.DownloadURL, "ca_qap_2025.pdf") {
		t.Errorf("download URL = %q", links.DownloadURL)
	}
	if !strings.Contains(links.SearchURL, "#search=") {
		t.Errorf("search URL = %q", links.SearchURL)
	}
	if !strings.Contains(links.LegalCitation, "Section 10302(a)") {
		t.Errorf("legal citation = %q", links.LegalCitation)
	}
	if !strings.Contains(links.ShortCite, "CA QAP") {
		t.Errorf("short citation = %q", links.ShortCite)
	}
}

// WHAT: an unavailable PDF yields a structured unavailable result,
// never a link.
func TestResolveUnavailable(t *testing.T) {
	src := caSource()
	src.Available = false
	l := NewLinker([]PDFSource{src})

	links := l.Resolve(Request{Term: "Eligible Basis", StateCode: "CA", Page: 40, Confidence: 0.9})
	if links.PDFAvailable {
		t.Fatal("expected pdf_available=false")
	}
	if links.ViewURL != "" || links.DownloadURL != "" {
		t.Error("unavailable source must not produce links")
	}
	if links.Unavailable == "" {
		t.Error("unavailable reason should be populated")
	}
	if links.LegalCitation == "" {
		t.Error("citations should still be produced")
	}
}

// WHAT: an unknown jurisdiction behaves like an unavailable one.
func TestResolveUnknownJurisdiction(t *testing.T) {
	l := NewLinker([]PDFSource{caSource()})
	links := l.Resolve(Request{Term: "Rural Area", StateCode: "ZZ", Page: 3})
	if links.PDFAvailable {
		t.Fatal("unknown jurisdiction should be unavailable")
	}
	if links.Unavailable == "" {
		t.Error("unavailable reason should be populated")
	}
}

// WHAT: trust scores stay in [0,1] across the weight extremes and the
// best case sums every component.
func TestTrustScore(t *testing.T) {
	l := NewLinker([]PDFSource{caSource()})

	best := l.Resolve(Request{
		Term:             "Compliance Period",
		StateCode:        "CA",
		Page:             10,
		SectionReference: "Section 10337(a)",
		Confidence:       1.0,
	})
	if best.TrustScore < 0.99 || best.TrustScore > 1.0 {
		t.Errorf("best-case trust score = %v, want 1.0", best.TrustScore)
	}

	worst := l.Resolve(Request{Term: "X", StateCode: "ZZ", Page: 0, Confidence: -2})
	if worst.TrustScore < 0 || worst.TrustScore > 1 {
		t.Errorf("trust score %v out of range", worst.TrustScore)
	}
	if worst.TrustScore != 0 {
		t.Errorf("no-signal trust score = %v, want 0", worst.TrustScore)
	}

	// Pages past the document's end do not earn the page weight.
	over := l.Resolve(Request{Term: "Y", StateCode: "CA", Page: 9999, Confidence: 0})
	within := l.Resolve(Request{Term: "Y", StateCode: "CA", Page: 5, Confidence: 0})
	if over.TrustScore >= within.TrustScore {
		t.Errorf("out-of-range page scored %v, within-range %v", over.TrustScore, within.TrustScore)
	}
}

// WHAT: the section-search link falls back to the term when no section
// reference exists.
func TestSearchFallsBackToTerm(t *testing.T) {
	l := NewLinker([]PDFSource{caSource()})
	links := l.Resolve(Request{Term: "Rural Area", StateCode: "CA", Page: 3})
	if !strings.Contains(links.SearchURL, "Rural") {
		t.Errorf("search URL should embed the term: %q", links.SearchURL)
	}
}
