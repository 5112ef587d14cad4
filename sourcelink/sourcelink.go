// Package sourcelink attaches page-accurate verification metadata to
// extracted definitions: deep links into the source PDF, formatted
// citations, and a heuristic trust score.
//
// The per-jurisdiction PDF table is static configuration. When a
// jurisdiction's PDF is marked unavailable the linker returns a
// structured unavailable result instead of a broken link; callers must
// branch on PDFAvailable.
package sourcelink

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// PDFSource describes one jurisdiction's authoritative QAP document.
type PDFSource struct {
	StateCode   string    `json:"state_code" yaml:"state_code"`
	Filename    string    `json:"filename" yaml:"filename"`
	Title       string    `json:"title" yaml:"title"`
	TotalPages  int       `json:"total_pages" yaml:"total_pages"`
	Available   bool      `json:"available" yaml:"available"`
	Official    bool      `json:"official" yaml:"official"`
	BaseURL     string    `json:"base_url" yaml:"base_url"`
	LastUpdated time.Time `json:"last_updated" yaml:"last_updated"`
}

// Links is the bundle of verification artifacts for one definition.
type Links struct {
	PDFAvailable  bool    `json:"pdf_available"`
	ViewURL       string  `json:"view_url,omitempty"`
	DownloadURL   string  `json:"download_url,omitempty"`
	SearchURL     string  `json:"search_url,omitempty"`
	LegalCitation string  `json:"legal_citation"`
	AcademicCite  string  `json:"academic_citation"`
	ShortCite     string  `json:"short_citation"`
	TrustScore    float64 `json:"trust_score"`
	Unavailable   string  `json:"unavailable_reason,omitempty"`
}

// Request carries the definition fields the linker needs.
type Request struct {
	Term             string
	StateCode        string
	Page             int
	SectionReference string
	Confidence       float64 // extraction confidence in [0,1]
}

// Linker resolves requests against a static PDF registry.
type Linker struct {
	sources map[string]PDFSource
}

// NewLinker builds a Linker over the given sources, keyed by state code.
func NewLinker(sources []PDFSource) *Linker {
	m := make(map[string]PDFSource, len(sources))
	for _, s := range sources {
		m[strings.ToUpper(s.StateCode)] = s
	}
	return &Linker{sources: m}
}

// Resolve produces the verification bundle for one definition. An
// unknown or unavailable jurisdiction yields a structured unavailable
// result with citations still populated.
func (l *Linker) Resolve(req Request) Links {
	src, ok := l.sources[strings.ToUpper(req.StateCode)]

	links := Links{
		LegalCitation: legalCitation(req, src),
		AcademicCite:  academicCitation(req, src),
		ShortCite:     shortCitation(req),
	}

	if !ok {
		links.Unavailable = fmt.Sprintf("no PDF registered for jurisdiction %s", req.StateCode)
		links.TrustScore = trustScore(req, src, false)
		return links
	}
	if !src.Available {
		links.Unavailable = fmt.Sprintf("PDF %s is marked unavailable", src.Filename)
		links.TrustScore = trustScore(req, src, false)
		return links
	}

	links.PDFAvailable = true
	links.ViewURL = viewURL(src, req.Page)
	links.DownloadURL = src.BaseURL + "/" + src.Filename
	links.SearchURL = searchURL(src, req)
	links.TrustScore = trustScore(req, src, true)
	return links
}

// viewURL deep-links into the browser PDF viewer at the cited page.
func viewURL(src PDFSource, page int) string {
	u := src.BaseURL + "/" + src.Filename
	if page >= 1 && (src.TotalPages == 0 || page <= src.TotalPages) {
		u += fmt.Sprintf("#page=%d", page)
	}
	return u
}

// searchURL anchors the viewer's search box on the section reference,
// falling back to the term.
func searchURL(src PDFSource, req Request) string {
	needle := req.SectionReference
	if needle == "" {
		needle = req.Term
	}
	if needle == "" {
		return ""
	}
	return src.BaseURL + "/" + src.Filename + "#search=" + url.QueryEscape(needle)
}

func legalCitation(req Request, src PDFSource) string {
	var b strings.Builder
	if src.Title != "" {
		b.WriteString(src.Title)
	} else {
		fmt.Fprintf(&b, "%s Qualified Allocation Plan", req.StateCode)
	}
	if req.SectionReference != "" {
		fmt.Fprintf(&b, ", %s", req.SectionReference)
	}
	if req.Page > 0 {
		fmt.Fprintf(&b, ", at %d", req.Page)
	}
	return b.String()
}

func academicCitation(req Request, src PDFSource) string {
	title := src.Title
	if title == "" {
		title = fmt.Sprintf("%s Qualified Allocation Plan", req.StateCode)
	}
	year := ""
	if !src.LastUpdated.IsZero() {
		year = fmt.Sprintf(" (%d)", src.LastUpdated.Year())
	}
	cite := fmt.Sprintf("%q, %s%s", req.Term, title, year)
	if req.Page > 0 {
		cite += fmt.Sprintf(", p. %d", req.Page)
	}
	return cite
}

func shortCitation(req Request) string {
	if req.SectionReference != "" {
		return fmt.Sprintf("%s QAP %s", req.StateCode, req.SectionReference)
	}
	if req.Page > 0 {
		return fmt.Sprintf("%s QAP p.%d", req.StateCode, req.Page)
	}
	return fmt.Sprintf("%s QAP", req.StateCode)
}

// Trust score weights. Sum to 1.0 so the score stays in [0,1].
const (
	weightAvailability = 0.3
	weightConfidence   = 0.25
	weightPage         = 0.2
	weightSectionRef   = 0.15
	weightOfficial     = 0.1
)

// trustScore is the weighted-sum availability heuristic. Always in
// [0,1].
func trustScore(req Request, src PDFSource, available bool) float64 {
	score := 0.0
	if available {
		score += weightAvailability
	}

	conf := req.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	score += weightConfidence * conf

	if req.Page >= 1 && (src.TotalPages == 0 || req.Page <= src.TotalPages) {
		score += weightPage
	}
	if len(req.SectionReference) > 5 {
		score += weightSectionRef
	}
	if src.Official {
		score += weightOfficial
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}
