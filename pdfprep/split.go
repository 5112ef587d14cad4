package pdfprep

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Splitter partitions oversized PDFs into sequential page-range sections.
// Section boundaries are plain page slices, not content-aware: a
// regulatory section may land across two files. That is accepted.
type Splitter struct {
	MaxPages int
	OutDir   string // default: sibling "split_sections" next to the source
	conf     *model.Configuration
}

// NewSplitter returns a Splitter writing sections under outDir.
func NewSplitter(maxPages int, outDir string) *Splitter {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Splitter{
		MaxPages: maxPages,
		OutDir:   outDir,
		conf:     model.NewDefaultConfiguration(),
	}
}

// Split slices path into sections of at most MaxPages pages each. The
// sections exactly cover the original page range with no gaps or
// overlaps. Failures come back as Split=false with a Reason, never as a
// Go error, so a batch continues past one bad file.
//
// If the document is already within the threshold and forceSplit is
// false, the result is a no-op passthrough holding the original path.
func (s *Splitter) Split(path string, forceSplit bool) SplitResult {
	pages, err := api.PageCountFile(path)
	if err != nil {
		return SplitResult{Reason: fmt.Sprintf("page count: %v", err)}
	}
	if pages <= 0 {
		return SplitResult{Reason: "document has no pages"}
	}

	if pages <= s.MaxPages && !forceSplit {
		return SplitResult{
			Split: false,
			Sections: []SectionFile{{
				Index:     1,
				Path:      path,
				StartPage: 1,
				EndPage:   pages,
			}},
			Reason: "within page limit",
		}
	}

	outDir := s.OutDir
	if outDir == "" {
		outDir = filepath.Join(filepath.Dir(path), "split_sections")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return SplitResult{Reason: fmt.Sprintf("create output dir: %v", err)}
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var sections []SectionFile
	idx := 0
	for start := 1; start <= pages; start += s.MaxPages {
		idx++
		end := start + s.MaxPages - 1
		if end > pages {
			end = pages
		}

		outPath := filepath.Join(outDir, fmt.Sprintf("%s_section_%02d.pdf", stem, idx))
		span := fmt.Sprintf("%d-%d", start, end)
		if err := api.TrimFile(path, outPath, []string{span}, s.conf); err != nil {
			return SplitResult{Reason: fmt.Sprintf("write section %d (pages %s): %v", idx, span, err)}
		}

		sections = append(sections, SectionFile{
			Index:     idx,
			Path:      outPath,
			StartPage: start,
			EndPage:   end,
		})
	}

	return SplitResult{Split: true, Sections: sections}
}
