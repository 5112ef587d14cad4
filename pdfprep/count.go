package pdfprep

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// DefaultMaxPages is the page threshold above which a document is split.
const DefaultMaxPages = 100

// Counter classifies PDFs against a page threshold. Read-only.
type Counter struct {
	MaxPages int
}

// NewCounter returns a Counter with the given threshold (<=0 uses the default).
func NewCounter(maxPages int) *Counter {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Counter{MaxPages: maxPages}
}

// CountFile opens a PDF and classifies it. File problems come back as
// StatusError on the result, never as a Go error, so batch callers can
// keep going past one bad file.
func (c *Counter) CountFile(path string) CountResult {
	res := CountResult{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		res.Status = StatusError
		res.Message = fmt.Sprintf("stat: %v", err)
		return res
	}
	if info.IsDir() {
		res.Status = StatusError
		res.Message = "path is a directory"
		return res
	}

	pages, err := api.PageCountFile(path)
	if err != nil {
		res.Status = StatusError
		res.Message = fmt.Sprintf("page count: %v", err)
		return res
	}

	res.Pages = pages
	if pages > c.MaxPages {
		res.Status = StatusNeedsSplitting
		res.Message = fmt.Sprintf("%d pages exceeds limit of %d", pages, c.MaxPages)
	} else {
		res.Status = StatusReady
	}
	return res
}

// CountDir walks root and classifies every PDF found, keyed by path
// relative to root. Non-PDF files are skipped silently.
func (c *Counter) CountDir(root string) (map[string]CountResult, error) {
	results := make(map[string]CountResult)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		results[rel] = c.CountFile(path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return results, nil
}
