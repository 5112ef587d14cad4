// Package pdfprep prepares jurisdiction QAP PDFs for chunking: it counts
// pages, splits oversized documents into sequential page-range sections,
// and emits a processing queue for the downstream extraction stage.
//
// All low-level operations return status objects instead of raising, so a
// batch over dozens of jurisdictions survives individual corrupt files.
package pdfprep

// Status classifies a document against the page threshold.
type Status string

const (
	StatusReady          Status = "ready"
	StatusNeedsSplitting Status = "needs_splitting"
	StatusError          Status = "error"
)

// CountResult is the outcome of counting pages in one PDF.
type CountResult struct {
	Path    string `json:"path"`
	Pages   int    `json:"pages"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// SectionFile is one page-range slice of an oversized document.
type SectionFile struct {
	Index     int    `json:"index"`      // 1-based section number
	Path      string `json:"path"`       // generated sub-PDF
	StartPage int    `json:"start_page"` // inclusive, 1-based
	EndPage   int    `json:"end_page"`   // inclusive
}

// SplitResult is the outcome of splitting one PDF. When no split was
// needed Sections holds the original path as a single pseudo-section.
type SplitResult struct {
	Split    bool          `json:"split"`
	Sections []SectionFile `json:"sections"`
	Reason   string        `json:"reason,omitempty"`
}

// SectionPaths returns the file paths of all sections in order.
func (r SplitResult) SectionPaths() []string {
	paths := make([]string, 0, len(r.Sections))
	for _, s := range r.Sections {
		paths = append(paths, s.Path)
	}
	return paths
}

// PreprocessResult is the per-document record produced by the Preprocessor.
type PreprocessResult struct {
	OriginalPath     string   `json:"original_path"`
	Jurisdiction     string   `json:"jurisdiction"`
	PageCount        int      `json:"page_count"`
	Status           Status   `json:"status"`
	SplitPerformed   bool     `json:"split_performed"`
	ReadyForChunking []string `json:"ready_for_chunking"`
	Error            string   `json:"error,omitempty"`
}

// DirectoryResult aggregates a preprocessing run over a QAP directory tree.
// Invariant: Ready + Split + Failed == Discovered.
type DirectoryResult struct {
	Root               string             `json:"root"`
	Discovered         int                `json:"discovered"`
	Ready              int                `json:"ready"`
	Split              int                `json:"split"`
	Failed             int                `json:"failed"`
	Documents          []PreprocessResult `json:"documents"`
	ChunkingReadyFiles []string           `json:"chunking_ready_files"`
}

// QueueItem is one unit of work for the chunking stage.
type QueueItem struct {
	Jurisdiction string `json:"jurisdiction"`
	Document     string `json:"document"`      // original document name (stem)
	Path         string `json:"path"`          // file to chunk
	SectionIndex int    `json:"section_index"` // 0 for unsplit documents
	IsSection    bool   `json:"is_section"`
	Priority     string `json:"priority"` // high | normal
}

// QueueConfig is the chunking pipeline configuration emitted after a
// preprocessing run. Pure data: building it performs no I/O.
type QueueConfig struct {
	GeneratedAt     string      `json:"generated_at"`
	Root            string      `json:"root"`
	MaxPagesPerFile int         `json:"max_pages_per_file"`
	Items           []QueueItem `json:"processing_queue"`
}
