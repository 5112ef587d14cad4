package pdfprep

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Preprocessor composes the Counter and Splitter over a jurisdiction
// directory tree and emits the aggregate chunking manifest.
type Preprocessor struct {
	counter  *Counter
	splitter *Splitter
	logger   *slog.Logger
	workers  int
}

// Config configures a Preprocessor.
type Config struct {
	// MaxPages is the per-file page threshold (default 100).
	MaxPages int
	// OutDir receives split sections. Empty means a sibling
	// "split_sections" directory next to each source file.
	OutDir string
	// Workers bounds jurisdiction-level concurrency (default 4).
	Workers int
	// Logger for progress and failures.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// New creates a Preprocessor with the given configuration.
func New(cfg Config) *Preprocessor {
	cfg.defaults()
	return &Preprocessor{
		counter:  NewCounter(cfg.MaxPages),
		splitter: NewSplitter(cfg.MaxPages, cfg.OutDir),
		logger:   cfg.Logger,
		workers:  cfg.Workers,
	}
}

// PreprocessSingle runs the count+split routine on one PDF. The returned
// record always carries a status; it never raises for file-level problems.
func (p *Preprocessor) PreprocessSingle(path string, forceSplit bool) PreprocessResult {
	res := PreprocessResult{
		OriginalPath: path,
		Jurisdiction: jurisdictionOf(path),
	}

	count := p.counter.CountFile(path)
	res.PageCount = count.Pages
	res.Status = count.Status

	if count.Status == StatusError {
		res.Error = count.Message
		return res
	}

	if count.Status == StatusReady && !forceSplit {
		res.ReadyForChunking = []string{path}
		return res
	}

	split := p.splitter.Split(path, forceSplit)
	if !split.Split {
		// Splitting was needed but failed. The caller decides whether the
		// oversized original is still worth attempting downstream.
		res.Status = StatusError
		res.Error = split.Reason
		res.ReadyForChunking = []string{path}
		return res
	}

	res.SplitPerformed = true
	res.ReadyForChunking = split.SectionPaths()
	return res
}

// PreprocessDirectory walks a jurisdiction-organized tree (two-letter
// codes, optionally nested under "current") and preprocesses every PDF.
// Jurisdictions are processed concurrently; each is an independently
// failing unit whose results are merged only after its worker completes.
func (p *Preprocessor) PreprocessDirectory(ctx context.Context, root string) (*DirectoryResult, error) {
	byJurisdiction, err := discoverPDFs(root)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(byJurisdiction))
	for code := range byJurisdiction {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	type jurOutcome struct {
		code string
		docs []PreprocessResult
	}

	sem := make(chan struct{}, p.workers)
	outcomes := make(chan jurOutcome, len(codes))
	var wg sync.WaitGroup

	for _, code := range codes {
		wg.Add(1)
		go func(code string, paths []string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			docs := make([]PreprocessResult, 0, len(paths))
			for _, path := range paths {
				if ctx.Err() != nil {
					return
				}
				doc := p.PreprocessSingle(path, false)
				doc.Jurisdiction = code
				if doc.Status == StatusError {
					p.logger.Warn("preprocess failed", "jurisdiction", code, "path", path, "error", doc.Error)
				}
				docs = append(docs, doc)
			}
			outcomes <- jurOutcome{code: code, docs: docs}
		}(code, byJurisdiction[code])
	}

	wg.Wait()
	close(outcomes)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Merge in deterministic jurisdiction order.
	collected := make(map[string][]PreprocessResult, len(codes))
	for o := range outcomes {
		collected[o.code] = o.docs
	}

	agg := &DirectoryResult{Root: root}
	for _, code := range codes {
		for _, doc := range collected[code] {
			agg.Discovered++
			switch {
			case doc.Status == StatusError:
				agg.Failed++
			case doc.SplitPerformed:
				agg.Split++
				agg.ChunkingReadyFiles = append(agg.ChunkingReadyFiles, doc.ReadyForChunking...)
			default:
				agg.Ready++
				agg.ChunkingReadyFiles = append(agg.ChunkingReadyFiles, doc.ReadyForChunking...)
			}
			agg.Documents = append(agg.Documents, doc)
		}
	}

	if agg.Ready+agg.Split+agg.Failed != agg.Discovered {
		// Counts must reconcile; a mismatch means silent data loss.
		return nil, fmt.Errorf("count reconciliation failed: ready=%d split=%d failed=%d discovered=%d",
			agg.Ready, agg.Split, agg.Failed, agg.Discovered)
	}

	p.logger.Info("preprocessing complete",
		"root", root,
		"discovered", agg.Discovered,
		"ready", agg.Ready,
		"split", agg.Split,
		"failed", agg.Failed)
	return agg, nil
}

// discoverPDFs maps jurisdiction code -> ordered PDF paths. The expected
// layout is <root>/<CODE>/[current/]*.pdf with two-letter codes; PDFs in
// unrecognized locations are grouped under their immediate directory name.
func discoverPDFs(root string) (map[string][]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read root %s: %w", root, err)
	}

	byJurisdiction := make(map[string][]string)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		code := strings.ToUpper(e.Name())
		dir := filepath.Join(root, e.Name())

		// Prefer a "current" subdirectory when present.
		if info, err := os.Stat(filepath.Join(dir, "current")); err == nil && info.IsDir() {
			dir = filepath.Join(dir, "current")
		}

		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.IsDir() || !strings.EqualFold(filepath.Ext(f.Name()), ".pdf") {
				continue
			}
			byJurisdiction[code] = append(byJurisdiction[code], filepath.Join(dir, f.Name()))
		}
		sort.Strings(byJurisdiction[code])
	}
	return byJurisdiction, nil
}

// jurisdictionOf infers a jurisdiction code from a file path: the nearest
// two-letter ancestor directory, skipping "current" and "split_sections".
func jurisdictionOf(path string) string {
	dir := filepath.Dir(path)
	for dir != "." && dir != string(filepath.Separator) {
		name := filepath.Base(dir)
		if name != "current" && name != "split_sections" && len(name) == 2 {
			return strings.ToUpper(name)
		}
		dir = filepath.Dir(dir)
	}
	return ""
}
