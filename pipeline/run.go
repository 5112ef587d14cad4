package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lihtc-analytics/qapflow/definitions"
	"github.com/lihtc-analytics/qapflow/docload"
	"github.com/lihtc-analytics/qapflow/enhance"
	"github.com/lihtc-analytics/qapflow/idgen"
	"github.com/lihtc-analytics/qapflow/pdfprep"
	"github.com/lihtc-analytics/qapflow/regmap"
	"github.com/lihtc-analytics/qapflow/runlog"
	"github.com/lihtc-analytics/qapflow/sourcelink"
)

// Pipeline wires the processing stages together for batch runs.
type Pipeline struct {
	cfg    *Config
	logger *slog.Logger
	newRun idgen.Generator

	prep *pdfprep.Preprocessor
	// newSource builds a chunk source per jurisdiction worker, so the
	// native extractor's quality state is never shared across goroutines.
	newSource func() docload.ChunkSource
	enhancer  *enhance.Enhancer
	extractor *definitions.Extractor
	linker    *sourcelink.Linker
}

// New assembles a Pipeline from configuration.
func New(cfg *Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		cfg:    cfg,
		logger: logger,
		newRun: idgen.Run,
		prep: pdfprep.New(pdfprep.Config{
			MaxPages: cfg.MaxPages,
			OutDir:   cfg.SplitDir,
			Workers:  cfg.Workers,
			Logger:   logger,
		}),
		enhancer:  enhance.NewEnhancer(logger),
		extractor: definitions.NewExtractor(logger),
		linker:    sourcelink.NewLinker(cfg.Sources),
	}
	switch cfg.ChunkSource {
	case ChunkSourceDocling:
		p.newSource = func() docload.ChunkSource { return docload.ExportLoader{} }
	default:
		p.newSource = func() docload.ChunkSource {
			return &docload.PDFExtractor{Quality: &docload.ExtractionQuality{}}
		}
	}
	return p
}

// Run executes the full batch: preprocess the document tree, then fan
// out one worker per jurisdiction. Jurisdiction failures are collected,
// never propagated to siblings.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	run := &RunResult{
		RunID:     p.newRun(),
		StartedAt: time.Now(),
		Results:   make(map[string]*JurisdictionResult),
	}

	journal := p.openJournal(ctx, run)
	if journal != nil {
		defer journal.Close()
	}

	dir, err := p.prep.PreprocessDirectory(ctx, p.cfg.QAPRoot)
	if err != nil {
		return nil, fmt.Errorf("preprocess %s: %w", p.cfg.QAPRoot, err)
	}

	if err := os.MkdirAll(p.cfg.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	// Group chunking-ready files by jurisdiction; errored documents are
	// already recorded in the preprocessing report and excluded here.
	files := make(map[string][]string)
	for _, doc := range dir.Documents {
		if doc.Status == pdfprep.StatusError {
			run.Failures = append(run.Failures, Failure{
				StateCode: doc.Jurisdiction,
				Stage:     "preprocess",
				Reason:    doc.Error,
			})
			continue
		}
		files[doc.Jurisdiction] = append(files[doc.Jurisdiction], doc.ReadyForChunking...)
	}

	codes := make([]string, 0, len(files))
	for code := range files {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	run.Attempted = len(codes) + len(run.Failures)

	type outcome struct {
		code string
		res  *JurisdictionResult
		fail *Failure
	}

	sem := make(chan struct{}, p.cfg.Workers)
	outcomes := make(chan outcome, len(codes))
	var wg sync.WaitGroup

	for _, code := range codes {
		wg.Add(1)
		go func(code string, paths []string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("jurisdiction worker panicked", "jurisdiction", code, "panic", r)
					outcomes <- outcome{code: code, fail: &Failure{
						StateCode: code,
						Stage:     "process",
						Reason:    fmt.Sprintf("panic: %v", r),
					}}
				}
			}()

			res, err := p.processJurisdiction(ctx, code, paths)
			if err != nil {
				p.logger.Warn("jurisdiction failed", "jurisdiction", code, "error", err)
				outcomes <- outcome{code: code, fail: &Failure{
					StateCode: code,
					Stage:     "process",
					Reason:    err.Error(),
				}}
				return
			}
			outcomes <- outcome{code: code, res: res}
		}(code, files[code])
	}

	wg.Wait()
	close(outcomes)

	for o := range outcomes {
		if o.fail != nil {
			run.Failures = append(run.Failures, *o.fail)
			continue
		}
		run.Results[o.code] = o.res
	}
	run.FinishedAt = time.Now()

	if journal != nil {
		for _, f := range run.Failures {
			if err := journal.Event(ctx, run.RunID, f.StateCode, f.Stage, "error", f.Reason); err != nil {
				p.logger.Warn("journal event failed", "error", err)
				break
			}
		}
		for code, res := range run.Results {
			detail := fmt.Sprintf("%d definitions, %d chunks", res.Database.DefinitionsCount, res.Database.ChunksCount)
			if err := journal.Event(ctx, run.RunID, code, "process", "info", detail); err != nil {
				p.logger.Warn("journal event failed", "error", err)
				break
			}
		}
		if err := journal.FinishRun(ctx, run.RunID, run.FinishedAt, run.Attempted, len(run.Results), len(run.Failures)); err != nil {
			p.logger.Warn("journal finish failed", "error", err)
		}
	}

	p.logger.Info("run complete",
		"run_id", run.RunID,
		"attempted", run.Attempted,
		"succeeded", len(run.Results),
		"failed", len(run.Failures))
	return run, nil
}

// openJournal opens the run journal and records the run start. The
// journal is best-effort: failures degrade to a warning, never abort
// the run.
func (p *Pipeline) openJournal(ctx context.Context, run *RunResult) *runlog.Journal {
	if p.cfg.RunLogPath == "" {
		return nil
	}
	journal, err := runlog.Open(p.cfg.RunLogPath)
	if err != nil {
		p.logger.Warn("run journal unavailable", "path", p.cfg.RunLogPath, "error", err)
		return nil
	}
	if p.cfg.RetentionDays > 0 {
		keep := time.Duration(p.cfg.RetentionDays) * 24 * time.Hour
		if pruned, err := journal.Prune(ctx, keep); err != nil {
			p.logger.Warn("run journal prune failed", "error", err)
		} else if pruned > 0 {
			p.logger.Info("run journal pruned", "runs", pruned, "retention_days", p.cfg.RetentionDays)
		}
	}
	if err := journal.StartRun(ctx, run.RunID, run.StartedAt); err != nil {
		p.logger.Warn("run journal start failed", "error", err)
		journal.Close()
		return nil
	}
	return journal
}

// processJurisdiction runs extraction through annotation for one
// jurisdiction and writes its definitions database.
func (p *Pipeline) processJurisdiction(ctx context.Context, code string, paths []string) (*JurisdictionResult, error) {
	started := time.Now()

	src := p.newSource()
	native, _ := src.(*docload.PDFExtractor)
	var quality *docload.ExtractionQuality

	var raw []docload.RawChunk
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunks, err := src.Chunks(ctx, path, code)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", path, err)
		}
		raw = append(raw, chunks...)

		if native != nil && native.Quality != nil {
			if quality == nil {
				quality = &docload.ExtractionQuality{}
			}
			quality.Merge(*native.Quality)
		}
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no text extracted from %d file(s)", len(paths))
	}
	if quality != nil && quality.Degraded() {
		p.logger.Warn("extraction quality degraded",
			"jurisdiction", code,
			"chars_per_page", quality.CharsPerPage,
			"printable_ratio", quality.PrintableRatio)
	}

	enh := p.enhancer.Enhance(raw)
	defs := p.extractor.Extract(enh.Chunks)

	annotated := make([]AnnotatedDefinition, 0, len(defs))
	for _, d := range defs {
		annotated = append(annotated, AnnotatedDefinition{
			Definition: d,
			Verification: p.linker.Resolve(sourcelink.Request{
				Term:             d.Term,
				StateCode:        d.StateCode,
				Page:             d.PDFPage,
				SectionReference: d.SectionReference,
				Confidence:       d.Confidence,
			}),
		})
	}

	db := &DefinitionsDatabase{
		StateCode:        code,
		ProcessingDate:   time.Now(),
		SourceFile:       strings.Join(paths, ";"),
		DefinitionsCount: len(annotated),
		ChunksCount:      len(enh.Chunks),
		Definitions:      annotated,
		EnhancedChunks:   enh.Chunks,
		PageMapping:      pageMapping(enh.Chunks),
		Metrics: ProcessingMetrics{
			DurationMS:        time.Since(started).Milliseconds(),
			RawChunks:         len(raw),
			DroppedEmpty:      enh.DroppedEmpty,
			DuplicatesRemoved: enh.DuplicatesRemoved,
			PagesSeen:         len(pageMapping(enh.Chunks)),
			Extraction:        quality,
		},
	}

	res := &JurisdictionResult{StateCode: code, Database: db}

	if table, err := p.tableFor(code); err == nil && table != nil {
		res.Architecture = regmap.NewMapper(table, p.logger).Map(regmap.ContentBySection(enh.Chunks))
		mdPath := filepath.Join(p.cfg.OutDir, strings.ToLower(code)+"_architecture.md")
		if err := regmap.WriteMarkdownReport(mdPath, res.Architecture); err != nil {
			p.logger.Warn("architecture report write failed", "jurisdiction", code, "error", err)
		}
	}

	dbPath := filepath.Join(p.cfg.OutDir, strings.ToLower(code)+"_definitions.json")
	if err := writeJSON(dbPath, db); err != nil {
		return nil, fmt.Errorf("write definitions database: %w", err)
	}
	res.DatabasePath = dbPath

	p.logger.Info("jurisdiction processed",
		"jurisdiction", code,
		"chunks", db.ChunksCount,
		"definitions", db.DefinitionsCount,
		"duration_ms", db.Metrics.DurationMS)
	return res, nil
}

// tableFor resolves the statutory architecture for a jurisdiction: a
// YAML override in TablesDir wins, then the built-ins. Nil with nil
// error means no architecture is configured, which is fine.
func (p *Pipeline) tableFor(code string) (*regmap.JurisdictionTable, error) {
	if p.cfg.TablesDir != "" {
		path := filepath.Join(p.cfg.TablesDir, strings.ToLower(code)+".yaml")
		if _, err := os.Stat(path); err == nil {
			return regmap.LoadTable(path)
		}
	}
	if strings.EqualFold(code, "CA") {
		return regmap.CaliforniaTable()
	}
	return nil, nil
}

// pageMapping indexes chunk IDs by page number for the database
// artifact.
func pageMapping(chunks []enhance.EnhancedChunk) map[string][]string {
	m := make(map[string][]string)
	for _, c := range chunks {
		key := strconv.Itoa(c.PageNumber)
		m[key] = append(m[key], c.ChunkID)
	}
	return m
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
