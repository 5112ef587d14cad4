package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lihtc-analytics/qapflow/pdfprep"
	"github.com/lihtc-analytics/qapflow/pipeline"
	"github.com/lihtc-analytics/qapflow/regmap"
	"github.com/lihtc-analytics/qapflow/report"
	"github.com/lihtc-analytics/qapflow/runlog"
	"github.com/lihtc-analytics/qapflow/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "preprocess":
		cmdPreprocess(os.Args[2:])
	case "run":
		cmdRun(os.Args[2:])
	case "sections":
		cmdSections(os.Args[2:])
	case "runs":
		cmdRuns(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	case "mcp":
		cmdMCP(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `qapflow — QAP document processing pipeline

usage:
  qapflow preprocess [-pdf file | -root dir] [-max-pages n] [-out dir] [-config json] [-report md]
  qapflow run        [-c config.yaml]
  qapflow sections   [-c config.yaml] [-state CA] [-out md]
  qapflow runs       [-c config.yaml] [-n 20]
  qapflow serve      [-c config.yaml] [-listen :8090]
  qapflow mcp        [-c config.yaml]

preprocess  Count pages and split oversized PDFs; emit the chunking queue.
run         Execute the full pipeline over the configured document tree.
sections    Map extracted content onto a jurisdiction's statutory architecture.
runs        List recent pipeline runs from the journal.
serve       Serve the read-only results API over HTTP.
mcp         Expose the pipeline tools over MCP on stdio.
`)
}

func setupLogging(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func loadConfig(path string) *pipeline.Config {
	if path == "" {
		return pipeline.DefaultConfig()
	}
	cfg, err := pipeline.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func cmdPreprocess(args []string) {
	fs := flag.NewFlagSet("preprocess", flag.ExitOnError)
	pdf := fs.String("pdf", "", "single PDF to preprocess")
	root := fs.String("root", "", "QAP directory tree to preprocess")
	maxPages := fs.Int("max-pages", pdfprep.DefaultMaxPages, "pages per section threshold")
	outDir := fs.String("out", "", "output directory for split sections")
	configOut := fs.String("config", "chunking_config.json", "chunking queue JSON output path")
	reportOut := fs.String("report", "preprocessing_report.md", "markdown report output path")
	logLevel := fs.String("log-level", "info", "debug | info | warn | error")
	fs.Parse(args)

	logger := setupLogging(*logLevel)
	prep := pdfprep.New(pdfprep.Config{MaxPages: *maxPages, OutDir: *outDir, Logger: logger})

	if *pdf != "" {
		res := prep.PreprocessSingle(*pdf, false)
		out, _ := json.MarshalIndent(res, "", "  ")
		fmt.Println(string(out))
		if res.Status == pdfprep.StatusError {
			os.Exit(1)
		}
		return
	}

	if *root == "" {
		fmt.Fprintln(os.Stderr, "preprocess requires -pdf or -root")
		os.Exit(1)
	}

	ctx, cancel := signalContext()
	defer cancel()

	dir, err := prep.PreprocessDirectory(ctx, *root)
	if err != nil {
		logger.Error("preprocess failed", "error", err)
		os.Exit(1)
	}

	queue := pdfprep.GenerateChunkingConfig(dir, *maxPages)
	if err := pdfprep.WriteQueueConfig(queue, *configOut); err != nil {
		logger.Error("write queue config", "error", err)
		os.Exit(1)
	}
	if err := pdfprep.WriteMarkdownReport(dir, queue, *reportOut); err != nil {
		logger.Error("write report", "error", err)
		os.Exit(1)
	}
	logger.Info("preprocessing artifacts written", "config", *configOut, "report", *reportOut)
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("c", "", "YAML config path")
	fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	logger := setupLogging(cfg.LogLevel)

	ctx, cancel := signalContext()
	defer cancel()

	run, err := pipeline.New(cfg, logger).Run(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	if cfg.ExcelReport {
		xlsx := filepath.Join(cfg.OutDir, run.RunID+"_report.xlsx")
		if err := report.WriteWorkbook(xlsx, run); err != nil {
			logger.Error("excel report", "error", err)
		} else {
			logger.Info("excel report written", "path", xlsx)
		}
	}

	out, _ := json.MarshalIndent(run, "", "  ")
	fmt.Println(string(out))
	if len(run.Failures) > 0 && len(run.Results) == 0 {
		os.Exit(1)
	}
}

func cmdSections(args []string) {
	fs := flag.NewFlagSet("sections", flag.ExitOnError)
	cfgPath := fs.String("c", "", "YAML config path")
	state := fs.String("state", "CA", "jurisdiction code")
	outPath := fs.String("out", "", "markdown report output path (default stdout summary)")
	fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	logger := setupLogging(cfg.LogLevel)

	pipe := pipeline.New(cfg, logger)
	db, err := pipe.LoadDatabase(*state)
	if err != nil {
		logger.Error("load database", "error", err)
		os.Exit(1)
	}

	table, err := sectionTable(cfg, *state)
	if err != nil {
		logger.Error("load table", "error", err)
		os.Exit(1)
	}
	rep := regmap.NewMapper(table, logger).Map(regmap.ContentBySection(db.EnhancedChunks))

	if *outPath != "" {
		if err := regmap.WriteMarkdownReport(*outPath, rep); err != nil {
			logger.Error("write report", "error", err)
			os.Exit(1)
		}
		logger.Info("architecture report written", "path", *outPath)
		return
	}
	out, _ := json.MarshalIndent(rep, "", "  ")
	fmt.Println(string(out))
}

// sectionTable resolves a jurisdiction's statutory architecture: a YAML
// override in the configured tables directory wins over the built-ins.
func sectionTable(cfg *pipeline.Config, state string) (*regmap.JurisdictionTable, error) {
	if cfg.TablesDir != "" {
		path := filepath.Join(cfg.TablesDir, strings.ToLower(state)+".yaml")
		if _, err := os.Stat(path); err == nil {
			return regmap.LoadTable(path)
		}
	}
	if strings.EqualFold(state, "CA") {
		return regmap.CaliforniaTable()
	}
	return nil, fmt.Errorf("no statutory architecture configured for %s", state)
}

func cmdRuns(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	cfgPath := fs.String("c", "", "YAML config path")
	limit := fs.Int("n", 20, "maximum runs to list")
	fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	logger := setupLogging(cfg.LogLevel)

	if cfg.RunLogPath == "" {
		fmt.Fprintln(os.Stderr, "runs requires runlog_path in the config")
		os.Exit(1)
	}

	ctx, cancel := signalContext()
	defer cancel()

	journal, err := runlog.Open(cfg.RunLogPath)
	if err != nil {
		logger.Error("open run journal", "path", cfg.RunLogPath, "error", err)
		os.Exit(1)
	}
	defer journal.Close()

	summaries, err := journal.RecentRuns(ctx, *limit)
	if err != nil {
		logger.Error("list runs", "error", err)
		os.Exit(1)
	}
	out, _ := json.MarshalIndent(summaries, "", "  ")
	fmt.Println(string(out))
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("c", "", "YAML config path")
	listen := fs.String("listen", ":8090", "listen address")
	fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	logger := setupLogging(cfg.LogLevel)

	ctx, cancel := signalContext()
	defer cancel()

	srv := server.New(pipeline.New(cfg, logger), logger)
	if err := srv.Serve(ctx, *listen); err != nil {
		logger.Error("serve failed", "error", err)
		os.Exit(1)
	}
}

func cmdMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cfgPath := fs.String("c", "", "YAML config path")
	fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	logger := setupLogging(cfg.LogLevel)

	ctx, cancel := signalContext()
	defer cancel()

	srv := mcp.NewServer(&mcp.Implementation{Name: "qapflow", Version: "0.1.0"}, nil)
	pipeline.New(cfg, logger).RegisterMCP(srv)

	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
		logger.Error("mcp server failed", "error", err)
		os.Exit(1)
	}
}
