package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lihtc-analytics/qapflow/sourcelink"
)

// Chunk source selection for the extraction stage.
const (
	ChunkSourceNative  = "native"  // pdfcpu content-stream extraction
	ChunkSourceDocling = "docling" // sibling Docling chunk-export JSON files
)

// Config holds the full pipeline configuration.
type Config struct {
	QAPRoot       string `yaml:"qap_root"`
	OutDir        string `yaml:"out_dir"`
	SplitDir      string `yaml:"split_dir"`
	MaxPages      int    `yaml:"max_pages"`
	Workers       int    `yaml:"workers"`
	ChunkSource   string `yaml:"chunk_source"` // docling | native
	RunLogPath    string `yaml:"runlog_path"`
	RetentionDays int    `yaml:"retention_days"` // journal runs older than this are pruned; 0 keeps all
	TablesDir     string `yaml:"tables_dir"`     // jurisdiction table overrides, optional
	ExcelReport   bool   `yaml:"excel_report"`
	LogLevel      string `yaml:"log_level"` // debug | info | warn | error

	Sources []sourcelink.PDFSource `yaml:"sources"`
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		QAPRoot:       "qap_documents",
		OutDir:        "qap_output",
		SplitDir:      "split_sections",
		MaxPages:      100,
		Workers:       4,
		ChunkSource:   ChunkSourceNative,
		RunLogPath:    "qapflow_runs.db",
		RetentionDays: 90,
		LogLevel:      "info",
	}
}

// LoadConfig reads and parses a YAML config file. Returns DefaultConfig
// merged with the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.QAPRoot == "" {
		return fmt.Errorf("qap_root is required")
	}
	if c.OutDir == "" {
		return fmt.Errorf("out_dir is required")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max_pages must be > 0")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0")
	}
	switch c.ChunkSource {
	case ChunkSourceNative, ChunkSourceDocling, "":
	default:
		return fmt.Errorf("unsupported chunk_source %q", c.ChunkSource)
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention_days must be >= 0")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("unsupported log_level %q", c.LogLevel)
	}
	for i, s := range c.Sources {
		if s.StateCode == "" {
			return fmt.Errorf("sources[%d]: state_code is required", i)
		}
		if s.Available && s.BaseURL == "" {
			return fmt.Errorf("sources[%d]: base_url is required for an available source", i)
		}
	}
	return nil
}
