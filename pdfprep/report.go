package pdfprep

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteQueueConfig writes the chunking queue configuration as JSON.
func WriteQueueConfig(cfg QueueConfig, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal queue config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write queue config: %w", err)
	}
	return nil
}

// WriteMarkdownReport writes the human-readable preprocessing summary:
// counts, split details, failures with reasons, and the processing queue.
func WriteMarkdownReport(res *DirectoryResult, queue QueueConfig, path string) error {
	var b strings.Builder

	b.WriteString("# QAP Preprocessing Report\n\n")
	fmt.Fprintf(&b, "Root: `%s`\n\n", res.Root)
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "| Discovered | Ready | Split | Failed |\n|---|---|---|---|\n| %d | %d | %d | %d |\n\n",
		res.Discovered, res.Ready, res.Split, res.Failed)

	var splitDocs, failedDocs []PreprocessResult
	for _, doc := range res.Documents {
		switch {
		case doc.Status == StatusError:
			failedDocs = append(failedDocs, doc)
		case doc.SplitPerformed:
			splitDocs = append(splitDocs, doc)
		}
	}

	if len(splitDocs) > 0 {
		b.WriteString("## Split documents\n\n")
		for _, doc := range splitDocs {
			fmt.Fprintf(&b, "- **%s** `%s` — %d pages -> %d sections\n",
				doc.Jurisdiction, filepath.Base(doc.OriginalPath), doc.PageCount, len(doc.ReadyForChunking))
		}
		b.WriteString("\n")
	}

	if len(failedDocs) > 0 {
		b.WriteString("## Failures\n\n")
		for _, doc := range failedDocs {
			fmt.Fprintf(&b, "- **%s** `%s` — %s\n",
				doc.Jurisdiction, filepath.Base(doc.OriginalPath), doc.Error)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Processing queue\n\n")
	b.WriteString("| # | Jurisdiction | Document | Section | Priority |\n|---|---|---|---|---|\n")
	for i, item := range queue.Items {
		section := "-"
		if item.IsSection {
			section = fmt.Sprintf("%d", item.SectionIndex)
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
			i+1, item.Jurisdiction, item.Document, section, item.Priority)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
