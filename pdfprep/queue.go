package pdfprep

import (
	"path/filepath"
	"strings"
	"time"
)

// priorityJurisdictions get "high" queue priority: the practice's two
// primary markets are always processed first.
var priorityJurisdictions = map[string]bool{
	"CA": true,
	"TX": true,
}

// GenerateChunkingConfig builds the processing queue driving the chunking
// stage from an aggregate preprocessing result. Pure data transformation:
// the queue lists work items in jurisdiction + document + section order.
func GenerateChunkingConfig(res *DirectoryResult, maxPages int) QueueConfig {
	cfg := QueueConfig{
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
		Root:            res.Root,
		MaxPagesPerFile: maxPages,
	}

	for _, doc := range res.Documents {
		if doc.Status == StatusError && !doc.SplitPerformed {
			continue
		}
		priority := "normal"
		if priorityJurisdictions[doc.Jurisdiction] {
			priority = "high"
		}
		stem := strings.TrimSuffix(filepath.Base(doc.OriginalPath), filepath.Ext(doc.OriginalPath))

		for i, path := range doc.ReadyForChunking {
			item := QueueItem{
				Jurisdiction: doc.Jurisdiction,
				Document:     stem,
				Path:         path,
				Priority:     priority,
			}
			if doc.SplitPerformed {
				item.IsSection = true
				item.SectionIndex = i + 1
			}
			cfg.Items = append(cfg.Items, item)
		}
	}
	return cfg
}
