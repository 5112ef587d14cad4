package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadDatabase reads a jurisdiction's definitions database from the
// output directory.
func (p *Pipeline) LoadDatabase(stateCode string) (*DefinitionsDatabase, error) {
	path := filepath.Join(p.cfg.OutDir, strings.ToLower(stateCode)+"_definitions.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("no definitions database for %s: %w", strings.ToUpper(stateCode), err)
	}
	var db DefinitionsDatabase
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parse definitions database %s: %w", path, err)
	}
	return &db, nil
}

// Jurisdictions lists the jurisdiction codes with a definitions
// database in the output directory.
func (p *Pipeline) Jurisdictions() ([]string, error) {
	entries, err := os.ReadDir(p.cfg.OutDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read output dir: %w", err)
	}
	var codes []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, "_definitions.json") {
			continue
		}
		codes = append(codes, strings.ToUpper(strings.TrimSuffix(name, "_definitions.json")))
	}
	return codes, nil
}
