package regmap

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed jurisdictions/ca.yaml
var caTableYAML []byte

// CaliforniaTable returns the built-in CA statutory architecture.
func CaliforniaTable() (*JurisdictionTable, error) {
	return parseTable(caTableYAML)
}

// LoadTable reads a jurisdiction table from a YAML file, for
// jurisdictions beyond the built-ins or for overriding a built-in with
// a newer regulation year.
func LoadTable(path string) (*JurisdictionTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jurisdiction table: %w", err)
	}
	return parseTable(data)
}

func parseTable(data []byte) (*JurisdictionTable, error) {
	var t JurisdictionTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse jurisdiction table: %w", err)
	}
	if t.Jurisdiction == "" {
		return nil, fmt.Errorf("jurisdiction table missing jurisdiction code")
	}
	if len(t.Sections) == 0 {
		return nil, fmt.Errorf("jurisdiction table %s has no sections", t.Jurisdiction)
	}
	seen := make(map[string]bool, len(t.Sections))
	for _, s := range t.Sections {
		if s.Number == "" || s.Title == "" {
			return nil, fmt.Errorf("jurisdiction table %s: section missing number or title", t.Jurisdiction)
		}
		if seen[s.Number] {
			return nil, fmt.Errorf("jurisdiction table %s: duplicate section %s", t.Jurisdiction, s.Number)
		}
		seen[s.Number] = true
	}
	return &t, nil
}
