package operator

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"howett.net/plist"
)

type yamlTable struct {
	Operators []Entry `yaml:"operators"`
}

// LoadFile reads a region table. ".plist" files hold an array of entry dicts;
// ".yaml"/".yml" files hold an "operators" list of entries.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("operator: read table: %w", err)
	}
	var entries []Entry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".plist":
		entries, err = decodePlist(data)
	case ".yaml", ".yml":
		entries, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("operator: unsupported table format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("operator: decode %s: %w", path, err)
	}
	return NewTable(entries)
}

func decodeYAML(data []byte) ([]Entry, error) {
	var doc yamlTable
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Operators, nil
}

func decodePlist(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := plist.NewDecoder(bytes.NewReader(data)).Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}
