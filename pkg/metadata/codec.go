package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ToJSON serializes the catalog to JSON bytes.
func (c *Catalog) ToJSON() ([]byte, error) {
	return json.Marshal(c)
}

// ToJSONIndent serializes the catalog to indented JSON bytes.
func (c *Catalog) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// ToYAML serializes the catalog to YAML bytes.
func (c *Catalog) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// ParseJSON parses a catalog from JSON bytes.
func ParseJSON(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog json: %w", err)
	}
	c.normalize()
	return &c, nil
}

// ParseYAML parses a catalog from YAML bytes.
func ParseYAML(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	c.normalize()
	return &c, nil
}

// Load loads a catalog file, choosing the codec by extension
// (.yaml/.yml for YAML, anything else JSON).
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// Save writes the catalog to a file, choosing the codec by extension.
func (c *Catalog) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = c.ToYAML()
	default:
		data, err = c.ToJSONIndent()
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
