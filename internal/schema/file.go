package schema

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk form of a snapshot. It is the same shape the
// introspection service returns, so JSON exports load unchanged (YAML is a
// superset of JSON).
type Document struct {
	Tables     map[string][]string `yaml:"tables" json:"tables"`
	References map[string][]string `yaml:"references" json:"references"`
}

// SchemaFileError occurs when a schema file cannot be read or decoded.
type SchemaFileError struct {
	Path string
	Err  error
}

func (e *SchemaFileError) Error() string {
	return fmt.Sprintf("failed to load schema file '%s': %v", e.Path, e.Err)
}

func (e *SchemaFileError) Unwrap() error {
	return e.Err
}

// Load reads a YAML or JSON schema document from path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SchemaFileError{Path: path, Err: err}
	}

	snap, err := Decode(data)
	if err != nil {
		return nil, &SchemaFileError{Path: path, Err: err}
	}
	return snap, nil
}

// Decode parses a schema document.
func Decode(data []byte) (*Snapshot, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return New(doc.Tables, doc.References), nil
}

// Document returns the snapshot in its serializable form.
func (s *Snapshot) Document() Document {
	return Document{
		Tables:     s.Tables(),
		References: s.References(),
	}
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
