// Package workspace reads named database connections grouped into
// workspaces and turns the selected connection into the active completion
// provider.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is the parsed workspace file.
type Manifest struct {
	Workspaces []Workspace `yaml:"workspaces"`

	// Internal fields
	path string // File the manifest was read from
}

// Workspace groups related connections.
type Workspace struct {
	Name        string       `yaml:"name"`
	Connections []Connection `yaml:"connections"`
}

// Connection describes where a schema comes from: a live database URL or
// a schema file exported earlier.
type Connection struct {
	Name          string   `yaml:"name"`
	URL           string   `yaml:"url"`
	Color         string   `yaml:"color"`
	SchemaFile    string   `yaml:"schema_file"`
	Schemas       []string `yaml:"schemas"`
	ExcludeTables []string `yaml:"exclude_tables"`
}

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ParseManifest reads and validates a workspace file.
func ParseManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ManifestNotFoundError{
			Path: path,
			Err:  err,
		}
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &ManifestParseError{
			Path: path,
			Err:  err,
		}
	}

	m.path = path

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks workspace and connection fields.
func (m *Manifest) Validate() error {
	count := 0
	workspaces := make(map[string]bool)
	for i, ws := range m.Workspaces {
		field := fmt.Sprintf("workspaces[%d]", i)
		if ws.Name == "" {
			return &ManifestValidationError{
				Path:    m.path,
				Field:   field + ".name",
				Message: "name is required",
			}
		}
		if workspaces[ws.Name] {
			return &ManifestValidationError{
				Path:    m.path,
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate workspace: %s", ws.Name),
			}
		}
		workspaces[ws.Name] = true

		connections := make(map[string]bool)
		for j, conn := range ws.Connections {
			field := fmt.Sprintf("%s.connections[%d]", field, j)
			if err := m.validateConnection(field, conn); err != nil {
				return err
			}
			if connections[conn.Name] {
				return &ManifestValidationError{
					Path:    m.path,
					Field:   field + ".name",
					Message: fmt.Sprintf("duplicate connection: %s", conn.Name),
				}
			}
			connections[conn.Name] = true
			count++
		}
	}

	if count == 0 {
		return &NoConnectionsError{Path: m.path}
	}
	return nil
}

func (m *Manifest) validateConnection(field string, conn Connection) error {
	switch {
	case conn.Name == "":
		return &ManifestValidationError{
			Path:    m.path,
			Field:   field + ".name",
			Message: "name is required",
		}
	case strings.Contains(conn.Name, "/"):
		return &ManifestValidationError{
			Path:    m.path,
			Field:   field + ".name",
			Message: "name must not contain '/'",
		}
	case conn.URL == "" && conn.SchemaFile == "":
		return &ManifestValidationError{
			Path:    m.path,
			Field:   field,
			Message: "one of url or schema_file is required",
		}
	case conn.URL != "" && conn.SchemaFile != "":
		return &ManifestValidationError{
			Path:    m.path,
			Field:   field,
			Message: "url and schema_file are mutually exclusive",
		}
	case conn.Color != "" && !colorPattern.MatchString(conn.Color):
		return &ManifestValidationError{
			Path:    m.path,
			Field:   field + ".color",
			Message: fmt.Sprintf("invalid color: %s (must be #rgb or #rrggbb)", conn.Color),
		}
	}
	return nil
}

// Path returns the workspace file path.
func (m *Manifest) Path() string {
	return m.path
}

// Dir returns the directory containing the workspace file.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.path)
}

// Find looks up a connection by "workspace/connection", or by bare
// connection name when that name is unique across workspaces. It returns the
// connection and its qualified name.
func (m *Manifest) Find(name string) (*Connection, string, bool) {
	wsName, connName, qualified := strings.Cut(name, "/")
	if !qualified {
		connName = name
	}

	var (
		found  *Connection
		key    string
		result int
	)
	for i := range m.Workspaces {
		ws := &m.Workspaces[i]
		if qualified && ws.Name != wsName {
			continue
		}
		for j := range ws.Connections {
			if ws.Connections[j].Name == connName {
				found = &ws.Connections[j]
				key = ws.Name + "/" + connName
				result++
			}
		}
	}
	if result != 1 {
		return nil, "", false
	}
	return found, key, true
}

// Names returns every connection as "workspace/connection", in file order.
func (m *Manifest) Names() []string {
	var names []string
	for _, ws := range m.Workspaces {
		for _, conn := range ws.Connections {
			names = append(names, ws.Name+"/"+conn.Name)
		}
	}
	return names
}

// SchemaPath resolves a connection's schema file relative to the workspace
// file.
func (m *Manifest) SchemaPath(conn *Connection) string {
	if conn.SchemaFile == "" || filepath.IsAbs(conn.SchemaFile) {
		return conn.SchemaFile
	}
	return filepath.Join(m.Dir(), conn.SchemaFile)
}
