package workspace

import (
	"fmt"
)

// ManifestNotFoundError occurs when the workspace file cannot be read.
type ManifestNotFoundError struct {
	Path string
	Err  error
}

func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf("workspace file not found at '%s': %v", e.Path, e.Err)
}

func (e *ManifestNotFoundError) Unwrap() error {
	return e.Err
}

// ManifestParseError occurs when the workspace file is not valid YAML.
type ManifestParseError struct {
	Path string
	Err  error
}

func (e *ManifestParseError) Error() string {
	return fmt.Sprintf("failed to parse workspace file at '%s': %v", e.Path, e.Err)
}

func (e *ManifestParseError) Unwrap() error {
	return e.Err
}

// ManifestValidationError occurs when the workspace file fails validation.
type ManifestValidationError struct {
	Path    string
	Field   string
	Message string
}

func (e *ManifestValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("workspace validation failed at '%s': %s (field: %s)",
			e.Path, e.Message, e.Field)
	}
	return fmt.Sprintf("workspace validation failed at '%s': %s", e.Path, e.Message)
}

// NoConnectionsError occurs when a workspace file defines no connections.
type NoConnectionsError struct {
	Path string
}

func (e *NoConnectionsError) Error() string {
	return fmt.Sprintf("no connections defined in '%s'", e.Path)
}

// ConnectionNotFoundError occurs when a named connection does not exist.
type ConnectionNotFoundError struct {
	Name string
}

func (e *ConnectionNotFoundError) Error() string {
	return fmt.Sprintf("connection '%s' not found", e.Name)
}

// ConnectError occurs when the schema for a connection cannot be loaded.
type ConnectError struct {
	Name string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect '%s': %v", e.Name, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}
