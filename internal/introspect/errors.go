package introspect

import (
	"fmt"
)

// IntrospectionError occurs when reading the schema from the database fails.
type IntrospectionError struct {
	Stage string
	Err   error
}

func (e *IntrospectionError) Error() string {
	return fmt.Sprintf("failed to introspect %s: %v", e.Stage, e.Err)
}

func (e *IntrospectionError) Unwrap() error {
	return e.Err
}
