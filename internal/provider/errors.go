package provider

import (
	"fmt"
)

// ProviderNotFoundError occurs when no provider is registered for a language.
type ProviderNotFoundError struct {
	Language string
}

func (e *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("no completion provider registered for language '%s'", e.Language)
}
