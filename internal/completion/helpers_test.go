package completion

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/damoonrashidi/peek/internal/schema"
)

// shopSchema is the fixture most tests complete against.
func shopSchema() *schema.Snapshot {
	return schema.New(
		map[string][]string{
			"orders":    {"id", "customer_id", "total"},
			"customers": {"id", "name", "email"},
			"logs":      {"id", "message"},
			"users":     {"id", "name", "email"},
		},
		map[string][]string{
			"orders.customer_id": {"customers.id"},
		},
	)
}

// caret strips the single "|" from input and returns the text and the
// 1-based position it marked.
func caret(t *testing.T, input string) (string, Position) {
	t.Helper()

	i := strings.Index(input, "|")
	if i < 0 || strings.Count(input, "|") != 1 {
		t.Fatalf("input %q must contain exactly one caret", input)
	}
	before := input[:i]
	line := strings.Count(before, "\n") + 1
	column := utf8.RuneCountInString(before[strings.LastIndex(before, "\n")+1:]) + 1
	return input[:i] + input[i+1:], Position{Line: line, Column: column}
}
