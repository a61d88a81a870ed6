package lsp

import (
	"strings"

	"github.com/damoonrashidi/peek/internal/completion"
	"github.com/sahilm/fuzzy"
)

// candidateLabels implements fuzzy.Source over lowercased candidate labels.
type candidateLabels []string

func (c candidateLabels) String(i int) string { return c[i] }
func (c candidateLabels) Len() int            { return len(c) }

// fuzzyFilter keeps the candidates matching prefix, best match first.
// Matching is case-insensitive. An empty prefix keeps everything in order.
func fuzzyFilter(prefix string, items []completion.Candidate) []completion.Candidate {
	if prefix == "" || len(items) == 0 {
		return items
	}

	labels := make(candidateLabels, len(items))
	for i, item := range items {
		labels[i] = strings.ToLower(item.Label)
	}

	matches := fuzzy.FindFrom(strings.ToLower(prefix), labels)

	result := make([]completion.Candidate, 0, len(matches))
	for _, m := range matches {
		result = append(result, items[m.Index])
	}
	return result
}

// limit truncates items to maxItems, reporting whether anything was dropped.
// maxItems <= 0 means unlimited.
func limit(items []completion.Candidate, maxItems int) ([]completion.Candidate, bool) {
	if maxItems <= 0 || len(items) <= maxItems {
		return items, false
	}
	return items[:maxItems], true
}
