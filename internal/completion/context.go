// Package completion decides what the cursor in a partial SQL statement
// expects next and turns that decision into completion candidates drawn from
// the schema model.
package completion

import (
	"github.com/damoonrashidi/peek/pkg/protocol"
)

// Kind is the category of token expected at the cursor.
type Kind int

const (
	KindGeneral Kind = iota
	KindTable
	KindColumn
	KindTableForJoin
	KindWhereOperand
)

func (k Kind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindColumn:
		return "column"
	case KindTableForJoin:
		return "table_for_join"
	case KindWhereOperand:
		return "where_operand"
	default:
		return "general"
	}
}

// Context is the classification of a cursor position. Table is only set for
// KindColumn, when a qualifier in front of the cursor named a table or alias.
type Context struct {
	Kind  Kind
	Table string
}

func (c Context) String() string {
	if c.Table != "" {
		return c.Kind.String() + "(" + c.Table + ")"
	}
	return c.Kind.String()
}

// Position is a 1-based editor position. Columns count code points.
type Position struct {
	Line   int
	Column int
}

// Range is a span of editor positions, end exclusive.
type Range struct {
	Start Position
	End   Position
}

// Candidate is one completion suggestion.
type Candidate struct {
	Label         string
	Kind          protocol.CompletionItemKind
	InsertText    string
	Documentation string
	Range         Range
}

// List is the result of a completion request. Items is never nil.
type List struct {
	Items []Candidate
}

// Labels returns the candidate labels in order.
func (l *List) Labels() []string {
	labels := make([]string, len(l.Items))
	for i, c := range l.Items {
		labels[i] = c.Label
	}
	return labels
}

// Protocol converts the list to zero-based wire form. Each item replaces its
// range with its insert text.
func (l *List) Protocol() protocol.CompletionList {
	items := make([]protocol.CompletionItem, len(l.Items))
	for i, c := range l.Items {
		items[i] = protocol.CompletionItem{
			Label:         c.Label,
			Kind:          c.Kind,
			Documentation: c.Documentation,
			InsertText:    c.InsertText,
			TextEdit: &protocol.TextEdit{
				Range:   c.Range.Protocol(),
				NewText: c.InsertText,
			},
		}
	}
	return protocol.CompletionList{Items: items}
}

// Protocol converts r to a zero-based wire range.
func (r Range) Protocol() protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: r.Start.Line - 1, Character: r.Start.Column - 1},
		End:   protocol.Position{Line: r.End.Line - 1, Character: r.End.Column - 1},
	}
}
