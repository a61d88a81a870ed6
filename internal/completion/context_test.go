package completion

import (
	"testing"

	"github.com/damoonrashidi/peek/pkg/protocol"
	"github.com/google/go-cmp/cmp"
)

func TestContextString(t *testing.T) {
	tests := []struct {
		ctx  Context
		want string
	}{
		{Context{Kind: KindGeneral}, "general"},
		{Context{Kind: KindTable}, "table"},
		{Context{Kind: KindColumn}, "column"},
		{Context{Kind: KindColumn, Table: "users"}, "column(users)"},
		{Context{Kind: KindTableForJoin}, "table_for_join"},
		{Context{Kind: KindWhereOperand}, "where_operand"},
	}

	for _, tt := range tests {
		if got := tt.ctx.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestList_Protocol(t *testing.T) {
	rng := Range{Start: Position{Line: 2, Column: 5}, End: Position{Line: 2, Column: 7}}
	list := &List{Items: []Candidate{{
		Label:         "users",
		Kind:          protocol.CompletionItemKindClass,
		InsertText:    "users",
		Documentation: "Table: users",
		Range:         rng,
	}}}

	want := protocol.CompletionList{Items: []protocol.CompletionItem{{
		Label:         "users",
		Kind:          protocol.CompletionItemKindClass,
		Documentation: "Table: users",
		InsertText:    "users",
		TextEdit: &protocol.TextEdit{
			Range: protocol.Range{
				Start: protocol.Position{Line: 1, Character: 4},
				End:   protocol.Position{Line: 1, Character: 6},
			},
			NewText: "users",
		},
	}}}

	if diff := cmp.Diff(want, list.Protocol()); diff != "" {
		t.Errorf("Protocol() mismatch (-want +got):\n%s", diff)
	}

	empty := (&List{Items: []Candidate{}}).Protocol()
	if empty.Items == nil || len(empty.Items) != 0 {
		t.Errorf("expected empty non-nil items, got %#v", empty.Items)
	}
}
