package completion

import (
	"testing"

	"github.com/damoonrashidi/peek/internal/schema"
	"github.com/damoonrashidi/peek/pkg/protocol"
	"github.com/google/go-cmp/cmp"
)

var testRange = Range{Start: Position{Line: 1, Column: 5}, End: Position{Line: 1, Column: 7}}

func TestAssemble(t *testing.T) {
	snap := shopSchema()
	aliases := map[string]string{"o": "orders", "orders": "orders"}

	tests := []struct {
		name    string
		ctx     Context
		aliases map[string]string
		want    []string
	}{
		{"table", Context{Kind: KindTable}, aliases, []string{"customers", "logs", "orders", "users"}},
		{"join", Context{Kind: KindTableForJoin}, aliases, []string{"customers", "orders"}},
		{"qualified column", Context{Kind: KindColumn, Table: "customers"}, aliases, []string{"id", "name", "email"}},
		{"qualified column folds case", Context{Kind: KindColumn, Table: "CUSTOMERS"}, aliases, []string{"id", "name", "email"}},
		{"unknown table", Context{Kind: KindColumn, Table: "nope"}, aliases, nil},
		{"column", Context{Kind: KindColumn}, aliases, []string{"id", "name", "email", "message", "customer_id", "total", "o", "orders"}},
		{"where scoped", Context{Kind: KindWhereOperand}, aliases, []string{"id", "customer_id", "total", "o", "orders"}},
		{"where unscoped", Context{Kind: KindWhereOperand}, map[string]string{"x": "ghost"}, []string{"id", "name", "email", "message", "customer_id", "total", "x"}},
		{"general", Context{Kind: KindGeneral}, aliases, []string{"customers", "logs", "orders", "users", "id", "name", "email", "message", "customer_id", "total"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, c := range Assemble(tt.ctx, tt.aliases, snap, testRange, false) {
				got = append(got, c.Label)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("labels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAssemble_Candidates(t *testing.T) {
	snap := schema.New(map[string][]string{"orders": {"id"}}, map[string][]string{"orders.id": {"orders.id"}})

	got := Assemble(Context{Kind: KindColumn}, map[string]string{"o": "orders"}, snap, testRange, false)
	want := []Candidate{
		{Label: "id", Kind: protocol.CompletionItemKindField, InsertText: "id", Documentation: "Column: id", Range: testRange},
		{Label: "o", Kind: protocol.CompletionItemKindVariable, InsertText: "o", Documentation: "Table alias: o (orders)", Range: testRange},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}

	got = Assemble(Context{Kind: KindTableForJoin}, nil, snap, testRange, false)
	want = []Candidate{
		{Label: "orders", Kind: protocol.CompletionItemKindFolder, InsertText: "orders", Documentation: "Joinable table: orders", Range: testRange},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_NoDuplicateLabels(t *testing.T) {
	snap := schema.New(map[string][]string{
		"a": {"id", "id", "a"},
		"b": {"id", "b"},
	}, nil)
	for _, kind := range []Kind{KindTable, KindColumn, KindWhereOperand, KindGeneral} {
		seen := make(map[string]bool)
		for _, c := range Assemble(Context{Kind: kind}, map[string]string{"a": "a"}, snap, testRange, true) {
			if seen[c.Label] {
				t.Errorf("%v: duplicate label %q", kind, c.Label)
			}
			seen[c.Label] = true
		}
	}
}

func TestAssemble_KeywordsOnlyWhenDegraded(t *testing.T) {
	snap := shopSchema()
	hasKeyword := func(items []Candidate) bool {
		for _, c := range items {
			if c.Kind == protocol.CompletionItemKindKeyword {
				return true
			}
		}
		return false
	}
	if hasKeyword(Assemble(Context{Kind: KindGeneral}, nil, snap, testRange, false)) {
		t.Error("keywords offered with a syntax tree")
	}
	if !hasKeyword(Assemble(Context{Kind: KindGeneral}, nil, snap, testRange, true)) {
		t.Error("keywords missing in degraded mode")
	}
	if hasKeyword(Assemble(Context{Kind: KindTable}, nil, snap, testRange, true)) {
		t.Error("keywords offered in table context")
	}
}

func TestAssemble_NilSnapshot(t *testing.T) {
	if got := Assemble(Context{Kind: KindGeneral}, nil, nil, testRange, false); len(got) != 0 {
		t.Errorf("expected no candidates, got %d", len(got))
	}
}

func TestScopeTables(t *testing.T) {
	got := ScopeTables(map[string]string{"o": "orders", "orders": "orders", "U": "USERS", "g": "ghost"}, shopSchema())
	if diff := cmp.Diff([]string{"orders", "users"}, got); diff != "" {
		t.Errorf("tables mismatch (-want +got):\n%s", diff)
	}
}
