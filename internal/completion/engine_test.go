package completion

import (
	"sort"
	"testing"

	"github.com/damoonrashidi/peek/internal/schema"
	"github.com/damoonrashidi/peek/internal/syntax"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap/zaptest"
)

func TestEngine_Context(t *testing.T) {
	engine := NewEngine(shopSchema(), zaptest.NewLogger(t))

	tests := []struct {
		input string
		want  Context
		rule  string
	}{
		{"|", Context{Kind: KindGeneral}, "text:general"},
		{"FROM |", Context{Kind: KindTable}, "line:from"},
		{"SELECT * FROM |", Context{Kind: KindTable}, "line:from"},
		{"select * from |", Context{Kind: KindTable}, "line:from"},
		{"SELECT * FROM us|", Context{Kind: KindTable}, "tree:relation"},
		{"SELECT * FROM users, |", Context{Kind: KindTable}, "tree:from"},
		{"SELECT * FROM users u JOIN |", Context{Kind: KindTableForJoin}, "line:join"},
		{"SELECT * FROM users u LEFT OUTER JOIN |", Context{Kind: KindTableForJoin}, "line:join"},
		{"SELECT * FROM users u JOIN ord|", Context{Kind: KindTableForJoin}, "tree:relation"},
		{"SELECT * FROM users WHERE |", Context{Kind: KindWhereOperand}, "line:where"},
		{"SELECT * FROM users WHERE id = 1 AND |", Context{Kind: KindWhereOperand}, "tree:where"},
		{"SELECT * FROM orders o JOIN customers c ON |", Context{Kind: KindWhereOperand}, "tree:join_condition"},
		{"SELECT * FROM orders o JOIN customers c ON c.id = |", Context{Kind: KindWhereOperand}, "tree:join_condition"},
		{"SELECT * FROM users ORDER BY |", Context{Kind: KindColumn}, "tree:ordering"},
		{"SELECT * FROM users GROUP BY na|", Context{Kind: KindColumn}, "tree:ordering"},
		{"SELECT |", Context{Kind: KindColumn}, "tree:select"},
		{"SELECT id, | FROM users", Context{Kind: KindColumn}, "tree:select"},
		{"SELECT u.| FROM users u", Context{Kind: KindColumn, Table: "users"}, "line:qualifier"},
		{"SELECT u.na| FROM users u", Context{Kind: KindColumn, Table: "users"}, "tree:field"},
		{"SELECT * FROM orders o WHERE o.|", Context{Kind: KindColumn, Table: "orders"}, "line:qualifier"},
		{"SELECT * FROM users\nWHERE users.|", Context{Kind: KindColumn, Table: "users"}, "line:qualifier"},
		{"SELECT * FROM x WHERE ghost.|", Context{Kind: KindColumn, Table: "ghost"}, "line:qualifier"},
		{"SELECT * FROM \"Users\" u WHERE u.|", Context{Kind: KindColumn, Table: "Users"}, "line:qualifier"},
		{"SELECT *\nFROM orders o\nWHERE o.total > 1 AND o.cu|", Context{Kind: KindColumn, Table: "orders"}, "tree:field"},
		{"SELECT * FROM (SELECT | FROM orders) AS s", Context{Kind: KindColumn}, "tree:select"},
		{"SELECT * FROM users u WHERE u.name |", Context{Kind: KindWhereOperand}, "tree:where"},
		{"SELECT * FROM users u WHERE u.id = 1 OR u.id |", Context{Kind: KindWhereOperand}, "tree:where"},
		{"SELECT * FROM orders o JOIN customers c ON o.customer_id = c.id |", Context{Kind: KindWhereOperand}, "tree:join_condition"},
		{"SELECT u.name | FROM users u", Context{Kind: KindColumn}, "tree:select"},
		{"SELECT u.name, |", Context{Kind: KindColumn}, "tree:select"},
		{"SELECT * FROM Orders O WHERE o.|", Context{Kind: KindColumn, Table: "Orders"}, "line:qualifier"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			text, pos := caret(t, tt.input)
			got := engine.Complete(text, pos)
			if got.Context != tt.want {
				t.Errorf("context = %v, want %v", got.Context, tt.want)
			}
			if got.Rule != tt.rule {
				t.Errorf("rule = %q, want %q", got.Rule, tt.rule)
			}
		})
	}
}

func TestEngine_AfterFromListsExactlyTables(t *testing.T) {
	snapshots := []*schema.Snapshot{
		shopSchema(),
		schema.Empty(),
		schema.New(map[string][]string{"only": {"a"}}, nil),
	}
	for _, snap := range snapshots {
		engine := NewEngine(snap, zaptest.NewLogger(t))
		text, pos := caret(t, "SELECT * FROM |")

		got := engine.ProvideCompletionItems(text, pos).Labels()
		want := snap.TableNames()
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty(), cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
			t.Errorf("labels mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestEngine_QualifiedColumns(t *testing.T) {
	snap := shopSchema()
	engine := NewEngine(snap, zaptest.NewLogger(t))
	text, pos := caret(t, "SELECT * FROM orders o WHERE o.|")

	list := engine.ProvideCompletionItems(text, pos)
	if diff := cmp.Diff(snap.Columns("orders"), list.Labels()); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	for _, c := range list.Items {
		if want := "Column from orders: " + c.Label; c.Documentation != want {
			t.Errorf("documentation = %q, want %q", c.Documentation, want)
		}
	}
}

func TestEngine_AfterQualifiedFieldIsUnscoped(t *testing.T) {
	engine := NewEngine(shopSchema(), zaptest.NewLogger(t))
	text, pos := caret(t, "SELECT * FROM orders o JOIN customers c ON o.customer_id = c.id |")

	got := engine.ProvideCompletionItems(text, pos).Labels()
	want := []string{"id", "name", "email", "customer_id", "total", "c", "customers", "o", "orders"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_QualifierCaseInsensitive(t *testing.T) {
	snap := shopSchema()
	engine := NewEngine(snap, zaptest.NewLogger(t))
	text, pos := caret(t, "SELECT * FROM Orders O WHERE o.|")

	if diff := cmp.Diff(snap.Columns("orders"), engine.ProvideCompletionItems(text, pos).Labels()); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_NumberIsNotQualifier(t *testing.T) {
	engine := NewEngine(shopSchema(), zaptest.NewLogger(t))
	text, pos := caret(t, "SELECT 1.|")

	got := engine.Complete(text, pos)
	if got.Context.Table != "" {
		t.Errorf("context = %v, want no table", got.Context)
	}
}

func TestEngine_WhereScopedToStatement(t *testing.T) {
	engine := NewEngine(shopSchema(), zaptest.NewLogger(t))
	text, pos := caret(t, "SELECT * FROM logs;\nSELECT * FROM users WHERE |")

	got := engine.ProvideCompletionItems(text, pos).Labels()
	if diff := cmp.Diff([]string{"id", "name", "email", "users"}, got); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_UnknownQualifierYieldsNothing(t *testing.T) {
	engine := NewEngine(shopSchema(), zaptest.NewLogger(t))
	text, pos := caret(t, "SELECT * FROM x WHERE ghost.|")

	list := engine.ProvideCompletionItems(text, pos)
	if list == nil || list.Items == nil {
		t.Fatal("expected a non-nil empty list")
	}
	if len(list.Items) != 0 {
		t.Errorf("expected no items, got %v", list.Labels())
	}
}

func TestEngine_JoinOffersOnlyJoinableTables(t *testing.T) {
	engine := NewEngine(shopSchema(), zaptest.NewLogger(t))
	text, pos := caret(t, "SELECT * FROM orders o JOIN |")

	got := engine.ProvideCompletionItems(text, pos).Labels()
	if diff := cmp.Diff([]string{"customers", "orders"}, got); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_Idempotent(t *testing.T) {
	engine := NewEngine(shopSchema(), zaptest.NewLogger(t))
	inputs := []string{
		"SELECT |",
		"SELECT * FROM orders o JOIN customers c ON o.customer_id = c.id WHERE |",
		"SELECT * FROM orders o, users u WHERE u.|",
		"|",
	}
	for _, input := range inputs {
		text, pos := caret(t, input)
		first := engine.ProvideCompletionItems(text, pos)
		second := engine.ProvideCompletionItems(text, pos)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("%q: results differ (-first +second):\n%s", input, diff)
		}
	}
}

func TestEngine_EmptyTextAtOrigin(t *testing.T) {
	snap := shopSchema()
	engine := NewEngine(snap, zaptest.NewLogger(t))

	got := engine.Complete("", Position{Line: 1, Column: 1})
	if got.Context.Kind != KindGeneral {
		t.Errorf("context = %v, want general", got.Context)
	}
	want := append(snap.TableNames(), snap.AllColumns()...)
	if diff := cmp.Diff(want, got.List.Labels()); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_DegradedInput(t *testing.T) {
	engine := NewEngine(shopSchema(), zaptest.NewLogger(t))
	for _, input := range []string{"SELECT * FROM (|", "SELECT * FROM ((((|", ")))|", "SELECT 'oops|"} {
		text, pos := caret(t, input)
		if list := engine.ProvideCompletionItems(text, pos); list == nil || list.Items == nil {
			t.Errorf("%q: expected a non-nil list", input)
		}
	}
}

func TestEngine_NoTree(t *testing.T) {
	noTree := WithParser(syntax.ParserFunc(func(string) *syntax.Tree { return nil }))
	engine := NewEngine(shopSchema(), zaptest.NewLogger(t), noTree)

	got := engine.Complete("", Position{Line: 1, Column: 1})
	if !got.Degraded {
		t.Error("expected degraded result")
	}
	labels := got.List.Labels()
	if !contains(labels, "SELECT") || !contains(labels, "orders") || !contains(labels, "total") {
		t.Errorf("expected tables, columns and keywords, got %v", labels)
	}

	// The text patterns still classify without a tree.
	text, pos := caret(t, "SELECT * FROM orders WHERE |")
	if got := engine.Complete(text, pos); got.Context.Kind != KindWhereOperand {
		t.Errorf("context = %v, want where_operand", got.Context)
	}
	text, pos = caret(t, "SELECT a, |")
	if got := engine.Complete(text, pos); got.Context.Kind != KindColumn || got.Rule != "text:select" {
		t.Errorf("context = %v via %s, want column via text:select", got.Context, got.Rule)
	}
}

func TestEngine_RecoversFromPanics(t *testing.T) {
	boom := WithParser(syntax.ParserFunc(func(string) *syntax.Tree { panic("boom") }))
	engine := NewEngine(shopSchema(), zaptest.NewLogger(t), boom)

	list := engine.ProvideCompletionItems("SELECT ", Position{Line: 1, Column: 8})
	if list == nil || list.Items == nil || len(list.Items) != 0 {
		t.Errorf("expected an empty non-nil list, got %#v", list)
	}
}

func TestEngine_SharedRange(t *testing.T) {
	engine := NewEngine(shopSchema(), zaptest.NewLogger(t))
	text, pos := caret(t, "SELECT cus|")

	list := engine.ProvideCompletionItems(text, pos)
	if len(list.Items) == 0 {
		t.Fatal("expected candidates")
	}
	want := Range{Start: Position{Line: 1, Column: 8}, End: Position{Line: 1, Column: 11}}
	for _, c := range list.Items {
		if c.Range != want {
			t.Fatalf("%s: range = %+v, want %+v", c.Label, c.Range, want)
		}
	}
}

func TestEngine_NilSnapshot(t *testing.T) {
	engine := NewEngine(nil, nil)
	if engine.Snapshot() == nil {
		t.Fatal("expected an empty snapshot")
	}
	text, pos := caret(t, "SELECT * FROM |")
	if n := len(engine.ProvideCompletionItems(text, pos).Items); n != 0 {
		t.Errorf("expected no items, got %d", n)
	}
}

func TestTriggerCharacters(t *testing.T) {
	got := append([]string(nil), TriggerCharacters...)
	sort.Strings(got)
	if diff := cmp.Diff([]string{"\t", "\n", " ", ",", "."}, got); diff != "" {
		t.Errorf("trigger characters mismatch (-want +got):\n%s", diff)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
