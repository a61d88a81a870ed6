package lsp

import (
	"testing"

	"github.com/damoonrashidi/peek/internal/completion"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestLineAt(t *testing.T) {
	text := "SELECT *\r\nFROM users\nWHERE"

	tests := []struct {
		n          int
		wantLine   string
		wantOffset int
	}{
		{0, "SELECT *", 0},
		{1, "FROM users", 10},
		{2, "WHERE", 21},
		{3, "", len(text)},
	}

	for _, tt := range tests {
		line, offset := lineAt(text, tt.n)
		if line != tt.wantLine || offset != tt.wantOffset {
			t.Errorf("lineAt(%d) = %q, %d; want %q, %d", tt.n, line, offset, tt.wantLine, tt.wantOffset)
		}
	}
}

func TestUTF16Conversion(t *testing.T) {
	line := "'😀' u"

	// The emoji is one code point but two UTF-16 units.
	if got := utf16ToRunes(line, 4); got != 3 {
		t.Errorf("utf16ToRunes() = %d, want 3", got)
	}
	if got := runesToUTF16(line, 3); got != 4 {
		t.Errorf("runesToUTF16() = %d, want 4", got)
	}
	if got := utf16ToRunes(line, 100); got != 5 {
		t.Errorf("utf16ToRunes() past end = %d, want 5", got)
	}
	if got := runesToUTF16(line, 7); got != 8 {
		t.Errorf("runesToUTF16() past end = %d, want 8", got)
	}
}

func TestToEnginePosition(t *testing.T) {
	text := "SELECT '😀'\nFROM u"

	got := toEnginePosition(text, protocol.Position{Line: 0, Character: 11})
	want := completion.Position{Line: 1, Column: 11}
	if got != want {
		t.Errorf("toEnginePosition() = %+v, want %+v", got, want)
	}

	got = toEnginePosition(text, protocol.Position{Line: 1, Character: 6})
	want = completion.Position{Line: 2, Column: 7}
	if got != want {
		t.Errorf("toEnginePosition() = %+v, want %+v", got, want)
	}

	back := toLSPPosition(text, completion.Position{Line: 1, Column: 11})
	if back.Line != 0 || back.Character != 11 {
		t.Errorf("toLSPPosition() = %+v, want 0:11", back)
	}
}

func TestByteOffset(t *testing.T) {
	text := "SELECT '😀'\nFROM u"

	if got := byteOffset(text, protocol.Position{Line: 0, Character: 10}); got != 12 {
		t.Errorf("byteOffset() = %d, want 12", got)
	}
	if got := byteOffset(text, protocol.Position{Line: 1, Character: 5}); got != len("SELECT '😀'\nFROM ") {
		t.Errorf("byteOffset() = %d", got)
	}
	if got := byteOffset(text, protocol.Position{Line: 5, Character: 0}); got != len(text) {
		t.Errorf("byteOffset() past end = %d, want %d", got, len(text))
	}
}

func TestToCompletionList(t *testing.T) {
	text := "SELECT * FROM us"
	rng := completion.WordRange(text, completion.Position{Line: 1, Column: 17})
	items := []completion.Candidate{{
		Label:         "users",
		Kind:          7,
		InsertText:    "users",
		Documentation: "Table: users",
		Range:         rng,
	}}

	list := toCompletionList(text, items, true)
	if !list.IsIncomplete {
		t.Error("expected incomplete list")
	}
	if len(list.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(list.Items))
	}

	item := list.Items[0]
	if item.Label != "users" || *item.Kind != protocol.CompletionItemKindClass || *item.Detail != "Table: users" {
		t.Errorf("unexpected item: %+v", item)
	}
	if doc, ok := item.Documentation.(string); !ok || doc != "Table: users" {
		t.Errorf("documentation = %v, want Table: users", item.Documentation)
	}
	edit, ok := item.TextEdit.(protocol.TextEdit)
	if !ok {
		t.Fatalf("expected TextEdit, got %T", item.TextEdit)
	}
	if edit.Range.Start.Character != 14 || edit.Range.End.Character != 16 || edit.NewText != "users" {
		t.Errorf("unexpected edit: %+v", edit)
	}
}

func TestWordAt(t *testing.T) {
	text := "SELECT o.tot"
	rng := completion.WordRange(text, completion.Position{Line: 1, Column: 13})
	if got := wordAt(text, rng); got != "tot" {
		t.Errorf("wordAt() = %q, want tot", got)
	}

	rng = completion.WordRange(text, completion.Position{Line: 1, Column: 8})
	if got := wordAt(text, rng); got != "" {
		t.Errorf("wordAt() = %q, want empty", got)
	}
}
