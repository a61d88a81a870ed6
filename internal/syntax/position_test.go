package syntax

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindNodeAt(t *testing.T) {
	const text = "SELECT id\nFROM users"
	tree := Parse(text)
	require.NotNil(t, tree)

	tests := []struct {
		name         string
		line, column int
		wantType     string
		wantText     string
	}{
		{"start of keyword", 1, 1, "keyword_select", "SELECT"},
		{"just past token", 1, 10, TypeIdentifier, "id"},
		{"second line", 2, 6, TypeIdentifier, "users"},
		{"end of text", 2, 11, TypeIdentifier, "users"},
		{"start of identifier", 1, 8, TypeIdentifier, "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := FindNodeAt(tree, tt.line, tt.column)
			require.NotEqual(t, NoNode, id)
			require.Equal(t, tt.wantType, tree.Type(id))
			require.Equal(t, tt.wantText, tree.Text(id))
		})
	}
}

func TestFindNodeAt_Outside(t *testing.T) {
	tree := Parse("SELECT id")
	require.Equal(t, NoNode, FindNodeAt(tree, 3, 1))
	require.Equal(t, NoNode, FindNodeAt(tree, 1, 50))
	require.Equal(t, NoNode, FindNodeAt(nil, 1, 1))
}

func TestFindNodeAt_EarlierChildWinsTies(t *testing.T) {
	tree := Parse("SELECT a=b")
	require.NotNil(t, tree)

	// Column 9 is both the end of "a" and the start of "=".
	id := FindNodeAt(tree, 1, 9)
	require.Equal(t, TypeIdentifier, tree.Type(id))
	require.Equal(t, "a", tree.Text(id))
}

func TestFindNodeAt_ErrorYieldsToSibling(t *testing.T) {
	tree := Parse("SELECT 1 x 2FROM t")
	require.NotNil(t, tree)
	require.True(t, tree.HasError())

	// Column 13 is both the end of the stray "2" and the start of FROM.
	id := FindNodeAt(tree, 1, 13)
	require.Equal(t, "keyword_from", tree.Type(id))
}

func TestLastBefore(t *testing.T) {
	const text = "SELECT * FROM users u WHERE "
	tree := Parse(text)
	require.NotNil(t, tree)

	p := Point{Row: 0, Column: len(text)}
	at := tree.NodeAt(p)
	require.Equal(t, tree.Root(), at)

	anchor := tree.LastBefore(at, p)
	require.Equal(t, "keyword_where", tree.Type(anchor))
	require.Equal(t, TypeWhere, tree.Type(tree.Parent(anchor)))

	require.Equal(t, NoNode, tree.LastBefore(at, Point{}))
}
