// Package syntax parses partial SQL into a best-effort concrete syntax tree.
//
// The tree is an arena: nodes live in one slice and refer to their parent and
// children by NodeID. Node type names follow the tree-sitter SQL vocabulary
// (relation, object_reference, keyword_from, field, ...), so classification
// rules read the same as they would against a tree-sitter tree.
package syntax

import (
	"strings"
)

// NodeID indexes a node in its Tree.
type NodeID int32

// NoNode is the absent node.
const NoNode NodeID = -1

// Node types produced by the parser. Keyword leaves are "keyword_" plus the
// lower-cased word; punctuation and operator leaves use their literal text.
const (
	TypeProgram         = "program"
	TypeStatement       = "statement"
	TypeSelect          = "select"
	TypeSelectExpr      = "select_expression"
	TypeTerm            = "term"
	TypeFrom            = "from"
	TypeRelation        = "relation"
	TypeObjectReference = "object_reference"
	TypeIdentifier      = "identifier"
	TypeJoin            = "join"
	TypeWhere           = "where"
	TypeGroupBy         = "group_by"
	TypeHaving          = "having"
	TypeOrderBy         = "order_by"
	TypeOrderTarget     = "order_target"
	TypeLimit           = "limit"
	TypeField           = "field"
	TypeAllFields       = "all_fields"
	TypeLiteral         = "literal"
	TypeBinaryExpr      = "binary_expression"
	TypeUnaryExpr       = "unary_expression"
	TypeParenthesized   = "parenthesized_expression"
	TypeList            = "list"
	TypeSubquery        = "subquery"
	TypeInvocation      = "invocation"
	TypeCase            = "case"
	TypeDelete          = "delete"
	TypeError           = "ERROR"
)

// Field names attached to children.
const (
	FieldName      = "name"
	FieldSchema    = "schema"
	FieldDatabase  = "database"
	FieldAlias     = "alias"
	FieldObject    = "object"
	FieldLeft      = "left"
	FieldRight     = "right"
	FieldOperator  = "operator"
	FieldValue     = "value"
	FieldPredicate = "predicate"
)

// Point is a zero-based row/column location. Columns count code points.
type Point struct {
	Row    int
	Column int
}

// Compare returns -1, 0 or 1 as p is before, equal to, or after q.
func (p Point) Compare(q Point) int {
	switch {
	case p.Row < q.Row:
		return -1
	case p.Row > q.Row:
		return 1
	case p.Column < q.Column:
		return -1
	case p.Column > q.Column:
		return 1
	default:
		return 0
	}
}

// Node is one element of the tree. End is exclusive in the tree-sitter sense:
// it is the point just past the node's last character.
type Node struct {
	Type      string
	Field     string
	Start     Point
	End       Point
	StartByte int
	EndByte   int
	Parent    NodeID
	Children  []NodeID
}

// IsError reports whether the node is an error-recovery node.
func (n *Node) IsError() bool {
	return n.Type == TypeError
}

// IsKeyword reports whether the node is a keyword leaf.
func (n *Node) IsKeyword() bool {
	return strings.HasPrefix(n.Type, "keyword_")
}

// Tree is an immutable syntax tree over one source text.
type Tree struct {
	source string
	nodes  []Node
	root   NodeID
}

// Root returns the program node.
func (t *Tree) Root() NodeID {
	return t.root
}

// Source returns the parsed text.
func (t *Tree) Source() string {
	return t.source
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node for id, or nil for NoNode or an out-of-range id.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

// Type returns the node's type, or "" for an absent node.
func (t *Tree) Type(id NodeID) string {
	if n := t.Node(id); n != nil {
		return n.Type
	}
	return ""
}

// Text returns the source text spanned by the node.
func (t *Tree) Text(id NodeID) string {
	n := t.Node(id)
	if n == nil {
		return ""
	}
	return t.source[n.StartByte:n.EndByte]
}

// Parent returns the parent of id, or NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.Node(id); n != nil {
		return n.Parent
	}
	return NoNode
}

// Children returns the children of id.
func (t *Tree) Children(id NodeID) []NodeID {
	if n := t.Node(id); n != nil {
		return n.Children
	}
	return nil
}

// ChildByField returns the first child carrying the given field name.
func (t *Tree) ChildByField(id NodeID, field string) NodeID {
	for _, c := range t.Children(id) {
		if n := t.Node(c); n != nil && n.Field == field {
			return c
		}
	}
	return NoNode
}

// ChildOfType returns the first child of the given type.
func (t *Tree) ChildOfType(id NodeID, typ string) NodeID {
	for _, c := range t.Children(id) {
		if t.Type(c) == typ {
			return c
		}
	}
	return NoNode
}

// Ancestor returns the nearest proper ancestor of id with the given type.
func (t *Tree) Ancestor(id NodeID, typ string) NodeID {
	for cur := t.Parent(id); cur != NoNode; cur = t.Parent(cur) {
		if t.Type(cur) == typ {
			return cur
		}
	}
	return NoNode
}

// Walk visits nodes under id in pre-order. Returning false from fn skips the
// node's children.
func (t *Tree) Walk(id NodeID, fn func(id NodeID) bool) {
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.Node(cur) == nil || !fn(cur) {
			continue
		}
		kids := t.Children(cur)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
}

// HasError reports whether error recovery produced any ERROR node.
func (t *Tree) HasError() bool {
	for i := range t.nodes {
		if t.nodes[i].IsError() {
			return true
		}
	}
	return false
}

// String renders the tree as an S-expression of named nodes, omitting
// punctuation leaves, e.g. (program (statement (select (keyword_select) ...))).
func (t *Tree) String() string {
	var sb strings.Builder
	t.write(&sb, t.root)
	return sb.String()
}

func (t *Tree) write(sb *strings.Builder, id NodeID) {
	n := t.Node(id)
	if n == nil {
		return
	}
	sb.WriteByte('(')
	if n.Field != "" {
		sb.WriteString(n.Field + ": ")
	}
	sb.WriteString(n.Type)
	for _, c := range n.Children {
		if !isNamed(t.Type(c)) {
			continue
		}
		sb.WriteByte(' ')
		t.write(sb, c)
	}
	sb.WriteByte(')')
}

func isNamed(typ string) bool {
	if typ == "" {
		return false
	}
	c := typ[0]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Unquote strips identifier quoting ("name" or `name`) and undoubles
// embedded quotes. Unquoted text is returned unchanged.
func Unquote(s string) string {
	if len(s) >= 2 {
		switch {
		case s[0] == '"' && s[len(s)-1] == '"':
			return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
		case s[0] == '`' && s[len(s)-1] == '`':
			return s[1 : len(s)-1]
		}
	}
	if len(s) >= 1 && (s[0] == '"' || s[0] == '`') {
		return s[1:]
	}
	return s
}
