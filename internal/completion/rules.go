package completion

import (
	"slices"

	"github.com/damoonrashidi/peek/internal/syntax"
)

// cursorState is what structural rules see: the tree, the zero-based cursor
// and the statement's alias map.
type cursorState struct {
	tree    *syntax.Tree
	point   syntax.Point
	aliases map[string]string
}

// A rule inspects one node on the ascent from the cursor and either produces
// a context or passes.
type rule struct {
	name  string
	apply func(s *cursorState, id syntax.NodeID) (Context, bool)
}

// structuralRules are tried in order at every node from the cursor up to the
// root; the first rule to match at the deepest node wins.
var structuralRules = []rule{
	{name: "field", apply: fieldRule},
	{name: "join_condition", apply: joinConditionRule},
	{name: "where", apply: whereRule},
	{name: "ordering", apply: orderingRule},
	{name: "from", apply: fromRule},
	{name: "join", apply: joinRule},
	{name: "select", apply: selectRule},
	{name: "relation", apply: relationRule},
}

var joinKeywords = []string{
	"keyword_join", "keyword_inner", "keyword_left", "keyword_right",
	"keyword_full", "keyword_cross", "keyword_outer",
}

// nestedClauses live under a from node but are not part of its table list.
var nestedClauses = []string{
	syntax.TypeJoin, syntax.TypeWhere, syntax.TypeGroupBy,
	syntax.TypeOrderBy, syntax.TypeHaving, syntax.TypeLimit,
}

// classifyTree walks from the node under the cursor towards the root and
// returns the first rule match. When the cursor sits in a gap between
// children, the walk starts from the last node ending before the cursor, so
// "FROM users WHERE |" is judged by the WHERE it follows.
func classifyTree(s *cursorState, node syntax.NodeID) (Context, string, bool) {
	start := node
	if len(s.tree.Children(node)) > 0 {
		if anchor := s.tree.LastBefore(node, s.point); anchor != syntax.NoNode {
			start = anchor
		}
	}
	for id := start; id != syntax.NoNode; id = s.tree.Parent(id) {
		for _, r := range structuralRules {
			if ctx, ok := r.apply(s, id); ok {
				return ctx, r.name, true
			}
		}
	}
	return Context{}, "", false
}

// selfOrParent returns id or its parent, whichever first has one of types.
func (s *cursorState) selfOrParent(id syntax.NodeID, types ...string) syntax.NodeID {
	if slices.Contains(types, s.tree.Type(id)) {
		return id
	}
	if p := s.tree.Parent(id); slices.Contains(types, s.tree.Type(p)) {
		return p
	}
	return syntax.NoNode
}

// after reports whether the cursor is at or past the end of id.
func (s *cursorState) after(id syntax.NodeID) bool {
	n := s.tree.Node(id)
	return n != nil && s.point.Compare(n.End) >= 0
}

// resolve maps a qualifier to its table, passing unknown names through.
func (s *cursorState) resolve(qualifier string) string {
	name := syntax.Unquote(qualifier)
	if table, ok := lookupAlias(s.aliases, name); ok {
		return table
	}
	return name
}

// fieldRule only applies inside the field. A cursor past "u.name " has left
// the qualifier behind.
func fieldRule(s *cursorState, id syntax.NodeID) (Context, bool) {
	field := s.selfOrParent(id, syntax.TypeField)
	if field == syntax.NoNode || !s.tree.Contains(field, s.point) {
		return Context{}, false
	}
	obj := s.tree.ChildByField(field, syntax.FieldObject)
	if obj == syntax.NoNode {
		return Context{}, false
	}
	return Context{Kind: KindColumn, Table: s.resolve(s.tree.Text(obj))}, true
}

func joinConditionRule(s *cursorState, id syntax.NodeID) (Context, bool) {
	join := s.selfOrParent(id, syntax.TypeJoin)
	on := s.tree.ChildOfType(join, "keyword_on")
	if on == syntax.NoNode || !s.after(on) {
		return Context{}, false
	}
	return Context{Kind: KindWhereOperand}, true
}

func whereRule(s *cursorState, id syntax.NodeID) (Context, bool) {
	if s.selfOrParent(id, syntax.TypeWhere, syntax.TypeHaving) == syntax.NoNode {
		return Context{}, false
	}
	return Context{Kind: KindWhereOperand}, true
}

func orderingRule(s *cursorState, id syntax.NodeID) (Context, bool) {
	if s.selfOrParent(id, syntax.TypeGroupBy, syntax.TypeOrderBy) == syntax.NoNode {
		return Context{}, false
	}
	return Context{Kind: KindColumn}, true
}

func fromRule(s *cursorState, id syntax.NodeID) (Context, bool) {
	from := syntax.NoNode
	switch {
	case s.tree.Type(id) == syntax.TypeFrom:
		for _, c := range s.tree.Children(id) {
			if slices.Contains(nestedClauses, s.tree.Type(c)) && s.tree.Node(c).Start.Compare(s.point) <= 0 {
				return Context{}, false
			}
		}
		from = id
	case s.tree.Type(s.tree.Parent(id)) == syntax.TypeFrom && !slices.Contains(nestedClauses, s.tree.Type(id)):
		from = s.tree.Parent(id)
	}
	kw := s.tree.ChildOfType(from, "keyword_from")
	if kw == syntax.NoNode || !s.after(kw) {
		return Context{}, false
	}
	return Context{Kind: KindTable}, true
}

func joinRule(s *cursorState, id syntax.NodeID) (Context, bool) {
	join := s.selfOrParent(id, syntax.TypeJoin)
	last := syntax.NoNode
	for _, c := range s.tree.Children(join) {
		if slices.Contains(joinKeywords, s.tree.Type(c)) {
			last = c
		}
	}
	if last == syntax.NoNode || !s.after(last) {
		return Context{}, false
	}
	return Context{Kind: KindTableForJoin}, true
}

func selectRule(s *cursorState, id syntax.NodeID) (Context, bool) {
	parent := s.tree.Parent(id)
	sel := syntax.NoNode
	switch {
	case s.tree.Type(id) == syntax.TypeSelect:
		sel = id
	case s.tree.Type(id) == syntax.TypeSelectExpr, s.tree.Type(parent) == syntax.TypeSelect:
		sel = parent
	case s.tree.Type(parent) == syntax.TypeSelectExpr:
		sel = s.tree.Parent(parent)
	}
	kw := s.tree.ChildOfType(sel, "keyword_select")
	if kw == syntax.NoNode || !s.after(kw) {
		return Context{}, false
	}
	return Context{Kind: KindColumn}, true
}

func relationRule(s *cursorState, id syntax.NodeID) (Context, bool) {
	rel := s.selfOrParent(id, syntax.TypeRelation)
	if rel == syntax.NoNode {
		return Context{}, false
	}
	if s.tree.Ancestor(rel, syntax.TypeJoin) != syntax.NoNode {
		return Context{Kind: KindTableForJoin}, true
	}
	return Context{Kind: KindTable}, true
}
