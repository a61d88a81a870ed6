package completion

import (
	"sort"
	"strings"

	"github.com/damoonrashidi/peek/internal/syntax"
)

// ResolveAliases maps every name a relation binds to the table it refers to.
// A relation "accounts a" contributes both a -> accounts and
// accounts -> accounts; an unaliased relation contributes the identity entry
// only. Relations over subqueries bind nothing. A nil tree yields an empty
// map.
func ResolveAliases(t *syntax.Tree) map[string]string {
	if t == nil {
		return make(map[string]string)
	}
	return aliasesUnder(t, t.Root())
}

// ResolveStatementAliases is ResolveAliases limited to the statement around
// p, so names bound in other statements of the buffer do not leak in. When p
// is in no statement the whole tree is used.
func ResolveStatementAliases(t *syntax.Tree, p syntax.Point) map[string]string {
	if t == nil {
		return make(map[string]string)
	}
	stmt := statementAt(t, p)
	if stmt == syntax.NoNode {
		return ResolveAliases(t)
	}
	return aliasesUnder(t, stmt)
}

// statementAt returns the top-level statement containing p or, when p sits
// in trailing whitespace, the statement it follows. Subqueries belong to
// their enclosing statement.
func statementAt(t *syntax.Tree, p syntax.Point) syntax.NodeID {
	node := t.NodeAt(p)
	if node == syntax.NoNode || node == t.Root() {
		node = t.LastBefore(t.Root(), p)
	}
	if node == syntax.NoNode {
		return syntax.NoNode
	}
	for parent := t.Parent(node); parent != syntax.NoNode && parent != t.Root(); parent = t.Parent(node) {
		node = parent
	}
	if t.Type(node) != syntax.TypeStatement {
		return syntax.NoNode
	}
	return node
}

func aliasesUnder(t *syntax.Tree, root syntax.NodeID) map[string]string {
	aliases := make(map[string]string)
	t.Walk(root, func(id syntax.NodeID) bool {
		if t.Type(id) != syntax.TypeRelation {
			return true
		}
		ref := t.ChildOfType(id, syntax.TypeObjectReference)
		name := t.ChildByField(ref, syntax.FieldName)
		if name == syntax.NoNode {
			return true
		}
		table := syntax.Unquote(t.Text(name))
		aliases[table] = table
		if alias := t.ChildByField(id, syntax.FieldAlias); alias != syntax.NoNode {
			aliases[syntax.Unquote(t.Text(alias))] = table
		}
		return true
	})
	return aliases
}

// lookupAlias finds name in aliases. An exact match wins; otherwise the
// lexically first case-insensitive match is used, since unquoted names are
// case-folded by the database.
func lookupAlias(aliases map[string]string, name string) (string, bool) {
	if table, ok := aliases[name]; ok {
		return table, true
	}
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, name) {
			return aliases[k], true
		}
	}
	return "", false
}
