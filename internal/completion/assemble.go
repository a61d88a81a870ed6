package completion

import (
	"sort"

	"github.com/damoonrashidi/peek/internal/schema"
	"github.com/damoonrashidi/peek/pkg/protocol"
)

// Keywords offered in the general context when no syntax tree was available.
var Keywords = []string{
	"SELECT", "FROM", "WHERE", "JOIN", "INNER JOIN", "LEFT JOIN", "RIGHT JOIN",
	"FULL JOIN", "ON", "AND", "OR", "NOT", "IN", "AS", "DISTINCT",
	"GROUP BY", "ORDER BY", "HAVING", "LIMIT",
}

// Assemble turns a context into candidates against snap. Candidates are
// ordered tables, then columns, then aliases; a label appears at most once,
// first occurrence wins. Every candidate replaces rng. degraded adds SQL
// keywords to the general context.
func Assemble(ctx Context, aliases map[string]string, snap *schema.Snapshot, rng Range, degraded bool) []Candidate {
	if snap == nil {
		snap = schema.Empty()
	}
	b := &builder{rng: rng, seen: make(map[string]bool)}

	switch ctx.Kind {
	case KindTable:
		b.tables(snap.TableNames())
	case KindTableForJoin:
		for _, name := range snap.JoinableTables() {
			b.add(name, protocol.CompletionItemKindFolder, "Joinable table: "+name)
		}
	case KindColumn:
		if ctx.Table != "" {
			if table, ok := snap.ResolveTable(ctx.Table); ok {
				b.tableColumns(table, snap.Columns(table))
			}
			break
		}
		b.columns(snap.AllColumns())
		b.aliases(aliases)
	case KindWhereOperand:
		scoped := ScopeTables(aliases, snap)
		if len(scoped) == 0 {
			b.columns(snap.AllColumns())
		}
		for _, table := range scoped {
			b.tableColumns(table, snap.Columns(table))
		}
		b.aliases(aliases)
	default:
		b.tables(snap.TableNames())
		b.columns(snap.AllColumns())
		if degraded {
			for _, kw := range Keywords {
				b.add(kw, protocol.CompletionItemKindKeyword, "Keyword: "+kw)
			}
		}
	}
	return b.items
}

// ScopeTables returns the schema tables the alias map refers to, in lexical
// order. Names the schema does not know are dropped.
func ScopeTables(aliases map[string]string, snap *schema.Snapshot) []string {
	seen := make(map[string]bool)
	var tables []string
	for _, name := range aliases {
		table, ok := snap.ResolveTable(name)
		if !ok || seen[table] {
			continue
		}
		seen[table] = true
		tables = append(tables, table)
	}
	sort.Strings(tables)
	return tables
}

type builder struct {
	rng   Range
	seen  map[string]bool
	items []Candidate
}

func (b *builder) add(label string, kind protocol.CompletionItemKind, doc string) {
	if b.seen[label] {
		return
	}
	b.seen[label] = true
	b.items = append(b.items, Candidate{
		Label:         label,
		Kind:          kind,
		InsertText:    label,
		Documentation: doc,
		Range:         b.rng,
	})
}

func (b *builder) tables(names []string) {
	for _, name := range names {
		b.add(name, protocol.CompletionItemKindClass, "Table: "+name)
	}
}

func (b *builder) columns(names []string) {
	for _, name := range names {
		b.add(name, protocol.CompletionItemKindField, "Column: "+name)
	}
}

func (b *builder) tableColumns(table string, names []string) {
	for _, name := range names {
		b.add(name, protocol.CompletionItemKindField, "Column from "+table+": "+name)
	}
}

func (b *builder) aliases(aliases map[string]string) {
	names := make([]string, 0, len(aliases))
	for alias := range aliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	for _, alias := range names {
		b.add(alias, protocol.CompletionItemKindVariable, "Table alias: "+alias+" ("+aliases[alias]+")")
	}
}
