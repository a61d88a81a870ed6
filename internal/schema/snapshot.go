// Package schema holds the in-memory schema model consumed by the completion engine.
//
// A Snapshot is immutable once built. Hosts replace it wholesale when the active
// database connection changes; readers never observe a partially updated schema.
package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Snapshot is a read-only view of {table -> columns} plus the foreign-key-like
// reference map {"table.column" -> ["other_table.other_column", ...]}.
type Snapshot struct {
	tables     map[string][]string
	references map[string][]string

	tableNames  []string
	allColumns  []string
	joinable    []string
	fingerprint string
}

// New builds a snapshot from plain structured data. Inputs are copied; later
// mutation of the caller's maps does not affect the snapshot. Referential
// integrity is not validated.
func New(tables map[string][]string, references map[string][]string) *Snapshot {
	s := &Snapshot{
		tables:     make(map[string][]string, len(tables)),
		references: make(map[string][]string, len(references)),
	}

	for name, cols := range tables {
		s.tables[name] = append([]string(nil), cols...)
		s.tableNames = append(s.tableNames, name)
	}
	sort.Strings(s.tableNames)

	for key, refs := range references {
		s.references[key] = append([]string(nil), refs...)
	}

	seen := make(map[string]bool)
	for _, name := range s.tableNames {
		for _, col := range s.tables[name] {
			if seen[col] {
				continue
			}
			seen[col] = true
			s.allColumns = append(s.allColumns, col)
		}
	}

	s.joinable = s.computeJoinable()
	s.fingerprint = s.computeFingerprint()
	return s
}

// Empty returns a snapshot with no tables and no references.
func Empty() *Snapshot {
	return New(nil, nil)
}

// TableNames returns all table names in lexical order.
func (s *Snapshot) TableNames() []string {
	return append([]string(nil), s.tableNames...)
}

// HasTable reports whether the table is known, using the same matching as Columns.
func (s *Snapshot) HasTable(name string) bool {
	_, ok := s.ResolveTable(name)
	return ok
}

// ResolveTable maps a table name as written in a statement to the schema's
// spelling. Exact matches win; otherwise a case-insensitive match is accepted,
// since unquoted identifiers are case-folded by the database.
func (s *Snapshot) ResolveTable(name string) (string, bool) {
	if _, ok := s.tables[name]; ok {
		return name, true
	}
	for _, candidate := range s.tableNames {
		if strings.EqualFold(candidate, name) {
			return candidate, true
		}
	}
	return "", false
}

// Columns returns the columns of a table in declaration order, or nil if the
// table is unknown.
func (s *Snapshot) Columns(table string) []string {
	name, ok := s.ResolveTable(table)
	if !ok {
		return nil
	}
	return append([]string(nil), s.tables[name]...)
}

// AllColumns returns every column name across all tables, deduplicated by name.
func (s *Snapshot) AllColumns() []string {
	return append([]string(nil), s.allColumns...)
}

// JoinableTables returns the known tables that take part in at least one
// reference, on either the referencing or the referenced side.
func (s *Snapshot) JoinableTables() []string {
	return append([]string(nil), s.joinable...)
}

// Tables returns a copy of the table map.
func (s *Snapshot) Tables() map[string][]string {
	out := make(map[string][]string, len(s.tables))
	for name, cols := range s.tables {
		out[name] = append([]string(nil), cols...)
	}
	return out
}

// References returns a copy of the reference map.
func (s *Snapshot) References() map[string][]string {
	out := make(map[string][]string, len(s.references))
	for key, refs := range s.references {
		out[key] = append([]string(nil), refs...)
	}
	return out
}

// Fingerprint identifies the snapshot's content. Two snapshots built from equal
// data have equal fingerprints regardless of map iteration order.
func (s *Snapshot) Fingerprint() string {
	return s.fingerprint
}

func (s *Snapshot) computeJoinable() []string {
	linked := make(map[string]bool)
	for key, refs := range s.references {
		if table, _ := SplitColumnRef(key); table != "" {
			linked[table] = true
		}
		for _, ref := range refs {
			if table, _ := SplitColumnRef(ref); table != "" {
				linked[table] = true
			}
		}
	}

	var out []string
	for _, name := range s.tableNames {
		if linked[name] {
			out = append(out, name)
		}
	}
	return out
}

func (s *Snapshot) computeFingerprint() string {
	h := sha256.New()
	for _, name := range s.tableNames {
		h.Write([]byte("t:" + name + "=" + strings.Join(s.tables[name], ",") + "\n"))
	}

	keys := make([]string, 0, len(s.references))
	for key := range s.references {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		refs := append([]string(nil), s.references[key]...)
		sort.Strings(refs)
		h.Write([]byte("r:" + key + "=" + strings.Join(refs, ",") + "\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SplitColumnRef splits "table.column" into its parts. Schema-qualified
// references ("public.table.column") keep only the last two segments. A
// reference without a dot is treated as a bare table name.
func SplitColumnRef(ref string) (table, column string) {
	parts := strings.Split(ref, ".")
	switch len(parts) {
	case 1:
		return parts[0], ""
	default:
		return parts[len(parts)-2], parts[len(parts)-1]
	}
}
