package schema

// CellReference points at one column of one table.
type CellReference struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// OutboundReferences returns the cells that column, read from any of the given
// tables, points at through the reference map.
func (s *Snapshot) OutboundReferences(tables []string, column string) []CellReference {
	var out []CellReference
	for _, table := range tables {
		for _, ref := range s.references[table+"."+column] {
			toTable, toColumn := SplitColumnRef(ref)
			out = append(out, CellReference{Table: toTable, Column: toColumn})
		}
	}
	return out
}

// InboundReferences returns the cells whose reference list contains column of
// any of the given tables.
func (s *Snapshot) InboundReferences(tables []string, column string) []CellReference {
	targets := make(map[string]bool, len(tables))
	for _, table := range tables {
		targets[table+"."+column] = true
	}

	var out []CellReference
	for _, key := range sortedKeys(s.references) {
		for _, ref := range s.references[key] {
			if !targets[ref] {
				continue
			}
			fromTable, fromColumn := SplitColumnRef(key)
			out = append(out, CellReference{Table: fromTable, Column: fromColumn})
		}
	}
	return out
}
