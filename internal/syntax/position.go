package syntax

// FindNodeAt returns the deepest node whose span contains the 1-based
// line/column position, or NoNode when the position lies outside the tree.
//
// Both span ends are inclusive, so a cursor sitting just past a token still
// resolves to it. Children are searched in order and the first match wins,
// except that an ERROR child yields to a following sibling that also
// contains the position.
func FindNodeAt(t *Tree, line, column int) NodeID {
	if t == nil {
		return NoNode
	}
	return t.NodeAt(Point{Row: line - 1, Column: column - 1})
}

// Contains reports whether p lies within the node's span, ends inclusive.
func (t *Tree) Contains(id NodeID, p Point) bool {
	n := t.Node(id)
	if n == nil {
		return false
	}
	return n.Start.Compare(p) <= 0 && p.Compare(n.End) <= 0
}

// NodeAt is FindNodeAt for a zero-based point.
func (t *Tree) NodeAt(p Point) NodeID {
	cur := t.root
	if !t.Contains(cur, p) {
		return NoNode
	}
	for {
		next := NoNode
		kids := t.Children(cur)
		for i, c := range kids {
			if !t.Contains(c, p) {
				continue
			}
			if t.nodes[c].IsError() && i+1 < len(kids) && t.Contains(kids[i+1], p) {
				continue
			}
			next = c
			break
		}
		if next == NoNode {
			return cur
		}
		cur = next
	}
}

// LastBefore returns the deepest node under id that ends at or before p,
// following the last such child at every level. It returns NoNode when no
// child of id ends at or before p.
func (t *Tree) LastBefore(id NodeID, p Point) NodeID {
	found := NoNode
	for cur := id; ; {
		next := NoNode
		for _, c := range t.Children(cur) {
			if t.nodes[c].End.Compare(p) <= 0 {
				next = c
			}
		}
		if next == NoNode {
			return found
		}
		found, cur = next, next
	}
}
