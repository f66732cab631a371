package table

// LeftJoin returns a new table with every left row, extended with the columns
// of the first right row whose rightKey matches the row's leftKey. Right
// columns already present on the left are dropped, so on collision the left
// side wins (the caller relies on this when joining holdings onto the hero
// table). Unmatched left rows keep null right cells.
func (t *Table) LeftJoin(right *Table, leftKey, rightKey string) *Table {
	out := New(t.cols...)

	var rightCols []string
	for _, c := range right.cols {
		if c != rightKey && !t.HasCol(c) {
			rightCols = append(rightCols, c)
		}
	}
	for _, c := range rightCols {
		out.AddCol(c)
	}

	// Index the right side by key, first occurrence wins.
	idx := make(map[string]Row, right.NumRows())
	for _, r := range right.rows {
		k := r[rightKey]
		if k == "" {
			continue
		}
		if _, ok := idx[k]; !ok {
			idx[k] = r
		}
	}

	for _, lr := range t.rows {
		nr := make(Row, len(lr)+len(rightCols))
		for k, v := range lr {
			nr[k] = v
		}
		if rr, ok := idx[lr[leftKey]]; ok {
			for _, c := range rightCols {
				if v, has := rr[c]; has {
					nr[c] = v
				}
			}
		}
		out.Append(nr)
	}
	return out
}

// OuterJoin returns the full outer join of both tables on key. Left rows come
// first in their original order; right-only keys follow in right order. A row
// missing from one side keeps null cells for that side's columns rather than
// being dropped.
func (t *Table) OuterJoin(right *Table, key string) *Table {
	joined := t.LeftJoin(right, key, key)

	seen := make(map[string]bool, t.NumRows())
	for _, r := range t.rows {
		if k := r[key]; k != "" {
			seen[k] = true
		}
	}

	for _, rr := range right.rows {
		k := rr[key]
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		nr := make(Row, len(rr))
		nr[key] = k
		for _, c := range right.cols {
			if c == key {
				continue
			}
			if joined.HasCol(c) {
				if v, has := rr[c]; has {
					nr[c] = v
				}
			}
		}
		joined.Append(nr)
	}
	return joined
}
