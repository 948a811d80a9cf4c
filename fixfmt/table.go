package fixfmt

// DuplicatePolicy decides what Assemble does when two records carry the
// same subject identifier.
type DuplicatePolicy int

const (
	// DuplicateLastWins keeps the row at the position where the identifier
	// first appeared and overwrites its values with the later record.
	DuplicateLastWins DuplicatePolicy = iota

	// DuplicateReject fails with a *FormatError.
	DuplicateReject
)

// Table holds decoded records keyed by subject identifier, in the order
// the identifiers first appeared.
//
// Values start out as int64. Semantic decoders may replace them with other
// types through Set.
type Table struct {
	// Columns lists the column names, SubjectIDColumn first.
	Columns []string

	index map[string]int
	ids   []int64
	rows  map[int64][]interface{}
}

// Assemble zips names against each record and builds a Table keyed by the
// first value of each record. A name given twice is a *FormatError, since
// columns are looked up by name.
func Assemble(names []string, records []Record, policy DuplicatePolicy) (*Table, error) {
	seen := make(map[string]int, len(names))
	for i, name := range names {
		if j, ok := seen[name]; ok {
			return nil, newFormatError("variable %q named twice (columns %d and %d)", name, j, i)
		}
		seen[name] = i
	}
	t := newTable(names)
	for i, rec := range records {
		if len(rec) != len(names) {
			return nil, newFormatError("record %d has %d fields but the header names %d variables", i, len(rec), len(names))
		}
		id := rec[0]
		if _, ok := t.rows[id]; ok {
			if policy == DuplicateReject {
				return nil, newFormatError("record %d: duplicate subject id %d", i, id)
			}
		} else {
			t.ids = append(t.ids, id)
		}
		row := make([]interface{}, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		t.rows[id] = row
	}
	return t, nil
}

func newTable(names []string) *Table {
	t := &Table{
		Columns: append([]string(nil), names...),
		index:   make(map[string]int, len(names)),
		rows:    make(map[int64][]interface{}),
	}
	for i, name := range names {
		t.index[name] = i
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.ids)
}

// IDs returns the subject identifiers in row order.
func (t *Table) IDs() []int64 {
	return append([]int64(nil), t.ids...)
}

// HasColumn reports whether the table has a column called name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Row returns a copy of the values for id, aligned with Columns.
func (t *Table) Row(id int64) ([]interface{}, bool) {
	row, ok := t.rows[id]
	if !ok {
		return nil, false
	}
	return append([]interface{}(nil), row...), true
}

// Value returns the value of column name for subject id.
func (t *Table) Value(id int64, name string) (interface{}, bool) {
	row, ok := t.rows[id]
	if !ok {
		return nil, false
	}
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return row[i], true
}

// Column returns the values of the named column in row order.
func (t *Table) Column(name string) ([]interface{}, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	col := make([]interface{}, len(t.ids))
	for r, id := range t.ids {
		col[r] = t.rows[id][i]
	}
	return col, true
}

// Set replaces the value of column name for subject id. It returns false if
// either the row or the column does not exist.
func (t *Table) Set(id int64, name string, v interface{}) bool {
	row, ok := t.rows[id]
	if !ok {
		return false
	}
	i, ok := t.index[name]
	if !ok {
		return false
	}
	row[i] = v
	return true
}

// Rows calls fn for each row in order. Iteration stops at the first error.
func (t *Table) Rows(fn func(id int64, row []interface{}) error) error {
	for _, id := range t.ids {
		if err := fn(id, t.rows[id]); err != nil {
			return err
		}
	}
	return nil
}
