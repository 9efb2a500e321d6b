package domain

import (
	"fmt"
	"slices"
)

// ColumnKind decides which neutral default a column receives when a source
// cannot supply it.
type ColumnKind int

const (
	KindCategorical ColumnKind = iota
	KindNumeric
	KindContinuous
)

// Default returns the neutral cell value for the kind: "0" for numeric,
// empty (NaN) for continuous, "Unknown" for categorical.
func (k ColumnKind) Default() string {
	switch k {
	case KindNumeric:
		return "0"
	case KindContinuous:
		return ""
	default:
		return UnknownCategory
	}
}

func (k ColumnKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindContinuous:
		return "continuous"
	default:
		return "categorical"
	}
}

// Table is a column-oriented, string-celled table. Cells keep their source
// text so a table can be exported and reloaded without loss; typed access
// is done by the services that interpret the columns.
type Table struct {
	columns []string
	kinds   map[string]ColumnKind
	values  map[string][]string
	rows    int
}

func NewTable(rows int) *Table {
	return &Table{
		kinds:  make(map[string]ColumnKind),
		values: make(map[string][]string),
		rows:   rows,
	}
}

func (t *Table) Len() int { return t.rows }

// Columns returns column names in insertion order.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

func (t *Table) Has(name string) bool {
	_, ok := t.values[name]
	return ok
}

func (t *Table) Kind(name string) ColumnKind { return t.kinds[name] }

// Column returns the cells of a column. The slice is shared with the table
// and must not be modified by the caller.
func (t *Table) Column(name string) []string { return t.values[name] }

// Value returns a single cell, or "" when the column does not exist.
func (t *Table) Value(name string, row int) string {
	col, ok := t.values[name]
	if !ok || row < 0 || row >= len(col) {
		return ""
	}
	return col[row]
}

// SetColumn adds a column or replaces the cells of an existing one.
func (t *Table) SetColumn(name string, kind ColumnKind, values []string) error {
	if name == "" {
		return fmt.Errorf("set column: name must be non-empty")
	}
	if len(values) != t.rows {
		return fmt.Errorf("set column %q: got %d values, table has %d rows", name, len(values), t.rows)
	}
	if _, ok := t.values[name]; !ok {
		t.columns = append(t.columns, name)
	}
	t.kinds[name] = kind
	t.values[name] = values
	return nil
}

// FillColumn adds a column where every cell holds the kind's default.
func (t *Table) FillColumn(name string, kind ColumnKind) error {
	values := make([]string, t.rows)
	def := kind.Default()
	for i := range values {
		values[i] = def
	}
	return t.SetColumn(name, kind, values)
}

// Select projects the table onto the given row indices, in order.
func (t *Table) Select(rows []int) *Table {
	out := NewTable(len(rows))
	for _, name := range t.columns {
		src := t.values[name]
		dst := make([]string, len(rows))
		for i, r := range rows {
			dst[i] = src[r]
		}
		out.columns = append(out.columns, name)
		out.kinds[name] = t.kinds[name]
		out.values[name] = dst
	}
	return out
}

func (t *Table) Clone() *Table {
	all := make([]int, t.rows)
	for i := range all {
		all[i] = i
	}
	return t.Select(all)
}

// Record returns one row as cells aligned with Columns().
func (t *Table) Record(row int) []string {
	out := make([]string, len(t.columns))
	for i, name := range t.columns {
		out[i] = t.values[name][row]
	}
	return out
}
