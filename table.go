package tabulon

import "fmt"

// Kind identifies the logical scalar type stored by a column.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTime
)

// String returns the stable type-hint name for the kind. These strings are
// part of the wire contract: the same schema always produces the same hints.
//
//	KindString -> "string"
//	KindInt    -> "int64"
//	KindFloat  -> "float64"
//	KindBool   -> "bool"
//	KindTime   -> "datetime"
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int64"
	case KindFloat:
		return "float64"
	case KindBool:
		return "bool"
	case KindTime:
		return "datetime"
	default:
		return "string"
	}
}

// Column is one named column of a Table. All values in a column share one
// logical kind.
type Column struct {
	Name   string
	Kind   Kind
	values []any
}

// Col builds a column from its name, kind and values.
func Col(name string, kind Kind, values ...any) Column {
	return Column{Name: name, Kind: kind, values: values}
}

// Len returns the number of values in the column.
func (c Column) Len() int {
	return len(c.values)
}

// Table is an in-memory table with ordered named columns. A table is built
// by the server-side computation for one evaluation, serialized once and
// discarded; it is not mutated after being handed to a transform.
//
// The row count is tracked separately from the columns so that a table with
// an empty schema can still carry rows (each serialized as an empty row).
type Table struct {
	columns []Column
	nrows   int
}

// NewTable builds a table from columns. All columns must have the same
// number of values; a ragged set of columns is rejected.
func NewTable(columns ...Column) (*Table, error) {
	t := &Table{columns: columns}
	if len(columns) > 0 {
		t.nrows = columns[0].Len()
		for _, c := range columns[1:] {
			if c.Len() != t.nrows {
				return nil, fmt.Errorf("tabulon: column %q has %d values, want %d", c.Name, c.Len(), t.nrows)
			}
		}
	}
	return t, nil
}

// AppendRow appends one row of values, one value per column in column order.
// On a zero-column table it appends an empty row.
func (t *Table) AppendRow(values ...any) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("tabulon: row has %d values, want %d", len(values), len(t.columns))
	}
	for i := range t.columns {
		t.columns[i].values = append(t.columns[i].values, values[i])
	}
	t.nrows++
	return nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return t.nrows
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.columns)
}

// ColumnNames returns the column labels in declared order.
func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		names = append(names, c.Name)
	}
	return names
}

// Kinds returns the column kinds in declared order.
func (t *Table) Kinds() []Kind {
	kinds := make([]Kind, 0, len(t.columns))
	for _, c := range t.columns {
		kinds = append(kinds, c.Kind)
	}
	return kinds
}

// Rows returns the table values row-major, preserving row and column order.
// The result is always non-nil, as are its inner slices; a table with zero
// columns and R rows yields R empty rows.
func (t *Table) Rows() [][]any {
	rows := make([][]any, t.nrows)
	for i := range rows {
		row := make([]any, len(t.columns))
		for j, c := range t.columns {
			row[j] = c.values[i]
		}
		rows[i] = row
	}
	return rows
}
