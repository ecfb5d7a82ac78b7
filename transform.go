package tabulon

import "fmt"

// Payload is the JSON form of a Table shipped to the client widget. The
// shape is the wire contract the client script parses: exactly three keys,
// with one type hint per column and every row the same length as columns.
//
// A Payload is constructed fresh per evaluation and has no identity beyond
// one response. Its slices are never nil, so the empty table serializes as
// {"data":[],"columns":[],"type_hints":[]} rather than nulls.
type Payload struct {
	Data      [][]any  `json:"data"`
	Columns   []string `json:"columns"`
	TypeHints []string `json:"type_hints"`
}

// Transform converts a table value into the client payload. It is pure and
// deterministic: column order, row order and the per-schema type hints are
// preserved exactly.
//
// The input must be a *Table; anything else fails with ErrNotTable. This is
// a hard precondition, not a coercion: no payload is produced on mismatch.
func Transform(v any) (Payload, error) {
	t, ok := v.(*Table)
	if !ok || t == nil {
		return Payload{}, fmt.Errorf("%w: got %T", ErrNotTable, v)
	}

	p := Payload{
		Data:      t.Rows(),
		Columns:   make([]string, 0, t.NumCols()),
		TypeHints: make([]string, 0, t.NumCols()),
	}
	for _, c := range t.columns {
		p.Columns = append(p.Columns, c.Name)
		p.TypeHints = append(p.TypeHints, c.Kind.String())
	}
	return p, nil
}
