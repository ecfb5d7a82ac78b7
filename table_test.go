package tabulon

import (
	"reflect"
	"testing"
)

func TestNewTableRejectsRaggedColumns(t *testing.T) {
	_, err := NewTable(
		Col("a", KindInt, int64(1), int64(2)),
		Col("b", KindString, "only one"),
	)
	if err == nil {
		t.Fatal("NewTable() accepted ragged columns")
	}
}

func TestTableShape(t *testing.T) {
	tbl, err := NewTable(
		Col("name", KindString, "x", "y", "z"),
		Col("score", KindFloat, 1.5, 2.5, 3.5),
	)
	if err != nil {
		t.Fatalf("NewTable() error: %v", err)
	}

	if got := tbl.NumRows(); got != 3 {
		t.Errorf("NumRows() = %d, want 3", got)
	}
	if got := tbl.NumCols(); got != 2 {
		t.Errorf("NumCols() = %d, want 2", got)
	}
	if got := tbl.ColumnNames(); !reflect.DeepEqual(got, []string{"name", "score"}) {
		t.Errorf("ColumnNames() = %v", got)
	}
	if got := tbl.Kinds(); !reflect.DeepEqual(got, []Kind{KindString, KindFloat}) {
		t.Errorf("Kinds() = %v", got)
	}
}

func TestAppendRow(t *testing.T) {
	tbl, err := NewTable(Col("a", KindInt), Col("b", KindString))
	if err != nil {
		t.Fatalf("NewTable() error: %v", err)
	}

	if err := tbl.AppendRow(int64(1), "one"); err != nil {
		t.Fatalf("AppendRow() error: %v", err)
	}
	if err := tbl.AppendRow(int64(2)); err == nil {
		t.Error("AppendRow() accepted a short row")
	}
	if got := tbl.NumRows(); got != 1 {
		t.Errorf("NumRows() = %d, want 1", got)
	}
}

func TestRowsPreserveOrder(t *testing.T) {
	tbl, err := NewTable(
		Col("a", KindInt, int64(1), int64(3)),
		Col("b", KindFloat, 2.5, 4.5),
	)
	if err != nil {
		t.Fatalf("NewTable() error: %v", err)
	}

	want := [][]any{{int64(1), 2.5}, {int64(3), 4.5}}
	if got := tbl.Rows(); !reflect.DeepEqual(got, want) {
		t.Errorf("Rows() = %v, want %v", got, want)
	}
}

func TestZeroColumnTableTracksRows(t *testing.T) {
	tbl, err := NewTable()
	if err != nil {
		t.Fatalf("NewTable() error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := tbl.AppendRow(); err != nil {
			t.Fatalf("AppendRow() error: %v", err)
		}
	}

	rows := tbl.Rows()
	if len(rows) != 3 {
		t.Fatalf("Rows() length = %d, want 3", len(rows))
	}
	for i, row := range rows {
		if len(row) != 0 {
			t.Errorf("row %d has %d values, want 0", i, len(row))
		}
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindString, "string"},
		{KindInt, "int64"},
		{KindFloat, "float64"},
		{KindBool, "bool"},
		{KindTime, "datetime"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
