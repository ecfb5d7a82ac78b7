package tablesource

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/tabulon-io/tabulon"
)

var timeType = reflect.TypeOf(time.Time{})

// FromRows drains a database/sql result set into a table, preserving the
// query's column order and the result's row order. Column kinds come from
// the driver's scan types, falling back to the database type names. The
// caller keeps ownership of rows and should still Close it.
func FromRows(rows *sql.Rows) (*tabulon.Table, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("tablesource: columns: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("tablesource: column types: %w", err)
	}

	kinds := make([]tabulon.Kind, len(names))
	for i, ct := range types {
		kinds[i] = kindForColumnType(ct)
	}

	colValues := make([][]any, len(names))
	holders := make([]any, len(names))
	scan := make([]any, len(names))
	for rows.Next() {
		for i := range holders {
			holders[i] = nil
			scan[i] = &holders[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("tablesource: scan: %w", err)
		}
		for i, v := range holders {
			colValues[i] = append(colValues[i], normalize(v, kinds[i]))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tablesource: iterate: %w", err)
	}

	columns := make([]tabulon.Column, len(names))
	for i, name := range names {
		columns[i] = tabulon.Col(name, kinds[i], colValues[i]...)
	}
	return tabulon.NewTable(columns...)
}

// kindForColumnType maps a driver column type to a tabulon kind.
func kindForColumnType(ct *sql.ColumnType) tabulon.Kind {
	if st := ct.ScanType(); st != nil {
		if st == timeType {
			return tabulon.KindTime
		}
		switch st.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return tabulon.KindInt
		case reflect.Float32, reflect.Float64:
			return tabulon.KindFloat
		case reflect.Bool:
			return tabulon.KindBool
		}
	}

	// Drivers reporting sql.RawBytes for everything still name the type.
	switch strings.ToUpper(ct.DatabaseTypeName()) {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT":
		return tabulon.KindInt
	case "FLOAT", "DOUBLE", "DECIMAL", "NUMERIC", "REAL":
		return tabulon.KindFloat
	case "BOOL", "BOOLEAN", "BIT":
		return tabulon.KindBool
	case "DATE", "DATETIME", "TIMESTAMP":
		return tabulon.KindTime
	default:
		return tabulon.KindString
	}
}

// normalize converts driver values to their column kind: byte slices are
// re-parsed (text-protocol drivers hand numbers back as bytes) and integer
// widths collapse to int64.
func normalize(v any, kind tabulon.Kind) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return parseValue(string(val), kind)
	case int, int8, int16, int32:
		return reflect.ValueOf(val).Int()
	case uint, uint8, uint16, uint32, uint64:
		return int64(reflect.ValueOf(val).Uint())
	case float32:
		return float64(val)
	default:
		return val
	}
}
