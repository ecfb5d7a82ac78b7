// Package tablesource loads tabulon tables from row-oriented sources: CSV
// streams and database/sql result sets. Column kinds are inferred so the
// payload's type hints stay faithful to the data.
package tablesource

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/tabulon-io/tabulon"
)

// timeLayouts are tried in order when detecting datetime columns.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FromCSV reads a header row plus records into a table. Each column's kind
// is inferred from its values by progressive widening: int, then float, then
// bool, then datetime, falling back to string. Empty cells stay out of the
// inference and load as nulls in typed columns.
func FromCSV(r io.Reader) (*tabulon.Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tablesource: read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("tablesource: csv has no header row")
	}
	header := records[0]
	rows := records[1:]

	columns := make([]tabulon.Column, 0, len(header))
	for j, name := range header {
		raw := make([]string, 0, len(rows))
		for _, rec := range rows {
			raw = append(raw, rec[j])
		}
		kind := inferKind(raw)
		values := make([]any, len(raw))
		for i, s := range raw {
			values[i] = parseValue(s, kind)
		}
		columns = append(columns, tabulon.Col(name, kind, values...))
	}
	return tabulon.NewTable(columns...)
}

// inferKind picks the narrowest kind every non-empty value of the column
// fits into. A column with no non-empty values is a string column.
func inferKind(values []string) tabulon.Kind {
	isInt, isFloat, isBool, isTime := true, true, true, true
	seen := false

	for _, s := range values {
		if s == "" {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, err := strconv.ParseBool(s); err != nil {
				isBool = false
			}
		}
		if isTime && !parseableTime(s) {
			isTime = false
		}
	}

	switch {
	case !seen:
		return tabulon.KindString
	case isInt:
		return tabulon.KindInt
	case isFloat:
		return tabulon.KindFloat
	case isBool:
		return tabulon.KindBool
	case isTime:
		return tabulon.KindTime
	default:
		return tabulon.KindString
	}
}

func parseableTime(s string) bool {
	for _, layout := range timeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// parseValue converts one cell to the column's kind. Empty cells in typed
// columns become nil and serialize as JSON nulls.
func parseValue(s string, kind tabulon.Kind) any {
	if s == "" && kind != tabulon.KindString {
		return nil
	}
	switch kind {
	case tabulon.KindInt:
		v, _ := strconv.ParseInt(s, 10, 64)
		return v
	case tabulon.KindFloat:
		v, _ := strconv.ParseFloat(s, 64)
		return v
	case tabulon.KindBool:
		v, _ := strconv.ParseBool(s)
		return v
	case tabulon.KindTime:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		return nil
	default:
		return s
	}
}
