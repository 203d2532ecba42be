package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrTableNotFound is returned when the destination table does not exist
// or exposes no columns.
var ErrTableNotFound = errors.New("table not found")

// Column describes one destination column.
type Column struct {
	Name     string
	DataType string // Declared type as reported by the database, lowercased
	Nullable bool
	Position int // 1-based ordinal position
}

// numericTypes are the number type names of the supported dialects.
var numericTypes = map[string]bool{
	"int": true, "integer": true, "tinyint": true, "smallint": true, "mediumint": true, "bigint": true,
	"int2": true, "int4": true, "int8": true, "unsigned big int": true,
	"decimal": true, "numeric": true, "money": true, "smallmoney": true,
	"float": true, "float4": true, "float8": true, "real": true, "double": true, "double precision": true,
}

// baseType is the declared type without its length or precision.
func (c Column) baseType() string {
	t := c.DataType
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

// IsNumeric reports whether the declared type holds numbers.
func (c Column) IsNumeric() bool {
	return numericTypes[c.baseType()]
}

// IsTemporal reports whether the declared type holds dates or times.
func (c Column) IsTemporal() bool {
	t := c.baseType()
	return strings.Contains(t, "date") || strings.Contains(t, "time")
}

// FetchColumns returns the columns of schema.table in ordinal order.
// Returns ErrTableNotFound if the table has no visible columns.
func FetchColumns(ctx context.Context, db DBTX, d Dialect, schema, table string) ([]Column, error) {
	query, args := d.ColumnsQuery(schema, table)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query columns of %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	var columns []Column
	seen := make(map[string]bool)
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.DataType, &col.Nullable); err != nil {
			return nil, fmt.Errorf("scan column of %s.%s: %w", schema, table, err)
		}
		if seen[col.Name] {
			continue
		}
		seen[col.Name] = true
		col.DataType = strings.ToLower(col.DataType)
		col.Position = len(columns) + 1
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read columns of %s.%s: %w", schema, table, err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("%s.%s: %w", schema, table, ErrTableNotFound)
	}

	return columns, nil
}
