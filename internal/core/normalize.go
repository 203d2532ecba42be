package core

// normalize.go converts raw CSV cells into typed values.
//
// Normalization is pure: the same raw value and column always produce the
// same Cell. Failures never abort a load. A timestamp that cannot be parsed
// becomes NULL and is reported as a CoercionWarning.

import (
	"strings"
	"time"
)

// NormalizeOptions configures a Normalizer.
type NormalizeOptions struct {
	NullTokens   []string       // Compared case-insensitively after trimming
	Layouts      []string       // Timestamp layouts, tried in order
	Location     *time.Location // For timestamps without an offset (default: UTC)
	CleanNumeric bool           // Strip currency and separators in numeric columns
}

var defaultLayouts = []string{time.DateTime, time.RFC3339, time.DateOnly}

// Normalizer applies the null, text and timestamp rules to cells.
type Normalizer struct {
	nullTokens   map[string]struct{}
	layouts      []string
	loc          *time.Location
	cleanNumeric bool
}

// NewNormalizer creates a Normalizer from opts.
func NewNormalizer(opts NormalizeOptions) *Normalizer {
	n := &Normalizer{
		nullTokens:   make(map[string]struct{}, len(opts.NullTokens)),
		layouts:      opts.Layouts,
		loc:          opts.Location,
		cleanNumeric: opts.CleanNumeric,
	}
	for _, tok := range opts.NullTokens {
		n.nullTokens[strings.ToLower(strings.TrimSpace(tok))] = struct{}{}
	}
	if len(n.layouts) == 0 {
		n.layouts = defaultLayouts
	}
	if n.loc == nil {
		n.loc = time.UTC
	}
	return n
}

// IsNull reports whether raw is blank or a null token.
func (n *Normalizer) IsNull(raw string) bool {
	v := strings.TrimSpace(raw)
	if v == "" {
		return true
	}
	_, ok := n.nullTokens[strings.ToLower(v)]
	return ok
}

// Normalize converts one raw cell for col. The returned error, if any,
// explains why the value was replaced with NULL.
func (n *Normalizer) Normalize(raw string, col MappedColumn) (Cell, error) {
	if n.IsNull(raw) {
		return NullCell(col.Kind), nil
	}
	v := strings.TrimSpace(raw)

	switch col.Kind {
	case ColumnTimestamp:
		t, err := parseTimestamp(v, n.layouts, n.loc)
		if err != nil {
			return NullCell(col.Kind), err
		}
		return Cell{Kind: ColumnTimestamp, Time: t, Valid: true}, nil

	default:
		if n.cleanNumeric && col.Column.IsNumeric() {
			v, _ = cleanNumeric(v)
		}
		return Cell{Kind: ColumnText, Text: v, Valid: true}, nil
	}
}

// NormalizeRows reduces every source row to the mapped columns.
// Warnings are returned in row order.
func (n *Normalizer) NormalizeRows(src *SourceSet, m *Mapping) ([]MappedRow, []CoercionWarning) {
	rows := make([]MappedRow, 0, len(src.Rows))
	var warnings []CoercionWarning

	for r, raw := range src.Rows {
		row := MappedRow{Line: src.Lines[r], Cells: make([]Cell, len(m.Columns))}
		for i, col := range m.Columns {
			value := raw[col.SourceIndex]
			cell, err := n.Normalize(value, col)
			if err != nil {
				warnings = append(warnings, CoercionWarning{
					Line:   row.Line,
					Column: col.Column.Name,
					Value:  value,
					Reason: err.Error(),
				})
			}
			row.Cells[i] = cell
		}
		rows = append(rows, row)
	}

	return rows, warnings
}
