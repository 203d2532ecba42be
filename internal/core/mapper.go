package core

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/JonMunkholm/csvload/internal/database"
)

// MatchMode controls how header names are compared with column names.
type MatchMode string

const (
	MatchExact           MatchMode = "exact"
	MatchCaseInsensitive MatchMode = "case-insensitive"
)

// MapOptions configures MapColumns.
type MapOptions struct {
	Match            MatchMode
	TimestampSuffix  string   // Columns ending in this are timestamps; "" disables
	TimestampColumns []string // Additional timestamp columns by name
	TimestampByType  bool     // Date and time typed columns are timestamps
	DeriveTimestamps bool     // Fill a missing X<suffix> column from header X
	Aliases          map[string]string
}

func (o MapOptions) equal(a, b string) bool {
	if o.Match == MatchExact {
		return a == b
	}
	return strings.EqualFold(a, b)
}

func (o MapOptions) hasSuffix(name string) bool {
	if o.TimestampSuffix == "" || len(name) <= len(o.TimestampSuffix) {
		return false
	}
	return o.equal(name[len(name)-len(o.TimestampSuffix):], o.TimestampSuffix)
}

// kindOf classifies a destination column.
func (o MapOptions) kindOf(col database.Column) ColumnKind {
	if o.hasSuffix(col.Name) {
		return ColumnTimestamp
	}
	if o.TimestampByType && col.IsTemporal() {
		return ColumnTimestamp
	}
	for _, ts := range o.TimestampColumns {
		if o.equal(ts, col.Name) {
			return ColumnTimestamp
		}
	}
	return ColumnText
}

// alias returns the destination name configured for header h.
func (o MapOptions) alias(h string) (string, bool) {
	if target, ok := o.Aliases[h]; ok {
		return target, true
	}
	for _, from := range slices.Sorted(maps.Keys(o.Aliases)) {
		if o.equal(from, h) {
			return o.Aliases[from], true
		}
	}
	return "", false
}

// lookup returns the index of name in names, preferring an exact match.
func (o MapOptions) lookup(names []string, name string) int {
	if i := slices.Index(names, name); i >= 0 {
		return i
	}
	if o.Match == MatchExact {
		return -1
	}
	return slices.IndexFunc(names, func(n string) bool { return strings.EqualFold(n, name) })
}

// MapColumns aligns a CSV header with the destination columns.
//
// Mapped columns follow destination order. Headers with no destination
// column end up in Discarded; destination columns with no header end up in
// Unmatched and are left out of the insert. Two headers resolving to the
// same column is a KindRead error, and a mapping with no columns at all is
// a KindSchema error.
func MapColumns(header []string, columns []database.Column, opts MapOptions) (*Mapping, error) {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}

	claimed := make([]int, len(columns))
	for i := range claimed {
		claimed[i] = -1
	}

	var unused []int
	for i, h := range header {
		if h == "" {
			unused = append(unused, i)
			continue
		}
		target := h
		if a, ok := opts.alias(h); ok {
			target = a
		}

		j := opts.lookup(names, target)
		if j < 0 {
			unused = append(unused, i)
			continue
		}
		if prev := claimed[j]; prev >= 0 {
			return nil, NewError(KindRead, "map columns",
				fmt.Errorf("ambiguous header: %q and %q both match column %s", header[prev], h, names[j]))
		}
		claimed[j] = i
	}

	m := &Mapping{}
	derivedFrom := make(map[int]bool)
	for j, col := range columns {
		kind := opts.kindOf(col)

		if i := claimed[j]; i >= 0 {
			m.Columns = append(m.Columns, MappedColumn{Column: col, SourceIndex: i, Source: header[i], Kind: kind})
			continue
		}

		if kind == ColumnTimestamp && opts.DeriveTimestamps && opts.hasSuffix(col.Name) {
			base := col.Name[:len(col.Name)-len(opts.TimestampSuffix)]
			if i := opts.lookup(header, base); i >= 0 {
				m.Columns = append(m.Columns, MappedColumn{Column: col, SourceIndex: i, Source: header[i], Kind: kind, Derived: true})
				derivedFrom[i] = true
				continue
			}
		}

		m.Unmatched = append(m.Unmatched, col)
	}

	for _, i := range unused {
		if derivedFrom[i] {
			continue
		}
		name := header[i]
		if name == "" {
			name = fmt.Sprintf("(blank header, column %d)", i+1)
		}
		m.Discarded = append(m.Discarded, name)
	}

	if len(m.Columns) == 0 {
		return nil, NewError(KindSchema, "map columns", errors.New("no csv columns match the destination table"))
	}
	return m, nil
}
