package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadOptions controls how a CSV file is decoded.
type ReadOptions struct {
	Delimiter rune   // Field separator (default: ',')
	Encoding  string // WHATWG encoding label (default: "utf-8")
}

// ReadCSV loads the file at path into memory. All failures are returned as
// a KindRead *Error.
func ReadCSV(path string, opts ReadOptions) (*SourceSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewError(KindRead, "read csv", err)
	}
	defer f.Close()

	src, err := ParseCSV(f, opts)
	if err != nil {
		return nil, NewError(KindRead, "read csv", fmt.Errorf("%s: %w", path, err))
	}
	return src, nil
}

// ParseCSV reads a header row followed by data rows from r.
//
// The input is decoded from opts.Encoding; a UTF-8 or UTF-16 byte order mark
// overrides it and is stripped. Invalid byte sequences become U+FFFD.
// Quotes are parsed leniently. Fully blank rows are skipped, short rows are
// padded with empty cells and trailing empty cells beyond the header are
// dropped. A row with more non-empty cells than the header is an error.
func ParseCSV(r io.Reader, opts ReadOptions) (*SourceSet, error) {
	dec, err := decoder(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(dec)
	cr.Comma = opts.Delimiter
	if cr.Comma == 0 {
		cr.Comma = ','
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	src := &SourceSet{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if isEmptyRow(rec) {
			continue
		}

		line, _ := cr.FieldPos(0)
		row, err := fitRow(rec, len(header))
		if err != nil {
			return nil, fmt.Errorf("parse csv: line %d: %w", line, err)
		}
		src.Rows = append(src.Rows, row)
		src.Lines = append(src.Lines, line)
	}

	return src, nil
}

func decoder(r io.Reader, label string) (io.Reader, error) {
	if label == "" {
		label = "utf-8"
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("encoding error: unknown encoding %q", label)
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

// readHeader returns the cleaned names of the first non-blank record.
func readHeader(cr *csv.Reader) ([]string, error) {
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file: no header row")
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if isEmptyRow(rec) {
			continue
		}

		header := make([]string, len(rec))
		seen := make(map[string]int, len(rec))
		for i, h := range rec {
			name := CleanHeader(h)
			if name != "" {
				if prev, ok := seen[name]; ok {
					return nil, fmt.Errorf("duplicate header %q in columns %d and %d", name, prev+1, i+1)
				}
				seen[name] = i
			}
			header[i] = name
		}
		return header, nil
	}
}

// fitRow pads or trims rec to width cells.
func fitRow(rec []string, width int) ([]string, error) {
	if len(rec) > width {
		if !isEmptyRow(rec[width:]) {
			return nil, fmt.Errorf("wrong number of fields: %d, header has %d", len(rec), width)
		}
		rec = rec[:width]
	}
	row := make([]string, width)
	copy(row, rec)
	return row, nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
