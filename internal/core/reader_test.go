package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func TestParseCSV_Basic(t *testing.T) {
	input := "Name,Age\nAlice,30\n\nBob,41\n"

	src, err := ParseCSV(strings.NewReader(input), ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Age"}, src.Header)
	assert.Equal(t, [][]string{{"Alice", "30"}, {"Bob", "41"}}, src.Rows)
	assert.Equal(t, []int{2, 4}, src.Lines, "blank line is skipped but still counted")
	assert.Equal(t, 2, src.Len())
}

func TestParseCSV_CleansHeader(t *testing.T) {
	input := "\ufeff\"Name\", Age ,=\"Sent\"\nAlice,30,2024-01-01\n"

	src, err := ParseCSV(strings.NewReader(input), ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Age", "Sent"}, src.Header)
}

func TestParseCSV_RaggedRows(t *testing.T) {
	input := "A,B,C\n1\n1,2,3,,\n"

	src, err := ParseCSV(strings.NewReader(input), ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "", ""}, {"1", "2", "3"}}, src.Rows)

	_, err = ParseCSV(strings.NewReader("A,B\n1,2,3\n"), ReadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "wrong number of fields")
}

func TestParseCSV_EmptyRowsOnly(t *testing.T) {
	input := "A,B\n,\n , \n"

	src, err := ParseCSV(strings.NewReader(input), ReadOptions{})
	require.NoError(t, err)
	assert.Zero(t, src.Len())
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		opts    ReadOptions
		wantErr string
	}{
		{"empty file", "", ReadOptions{}, "empty file"},
		{"blank lines only", "\n\n", ReadOptions{}, "empty file"},
		{"duplicate header", "Name,Age,Name\n", ReadOptions{}, "duplicate header"},
		{"unknown encoding", "A\n1\n", ReadOptions{Encoding: "klingon"}, "encoding error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input), tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseCSV_Delimiter(t *testing.T) {
	input := "Name;Amount\n\"Smith; J\";1,50\n"

	src, err := ParseCSV(strings.NewReader(input), ReadOptions{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Smith; J", "1,50"}}, src.Rows)
}

func TestParseCSV_LazyQuotes(t *testing.T) {
	input := "Name,Note\nAlice,say \"hi\" twice\n"

	src, err := ParseCSV(strings.NewReader(input), ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, `say "hi" twice`, src.Rows[0][1])
}

func TestParseCSV_Encodings(t *testing.T) {
	t.Run("windows-1252", func(t *testing.T) {
		input := "Name\nCaf\xe9\n"
		src, err := ParseCSV(strings.NewReader(input), ReadOptions{Encoding: "windows-1252"})
		require.NoError(t, err)
		assert.Equal(t, "Café", src.Rows[0][0])
	})

	t.Run("utf-16 with bom", func(t *testing.T) {
		enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
		input, err := enc.String("Name,Age\nZoë,7\n")
		require.NoError(t, err)

		src, err := ParseCSV(strings.NewReader(input), ReadOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Name", "Age"}, src.Header)
		assert.Equal(t, "Zoë", src.Rows[0][0])
	})

	t.Run("invalid utf-8 replaced", func(t *testing.T) {
		input := "Name\nbad\xffbyte\n"
		src, err := ParseCSV(strings.NewReader(input), ReadOptions{})
		require.NoError(t, err)
		assert.Equal(t, "bad\ufffdbyte", src.Rows[0][0])
	})
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "missing.csv"), ReadOptions{})
	require.Error(t, err)
	assert.Equal(t, KindRead, KindOf(err))
	assert.Equal(t, "FILE001", MapError(err).Code)
}

func TestReadCSV_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("Name,Age\r\nAlice,30\r\n"), 0o644))

	src, err := ReadCSV(path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Alice", "30"}}, src.Rows)

	require.NoError(t, os.WriteFile(path, []byte("A,A\n"), 0o644))
	_, err = ReadCSV(path, ReadOptions{})
	require.Error(t, err)
	assert.Equal(t, KindRead, KindOf(err))
	assert.Contains(t, err.Error(), path)
}
