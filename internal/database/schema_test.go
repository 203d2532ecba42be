package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchColumns(t *testing.T) {
	db, dialect := openTestSQLite(t, `
		CREATE TABLE people (
			Name TEXT NOT NULL,
			Age INTEGER,
			Balance DECIMAL(10,2),
			Sent_Parsed DATETIME
		)`)

	cols, err := FetchColumns(context.Background(), db, dialect, "main", "people")
	require.NoError(t, err)
	require.Len(t, cols, 4)

	assert.Equal(t, "Name", cols[0].Name)
	assert.False(t, cols[0].Nullable)
	assert.Equal(t, 1, cols[0].Position)

	assert.Equal(t, "Age", cols[1].Name)
	assert.True(t, cols[1].Nullable)
	assert.Equal(t, "integer", cols[1].DataType)
	assert.True(t, cols[1].IsNumeric())

	assert.True(t, cols[2].IsNumeric())
	assert.True(t, cols[3].IsTemporal())
	assert.False(t, cols[0].IsTemporal())
}

func TestColumnTypeClasses(t *testing.T) {
	tests := []struct {
		dataType string
		numeric  bool
		temporal bool
	}{
		{"int", true, false},
		{"bigint", true, false},
		{"integer", true, false},
		{"decimal(10,2)", true, false},
		{"numeric (18, 4)", true, false},
		{"double precision", true, false},
		{"money", true, false},
		{"float", true, false},
		{"point", false, false},
		{"interval", false, false},
		{"nvarchar", false, false},
		{"varchar(50)", false, false},
		{"datetime2(7)", false, true},
		{"datetimeoffset", false, true},
		{"timestamp with time zone", false, true},
		{"date", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.dataType, func(t *testing.T) {
			c := Column{Name: "c", DataType: tt.dataType}
			assert.Equal(t, tt.numeric, c.IsNumeric())
			assert.Equal(t, tt.temporal, c.IsTemporal())
		})
	}
}

func TestFetchColumns_TableNotFound(t *testing.T) {
	db, dialect := openTestSQLite(t, "")

	_, err := FetchColumns(context.Background(), db, dialect, "main", "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableNotFound))
}
