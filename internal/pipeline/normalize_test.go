package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LUISRGUEZSOSA/licor-43---daily/internal"
)

func TestNormalizeGridSectionPersistence(t *testing.T) {
	grid := [][]string{
		{"", "1/1/25", "2/1/25", "3/1/25"},
		{"RESTAURANT", "", "", ""},
		{"COMIDA", "10", "20", ""},
		{"BEBIDA", "5", "8", ""},
	}
	records, err := NormalizeGrid(grid, "jan.xlsx", Semantic())
	require.NoError(t, err)
	require.Len(t, records, 4)

	for _, rec := range records {
		require.NotNil(t, rec.Section)
		assert.Equal(t, "RESTAURANT", *rec.Section)
	}
	require.NotNil(t, records[0].MetricLabel)
	assert.Equal(t, "COMIDA", *records[0].MetricLabel)
	require.NotNil(t, records[2].MetricLabel)
	assert.Equal(t, "BEBIDA", *records[2].MetricLabel)
}

func TestNormalizeGridSectionSynonyms(t *testing.T) {
	grid := [][]string{
		{"", "1/1/25", "2/1/25", "3/1/25"},
		{"boda", "", "", ""},
		{"COVERS", "12", "", ""},
		{"Tienda Restaurante 43", "", "", ""},
		{"VENTAS", "7", "", ""},
	}
	records, err := NormalizeGrid(grid, "jan.xlsx", Semantic())
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.NotNil(t, records[0].Section)
	assert.Equal(t, "BANQUETING", *records[0].Section)
	require.NotNil(t, records[1].Section)
	assert.Equal(t, "SHOP", *records[1].Section)
}

func TestNormalizeGridSectionRowMayCarryData(t *testing.T) {
	grid := [][]string{
		{"", "1/1/25", "2/1/25", "3/1/25"},
		{"BAR", "100", "", ""},
	}
	records, err := NormalizeGrid(grid, "jan.xlsx", Semantic())
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.NotNil(t, records[0].Section)
	assert.Equal(t, "BAR", *records[0].Section)
	// The label was a section title, not a metric.
	assert.Nil(t, records[0].MetricLabel)
	require.NotNil(t, records[0].ValueNum)
	assert.Equal(t, float64(100), *records[0].ValueNum)
}

func TestNormalizeGridTotalEmission(t *testing.T) {
	grid := [][]string{
		{"", "1/1/25", "2/1/25", "3/1/25", "TOTAL"},
		{"COMIDA", "10", "20", "30", "60"},
		{"BEBIDA", "", "", "", "99"},
		{"SIN TOTAL", "1", "", "", ""},
	}
	records, err := NormalizeGrid(grid, "jan.xlsx", Semantic())
	require.NoError(t, err)

	totals := []internal.Record{}
	for _, rec := range records {
		if rec.IsTotal {
			totals = append(totals, rec)
		}
	}
	// One per row with a non-empty TOTAL cell, no matter how many dated
	// cells the row has.
	require.Len(t, totals, 2)
	for _, rec := range totals {
		assert.Nil(t, rec.Date)
	}
	require.NotNil(t, totals[0].ValueNum)
	assert.Equal(t, float64(60), *totals[0].ValueNum)
	require.NotNil(t, totals[1].ValueNum)
	assert.Equal(t, float64(99), *totals[1].ValueNum)
}

func TestNormalizeGridSkipsDateLikeValues(t *testing.T) {
	// Junk rows restating the header dates must not become data records.
	grid := [][]string{
		{"", "1/1/25", "2/1/25", "3/1/25"},
		{"ROW", "2025-01-01 00:00:00", "10", ""},
	}
	records, err := NormalizeGrid(grid, "jan.xlsx", Semantic())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "10", records[0].ValueRaw)
}

func TestNormalizeGridDatesAndValues(t *testing.T) {
	grid := [][]string{
		{"", "1/1/25", "2/1/25", "3/1/25"},
		{"OCUPACION", "50%", "1,5", "texto"},
	}
	records, err := NormalizeGrid(grid, "jan.xlsx", Semantic())
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.NotNil(t, records[0].Date)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), *records[0].Date)
	require.NotNil(t, records[0].ValueNum)
	assert.InDelta(t, 0.5, *records[0].ValueNum, 1e-12)
	assert.True(t, records[0].IsPercent)

	require.NotNil(t, records[1].ValueNum)
	assert.Equal(t, 1.5, *records[1].ValueNum)

	// Unparseable text is preserved raw with a nil numeric value.
	assert.Equal(t, "texto", records[2].ValueRaw)
	assert.Nil(t, records[2].ValueNum)
	assert.Equal(t, "jan.xlsx", records[2].SourceFile)
}

func TestNormalizeGridLabelIsLastTextCell(t *testing.T) {
	grid := [][]string{
		{"", "", "1/1/25", "2/1/25", "3/1/25"},
		{"OUTER", "INNER", "1", "", ""},
	}
	records, err := NormalizeGrid(grid, "jan.xlsx", Semantic())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].MetricLabel)
	assert.Equal(t, "INNER", *records[0].MetricLabel)
}

func TestNormalizeGridNumericLabelIsNotALabel(t *testing.T) {
	grid := [][]string{
		{"", "1/1/25", "2/1/25", "3/1/25"},
		{"42", "7", "", ""},
	}
	records, err := NormalizeGrid(grid, "jan.xlsx", Semantic())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].MetricLabel)
}

func TestNormalizeGridHeaderNotFound(t *testing.T) {
	_, err := NormalizeGrid([][]string{{"a", "b"}}, "bad.xlsx", Semantic())
	assert.ErrorIs(t, err, ErrNoDateHeader)
}
