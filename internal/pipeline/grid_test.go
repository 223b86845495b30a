package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func mkXLSX(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	if sheet != f.GetSheetName(0) {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	buf := bytes.NewBuffer(nil)
	_, err := f.WriteTo(buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestLoadGridBytesXLSX(t *testing.T) {
	blob := mkXLSX(t, "Daily", [][]any{
		{"", "1/1/25", "2/1/25", "3/1/25"},
		{"COMIDA", 10, 20, 30},
	})
	grid, err := LoadGridBytes(blob, ".xlsx", "Daily")
	require.NoError(t, err)
	require.Len(t, grid, 2)
	assert.Equal(t, "COMIDA", grid[1][0])
}

func TestLoadGridBytesMissingSheet(t *testing.T) {
	blob := mkXLSX(t, "Daily", [][]any{{"x"}})
	_, err := LoadGridBytes(blob, ".xlsx", "NoSuchSheet")
	assert.Error(t, err)
}

func TestLoadGridBytesCSV(t *testing.T) {
	csvBlob := []byte(",1/1/25,2/1/25,3/1/25\nCOMIDA,10,20\nBEBIDA,5,8,9,extra\n")
	grid, err := LoadGridBytes(csvBlob, ".csv", "")
	require.NoError(t, err)
	require.Len(t, grid, 3)
	// Ragged rows are allowed; widths vary per row.
	assert.Len(t, grid[1], 3)
	assert.Len(t, grid[2], 5)
}

func TestLoadGridBytesHTML(t *testing.T) {
	html := []byte(`<html><body><table>
<tr><th></th><th>1/1/25</th><th>2/1/25</th><th>3/1/25</th></tr>
<tr><td>COMIDA</td><td>10</td><td>20</td><td>30</td></tr>
</table></body></html>`)
	grid, err := LoadGridBytes(html, ".html", "")
	require.NoError(t, err)
	require.Len(t, grid, 2)
	assert.Equal(t, "COMIDA", grid[1][0])
	assert.Equal(t, "1/1/25", grid[0][1])
}

func TestLoadGridBytesUnsupported(t *testing.T) {
	_, err := LoadGridBytes([]byte("x"), ".docx", "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadGridFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\nc,d\n"), 0o644))

	grid, err := LoadGrid(path, "")
	require.NoError(t, err)
	require.Len(t, grid, 2)
	assert.Equal(t, []string{"c", "d"}, grid[1])
}

func TestNormalizeFileXLSXRoundTrip(t *testing.T) {
	blob := mkXLSX(t, "Daily", [][]any{
		{"", "1/1/25", "2/1/25", "3/1/25", "TOTAL"},
		{"RESTAURANTE"},
		{"COMIDA", 10, 20, 30, 60},
	})
	dir := t.TempDir()
	path := filepath.Join(dir, "jan.xlsx")
	require.NoError(t, os.WriteFile(path, blob, 0o644))

	records, err := NormalizeFile(path, "Daily", Semantic())
	require.NoError(t, err)
	require.Len(t, records, 4)
	for _, rec := range records {
		assert.Equal(t, "jan.xlsx", rec.SourceFile)
		require.NotNil(t, rec.Section)
		assert.Equal(t, "RESTAURANT", *rec.Section)
	}
	assert.True(t, records[3].IsTotal)
}

func TestNormalizeFileUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	_, err := NormalizeFile(path, "Daily", Semantic())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
