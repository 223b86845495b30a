package pipeline

import (
	"errors"
	"strings"
	"time"

	"github.com/LUISRGUEZSOSA/licor-43---daily/internal"
	"github.com/LUISRGUEZSOSA/licor-43---daily/internal/util"
)

// ErrNoDateHeader means no row in the grid reached the date-cell threshold;
// the file has no recognizable date axis and cannot be normalized.
var ErrNoDateHeader = errors.New("no date header row found")

const minPlausibleYear, maxPlausibleYear = 1900, 2100

// ClassifyCell sorts a raw cell into one of the four closed kinds the row
// classifier consumes. Order matters: date wins over number so a header
// cell like "1/1/25" is never mistaken for data.
func ClassifyCell(raw string, p Policy) internal.CellKind {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return internal.CellEmpty
	}
	if isDateLike(s, p) {
		return internal.CellDate
	}
	if num, _ := util.ParseNumber(s, p.Decimal); num != nil {
		return internal.CellNumber
	}
	return internal.CellText
}

func isDateLike(s string, p Policy) bool {
	if p.StrictDates {
		return datePattern.MatchString(s)
	}
	d, ok := util.ParseDate(s)
	return ok && d.Year() >= minPlausibleYear && d.Year() <= maxPlausibleYear
}

// FindDateHeaderRow scans the grid top to bottom for the first row with at
// least the threshold count of date-like cells and returns its location,
// the date-column span, and the index of a "TOTAL" cell to the right of
// that span (or -1).
func FindDateHeaderRow(grid [][]string, p Policy) (internal.HeaderLocation, error) {
	for r, row := range grid {
		dateCols := make([]int, 0, len(row))
		for c, cell := range row {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			if isDateLike(strings.TrimSpace(cell), p) {
				dateCols = append(dateCols, c)
			}
		}
		if len(dateCols) < p.DateCellThreshold {
			continue
		}

		loc := internal.HeaderLocation{
			Row:          r,
			FirstDateCol: dateCols[0],
			LastDateCol:  dateCols[len(dateCols)-1],
			TotalCol:     -1,
		}
		for c := loc.LastDateCol + 1; c < len(row); c++ {
			if strings.EqualFold(strings.TrimSpace(row[c]), "TOTAL") {
				loc.TotalCol = c
				break
			}
		}
		return loc, nil
	}
	return internal.HeaderLocation{}, ErrNoDateHeader
}

// MapColumnsToDates parses the header cells inside the date span into a
// column->date map. Cells that fail to parse simply drop out.
func MapColumnsToDates(grid [][]string, loc internal.HeaderLocation) map[int]time.Time {
	row := grid[loc.Row]
	out := make(map[int]time.Time)
	for c := loc.FirstDateCol; c <= loc.LastDateCol && c < len(row); c++ {
		if d, ok := util.ParseDate(row[c]); ok {
			out[c] = d
		}
	}
	return out
}
