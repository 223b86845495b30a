package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/LUISRGUEZSOSA/licor-43---daily/internal"
	"github.com/LUISRGUEZSOSA/licor-43---daily/internal/util"
)

// sectionSynonyms maps raw row labels (upper-cased, space-collapsed) to the
// canonical section names. Spanish and English spellings from the source
// reports, typos included.
var sectionSynonyms = map[string]string{
	"RESTAURANTE": "RESTAURANT", "RESTAURANT": "RESTAURANT",
	"BAR": "BAR", "BER": "BAR",
	"BODA": "BANQUETING", "BENQUETING": "BANQUETING", "BANQUETING": "BANQUETING",
	"EMPRESA": "MICE", "MICE": "MICE",
	"PARTICULAR": "INDIVIDUALS", "INDIVIDUALS": "INDIVIDUALS",
	"TIENDA RESTAURANTE 43": "SHOP", "SHOP": "SHOP",
	"WALK IN": "WALKIN", "WALKIN": "WALKIN",
	"INTERNO": "EMPLOYEES", "EMPLEADOS": "EMPLOYEES",
}

// NormalizeFile reshapes one daily report into long-format records.
// An .eml input contributes one record batch per spreadsheet attachment;
// every other extension loads as a single grid.
func NormalizeFile(path, sheet string, p Policy) ([]internal.Record, error) {
	if strings.EqualFold(filepath.Ext(path), ".eml") {
		return normalizeEmailFile(path, sheet, p)
	}

	grid, err := LoadGrid(path, sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return NormalizeGrid(grid, filepath.Base(path), p)
}

// NormalizeGrid runs the header heuristic and row fold over a raw grid.
func NormalizeGrid(grid [][]string, sourceFile string, p Policy) ([]internal.Record, error) {
	loc, err := FindDateHeaderRow(grid, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sourceFile, err)
	}

	colDates := MapColumnsToDates(grid, loc)
	dateCols := make([]int, 0, len(colDates))
	for c := range colDates {
		dateCols = append(dateCols, c)
	}
	sort.Ints(dateCols)

	records := []internal.Record{}
	var currentSection *string

	for r := loc.Row + 1; r < len(grid); r++ {
		row := grid[r]

		// Label: last non-empty text cell left of the date span. Numbers
		// and stray dates in the label area are not labels.
		label := ""
		for c := 0; c < loc.FirstDateCol && c < len(row); c++ {
			if ClassifyCell(row[c], p) == internal.CellText {
				label = strings.TrimSpace(row[c])
			}
		}

		var metricLabel *string
		if label != "" {
			if canonical, ok := sectionSynonyms[util.NormalizeLabel(label)]; ok {
				// Section title row. It may still carry values, so the
				// column sweep below runs regardless.
				currentSection = util.StringPtr(canonical)
			} else {
				metricLabel = util.StringPtr(label)
			}
		}

		for _, c := range dateCols {
			if c >= len(row) {
				continue
			}
			switch ClassifyCell(row[c], p) {
			case internal.CellEmpty:
				continue
			case internal.CellDate:
				// Restated date cells below the header are noise, not data.
				continue
			}
			s := strings.TrimSpace(row[c])
			num, isPct := util.ParseNumber(s, p.Decimal)
			records = append(records, internal.Record{
				SourceFile:  sourceFile,
				Section:     currentSection,
				MetricLabel: metricLabel,
				Date:        util.TimePtr(colDates[c]),
				ValueRaw:    s,
				ValueNum:    num,
				IsPercent:   isPct,
				IsTotal:     false,
			})
		}

		if loc.TotalCol >= 0 && loc.TotalCol < len(row) {
			s := strings.TrimSpace(row[loc.TotalCol])
			if s != "" {
				num, isPct := util.ParseNumber(s, p.Decimal)
				records = append(records, internal.Record{
					SourceFile:  sourceFile,
					Section:     currentSection,
					MetricLabel: metricLabel,
					Date:        nil,
					ValueRaw:    s,
					ValueNum:    num,
					IsPercent:   isPct,
					IsTotal:     true,
				})
			}
		}
	}

	return records, nil
}

func normalizeEmailFile(path, sheet string, p Policy) ([]internal.Record, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	atts, _, err := ExtractReportAttachments(blob)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	records := []internal.Record{}
	matched := 0
	for _, att := range atts {
		grid, err := LoadGridBytes(att.Content, filepath.Ext(att.Name), sheet)
		if err != nil {
			continue
		}
		matched++
		batch, err := NormalizeGrid(grid, att.Name, p)
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}
	if matched == 0 {
		return nil, fmt.Errorf("%s: no report attachments found", filepath.Base(path))
	}
	return records, nil
}
