package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/LUISRGUEZSOSA/licor-43---daily/internal"
)

// ExportRecordsToXLSX writes the master table as a workbook, one record per
// row under the canonical header.
func ExportRecordsToXLSX(records []internal.Record, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range internal.MasterColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range records {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, rec.SourceFile)
		set(2, derefString(rec.Section))
		set(3, derefString(rec.MetricLabel))
		if rec.Date != nil {
			set(4, rec.Date.Format("2006-01-02"))
		} else {
			set(4, "")
		}
		set(5, rec.ValueRaw)
		if rec.ValueNum != nil {
			set(6, *rec.ValueNum)
		} else {
			set(6, "")
		}
		set(7, rec.IsPercent)
		set(8, rec.IsTotal)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
