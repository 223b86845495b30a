package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/LUISRGUEZSOSA/licor-43---daily/internal"
)

// RecordRow serializes one record in the canonical column order. Dates are
// ISO day strings, nil fields are empty strings.
func RecordRow(rec internal.Record) []string {
	row := make([]string, 0, len(internal.MasterColumns))
	row = append(row, rec.SourceFile)
	row = append(row, derefString(rec.Section))
	row = append(row, derefString(rec.MetricLabel))
	if rec.Date != nil {
		row = append(row, rec.Date.Format("2006-01-02"))
	} else {
		row = append(row, "")
	}
	row = append(row, rec.ValueRaw)
	if rec.ValueNum != nil {
		row = append(row, strconv.FormatFloat(*rec.ValueNum, 'g', -1, 64))
	} else {
		row = append(row, "")
	}
	row = append(row, strconv.FormatBool(rec.IsPercent))
	row = append(row, strconv.FormatBool(rec.IsTotal))
	return row
}

// WriteMasterCSV writes the stacked long-format table. An empty record set
// still produces a header-only file with the full column set.
func WriteMasterCSV(records []internal.Record, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(internal.MasterColumns); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write(RecordRow(rec)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WritePeekCSV dumps the first n records of one file's batch, for eyeballing
// a layout before trusting the full run.
func WritePeekCSV(records []internal.Record, outputPath string, n int) error {
	if len(records) > n {
		records = records[:n]
	}
	return WriteMasterCSV(records, outputPath)
}

// CountBySource tallies records per source file for the console summary.
// Keys come back sorted so the summary is stable across runs.
func CountBySource(records []internal.Record) ([]string, map[string]int) {
	counts := map[string]int{}
	for _, rec := range records {
		counts[rec.SourceFile]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, counts
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
