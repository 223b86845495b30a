package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LUISRGUEZSOSA/licor-43---daily/internal"
	"github.com/LUISRGUEZSOSA/licor-43---daily/internal/config"
	"github.com/LUISRGUEZSOSA/licor-43---daily/internal/storage"
)

func TestSmokeEmailToMaster(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "daily43.db"))
	require.NoError(t, err)
	defer db.Close()

	rawPath := filepath.Join(tmp, "fixture.eml")
	raw := mkReportEmail(t, "Daily report 01/01", "jan.csv", reportCSV)
	require.NoError(t, os.WriteFile(rawPath, raw, 0o644))

	report, err := db.UpsertReport("gmail", "<fixture-1@example.com>", "Daily report 01/01", "hotel@example.com", "2025-01-02T08:00:00Z", "hash", rawPath, "fetched")
	require.NoError(t, err)

	cfg := config.Config{SheetName: "Daily", PolicyPreset: "semantic"}
	proc, err := NewProcessingService(db, cfg)
	require.NoError(t, err)

	res, err := proc.ProcessReport(report)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Records)

	got, err := db.MustReportByProviderMessageID("gmail", "<fixture-1@example.com>")
	require.NoError(t, err)
	assert.Equal(t, string(internal.ReportProcessed), got.Status)

	records, err := db.ListRecords(report.ID)
	require.NoError(t, err)
	require.Len(t, records, 4)

	// Reprocessing replaces rather than duplicates.
	res, err = proc.ProcessReport(got)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Records)
	records, err = db.ListRecords(report.ID)
	require.NoError(t, err)
	assert.Len(t, records, 4)

	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	masterPath := filepath.Join(tmp, "master.csv")
	require.NoError(t, WriteMasterCSV(records, masterPath))
	xlsxPath := filepath.Join(tmp, "master.xlsx")
	require.NoError(t, ExportRecordsToXLSX(records, xlsxPath))
	_, err = os.Stat(xlsxPath)
	require.NoError(t, err)
}

func TestProcessReportSkipsNonReports(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "daily43.db"))
	require.NoError(t, err)
	defer db.Close()

	rawPath := filepath.Join(tmp, "chatter.eml")
	raw := mkReportEmail(t, "lunch tomorrow?", "menu.docx", "pizza")
	require.NoError(t, os.WriteFile(rawPath, raw, 0o644))

	report, err := db.UpsertReport("gmail", "<chatter@example.com>", "lunch tomorrow?", "x@y", "2025-01-02T08:00:00Z", "hash", rawPath, "fetched")
	require.NoError(t, err)

	proc, err := NewProcessingService(db, config.Config{SheetName: "Daily", PolicyPreset: "semantic"})
	require.NoError(t, err)

	res, err := proc.ProcessReport(report)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Records)

	got, err := db.MustReportByProviderMessageID("gmail", "<chatter@example.com>")
	require.NoError(t, err)
	assert.Equal(t, string(internal.ReportSkipped), got.Status)
}

func TestProcessPendingContinuesPastFailures(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "daily43.db"))
	require.NoError(t, err)
	defer db.Close()

	// Raw file missing on disk: processing this report must fail.
	_, err = db.UpsertReport("gmail", "<gone@example.com>", "Daily report", "x@y", "2025-01-01T08:00:00Z", "hash", filepath.Join(tmp, "missing.eml"), "fetched")
	require.NoError(t, err)

	goodPath := filepath.Join(tmp, "good.eml")
	require.NoError(t, os.WriteFile(goodPath, mkReportEmail(t, "Daily report 02/01", "feb.csv", reportCSV), 0o644))
	_, err = db.UpsertReport("gmail", "<good@example.com>", "Daily report 02/01", "x@y", "2025-01-02T08:00:00Z", "hash", goodPath, "fetched")
	require.NoError(t, err)

	proc, err := NewProcessingService(db, config.Config{SheetName: "Daily", PolicyPreset: "semantic"})
	require.NoError(t, err)

	reports, records, err := proc.ProcessPending(10, "")
	require.NoError(t, err)
	assert.Equal(t, 1, reports)
	assert.Equal(t, 4, records)

	failed, err := db.MustReportByProviderMessageID("gmail", "<gone@example.com>")
	require.NoError(t, err)
	assert.Equal(t, string(internal.ReportFailed), failed.Status)
}
