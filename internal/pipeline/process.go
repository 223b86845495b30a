package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/LUISRGUEZSOSA/licor-43---daily/internal"
	"github.com/LUISRGUEZSOSA/licor-43---daily/internal/config"
	"github.com/LUISRGUEZSOSA/licor-43---daily/internal/storage"
)

// ProcessingService normalizes the spreadsheet attachments of fetched
// report emails and persists the long-format records.
type ProcessingService struct {
	db     *storage.DB
	cfg    config.Config
	policy Policy
}

func NewProcessingService(db *storage.DB, cfg config.Config) (*ProcessingService, error) {
	policy, err := PolicyByName(cfg.PolicyPreset)
	if err != nil {
		return nil, err
	}
	if cfg.DateCellThreshold > 0 {
		policy.DateCellThreshold = cfg.DateCellThreshold
	}
	return &ProcessingService{db: db, cfg: cfg, policy: policy}, nil
}

type ProcessResult struct {
	ReportID int
	Records  int
}

func (s *ProcessingService) ProcessByProviderMessageID(provider, messageID string) (ProcessResult, error) {
	report, err := s.db.MustReportByProviderMessageID(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessReport(report)
}

// ProcessPending works through fetched reports. Unlike the one-shot
// normalize command, a failed report is marked and skipped so the rest of
// the batch still lands.
func (s *ProcessingService) ProcessPending(limit int, provider string) (int, int, error) {
	pending, err := s.db.ListReportsByStatus(string(internal.ReportFetched), limit)
	if err != nil {
		return 0, 0, err
	}
	processedReports := 0
	processedRecords := 0
	for _, report := range pending {
		if provider != "" && report.Provider != provider {
			continue
		}
		res, err := s.ProcessReport(report)
		if err != nil {
			slog.Warn("report processing failed",
				slog.Int("report_id", report.ID),
				slog.String("subject", report.Subject),
				slog.String("error", err.Error()))
			_ = s.db.UpdateReportStatus(report.ID, internal.ReportFailed)
			continue
		}
		processedReports++
		processedRecords += res.Records
	}
	return processedReports, processedRecords, nil
}

func (s *ProcessingService) ProcessReport(report internal.ReportRow) (ProcessResult, error) {
	start := time.Now()
	raw, err := os.ReadFile(report.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}

	detect := DetectDailyReport(report.Subject, AttachmentNames(raw))
	if !detect.IsReport {
		slog.Info("skipping non-report email",
			slog.Int("report_id", report.ID),
			slog.Float64("score", detect.Score))
		_ = s.db.UpdateReportStatus(report.ID, internal.ReportSkipped)
		_ = s.db.InsertRun(traceID(), report.ID,
			map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
			map[string]int{"records": 0, "totals": 0})
		return ProcessResult{ReportID: report.ID, Records: 0}, nil
	}

	atts, _, err := ExtractReportAttachments(raw)
	if err != nil {
		return ProcessResult{}, err
	}

	records := []internal.Record{}
	for _, att := range atts {
		grid, err := LoadGridBytes(att.Content, filepath.Ext(att.Name), s.cfg.SheetName)
		if err != nil {
			slog.Warn("attachment not loadable",
				slog.String("attachment", att.Name),
				slog.String("error", err.Error()))
			continue
		}
		batch, err := NormalizeGrid(grid, att.Name, s.policy)
		if err != nil {
			slog.Warn("attachment not normalizable",
				slog.String("attachment", att.Name),
				slog.String("error", err.Error()))
			continue
		}
		records = append(records, batch...)
	}

	if err := s.db.ClearReportRecords(report.ID); err != nil {
		return ProcessResult{}, err
	}
	if err := s.db.InsertRecords(report.ID, records); err != nil {
		return ProcessResult{}, err
	}
	if err := s.db.UpdateReportStatus(report.ID, internal.ReportProcessed); err != nil {
		return ProcessResult{}, err
	}

	totals := 0
	for _, rec := range records {
		if rec.IsTotal {
			totals++
		}
	}
	_ = s.db.InsertRun(traceID(), report.ID,
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{"records": len(records), "totals": totals})

	slog.Info("report processed",
		slog.Int("report_id", report.ID),
		slog.Int("records", len(records)))

	return ProcessResult{ReportID: report.ID, Records: len(records)}, nil
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
