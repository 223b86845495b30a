package listener

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/LUISRGUEZSOSA/licor-43---daily/internal"
	"github.com/LUISRGUEZSOSA/licor-43---daily/internal/config"
	"github.com/LUISRGUEZSOSA/licor-43---daily/internal/connectors"
	gmailconnector "github.com/LUISRGUEZSOSA/licor-43---daily/internal/connectors/gmail"
	imapconnector "github.com/LUISRGUEZSOSA/licor-43---daily/internal/connectors/imap"
	"github.com/LUISRGUEZSOSA/licor-43---daily/internal/pipeline"
	"github.com/LUISRGUEZSOSA/licor-43---daily/internal/storage"
)

// Service polls the mailbox for new daily reports, normalizes them and
// keeps the master table fresh on disk.
type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(); err != nil {
			slog.Error("listener cycle failed", slog.String("error", err.Error()))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.ListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle() error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.ListenerProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := connectors.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.ListenerLabel, s.cfg.MailSubjectNeedle, s.cfg.ListenerFetchMax)
	if err != nil {
		return err
	}

	processor, err := pipeline.NewProcessingService(s.db, s.cfg)
	if err != nil {
		return err
	}
	processedReports, _, err := processor.ProcessPending(s.cfg.ListenerProcessBatch, provider)
	if err != nil {
		return err
	}

	if s.cfg.ListenerAutoExport {
		if err := s.exportProcessed(provider); err != nil {
			return err
		}
	}

	slog.Info("listener cycle done",
		slog.String("provider", provider),
		slog.Int("fetched", fetchResult.Fetched),
		slog.Int("stored", fetchResult.Stored),
		slog.Int("processed", processedReports))
	return nil
}

// exportProcessed refreshes the on-disk master CSV from everything stored
// so far, then marks the newly processed reports exported.
func (s *Service) exportProcessed(provider string) error {
	reports, err := s.db.ListReportsByStatus(string(internal.ReportProcessed), 200)
	if err != nil {
		return err
	}

	exported := 0
	for _, report := range reports {
		if report.Provider != provider {
			continue
		}
		_ = s.db.UpdateReportStatus(report.ID, internal.ReportExported)
		exported++
	}
	if exported == 0 {
		return nil
	}

	records, err := s.db.ListRecords(0)
	if err != nil {
		return err
	}
	masterPath := filepath.Join(s.cfg.OutputDir, "master.csv")
	if err := pipeline.WriteMasterCSV(records, masterPath); err != nil {
		return err
	}
	slog.Info("master table refreshed",
		slog.String("path", masterPath),
		slog.Int("records", len(records)))
	return nil
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}
