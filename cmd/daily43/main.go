package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/LUISRGUEZSOSA/licor-43---daily/internal"
	"github.com/LUISRGUEZSOSA/licor-43---daily/internal/config"
	"github.com/LUISRGUEZSOSA/licor-43---daily/internal/connectors"
	gmailconnector "github.com/LUISRGUEZSOSA/licor-43---daily/internal/connectors/gmail"
	imapconnector "github.com/LUISRGUEZSOSA/licor-43---daily/internal/connectors/imap"
	"github.com/LUISRGUEZSOSA/licor-43---daily/internal/listener"
	"github.com/LUISRGUEZSOSA/licor-43---daily/internal/pipeline"
	"github.com/LUISRGUEZSOSA/licor-43---daily/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "normalize":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "master CSV path (long format)")
		sheet := fs.String("sheet", cfg.SheetName, "sheet name inside workbooks")
		policyName := fs.String("policy", cfg.PolicyPreset, "parsing policy preset: semantic|strict")
		peek := fs.Bool("peek", false, "also write _peek_<file>.csv with the first 30 records per input")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}

		policy, err := pipeline.PolicyByName(*policyName)
		must(err)
		if cfg.DateCellThreshold > 0 {
			policy.DateCellThreshold = cfg.DateCellThreshold
		}

		master := []internal.Record{}
		for _, path := range fs.Args() {
			records, err := pipeline.NormalizeFile(path, *sheet, policy)
			must(err)
			if *peek {
				stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				must(pipeline.WritePeekCSV(records, "_peek_"+stem+".csv", 30))
			}
			master = append(master, records...)
		}
		must(pipeline.WriteMasterCSV(master, *out))

		names, counts := pipeline.CountBySource(master)
		fmt.Println("OK. Records per file:")
		for _, name := range names {
			fmt.Printf("  %s: %d\n", name, counts[name])
		}
		fmt.Printf("Output: %s\n", *out)

	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output xlsx path")
		reportID := fs.Int("report", 0, "restrict to one stored report id (0 = all)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		db := openStore(cfg)
		defer db.Close()
		records, err := db.ListRecords(*reportID)
		must(err)
		must(pipeline.ExportRecordsToXLSX(records, *out))
		fmt.Printf("exported %d records to %s\n", len(records), *out)

	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max runs to list")
		_ = fs.Parse(os.Args[2:])
		db := openStore(cfg)
		defer db.Close()
		runs, err := db.ListRuns(*limit)
		must(err)
		for _, run := range runs {
			report := "-"
			if run.ReportID != nil {
				report = fmt.Sprintf("%d", *run.ReportID)
			}
			fmt.Printf("run=%d trace=%s report=%s counts=%s at=%s\n", run.ID, run.TraceID, report, run.CountsRaw, run.CreatedAt)
		}

	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.ListenerProvider, "gmail|imap")
		label := fs.String("label", cfg.ListenerLabel, "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		db := openStore(cfg)
		defer db.Close()
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, cfg.MailSubjectNeedle, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d\n", *provider, result.Fetched, result.Stored)

	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.ListenerProvider, "gmail|imap")
		messageID := fs.String("messageId", "", "specific message-id")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		db := openStore(cfg)
		defer db.Close()
		processor, err := pipeline.NewProcessingService(db, cfg)
		must(err)
		if strings.TrimSpace(*messageID) != "" {
			res, err := processor.ProcessByProviderMessageID(*provider, *messageID)
			must(err)
			fmt.Printf("processed report id=%d records=%d\n", res.ReportID, res.Records)
			return
		}
		processedReports, processedRecords, err := processor.ProcessPending(*batch, *provider)
		must(err)
		fmt.Printf("processed pending reports=%d records=%d\n", processedReports, processedRecords)

	case "mail:listen":
		db := openStore(cfg)
		defer db.Close()
		s := listener.NewService(db, cfg)
		must(s.Run(context.Background()))

	default:
		usage()
		os.Exit(1)
	}
}

func openStore(cfg config.Config) *storage.DB {
	db, err := storage.Open(cfg.DBPath)
	must(err)
	return db
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: daily43 <command>")
	fmt.Println("commands:")
	fmt.Println("  normalize --out=master.csv [--sheet=Daily] [--policy=semantic|strict] [--peek] <files...>")
	fmt.Println("  export:xlsx --out=./out/master.xlsx [--report=1]")
	fmt.Println("  runs:list [--limit=20]")
	fmt.Println("  mail:fetch [--provider=gmail|imap] [--label=INBOX] [--max=50]")
	fmt.Println("  mail:process [--provider=gmail|imap] [--messageId=...] [--batch=20]")
	fmt.Println("  mail:listen")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
