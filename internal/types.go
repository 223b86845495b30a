package internal

import "time"

// Record is one observation in the long-format master table: a single
// (file, section, metric, date) cell lifted out of the wide daily layout.
// Total-column cells carry a nil Date and IsTotal=true.
type Record struct {
	SourceFile  string
	Section     *string
	MetricLabel *string
	Date        *time.Time
	ValueRaw    string
	ValueNum    *float64
	IsPercent   bool
	IsTotal     bool
}

// MasterColumns is the fixed column order of the master table.
var MasterColumns = []string{
	"source_file", "section", "metric_label", "date",
	"value_raw", "value_num", "is_percent", "is_total",
}

type CellKind int

const (
	CellEmpty CellKind = iota
	CellDate
	CellNumber
	CellText
)

// HeaderLocation pins the date axis of one sheet: the header row, the span
// of date-like columns and, when present, the trailing TOTAL column.
// TotalCol is -1 when no TOTAL column was found.
type HeaderLocation struct {
	Row          int
	FirstDateCol int
	LastDateCol  int
	TotalCol     int
}

type ReportStatus string

const (
	ReportFetched   ReportStatus = "fetched"
	ReportProcessed ReportStatus = "processed"
	ReportExported  ReportStatus = "exported"
	ReportSkipped   ReportStatus = "skipped"
	ReportFailed    ReportStatus = "failed"
)

// ReportRow is one ingested daily-report source tracked in the run store.
type ReportRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

// RunRow summarizes one processing run for runs:list.
type RunRow struct {
	ID        int
	TraceID   string
	ReportID  *int
	CountsRaw string
	CreatedAt string
}
