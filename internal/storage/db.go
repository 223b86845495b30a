package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/LUISRGUEZSOSA/licor-43---daily/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS reports (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  reportId INTEGER NOT NULL,
  sourceFile TEXT NOT NULL,
  section TEXT,
  metricLabel TEXT,
  date TEXT,
  valueRaw TEXT NOT NULL,
  valueNum REAL,
  isPercent INTEGER NOT NULL DEFAULT 0,
  isTotal INTEGER NOT NULL DEFAULT 0,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(reportId) REFERENCES reports(id)
);
CREATE INDEX IF NOT EXISTS idx_records_reportId ON records(reportId);
CREATE INDEX IF NOT EXISTS idx_records_date ON records(date);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  reportId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(reportId) REFERENCES reports(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertReport(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.ReportRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO reports (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.ReportRow{}, err
	}

	row, err := d.GetReportByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.ReportRow{}, err
	}
	if row == nil {
		return internal.ReportRow{}, errors.New("failed to upsert report")
	}
	return *row, nil
}

func (d *DB) GetReportByProviderMessageID(provider, messageID string) (*internal.ReportRow, error) {
	var row internal.ReportRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM reports WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) MustReportByProviderMessageID(provider, messageID string) (internal.ReportRow, error) {
	row, err := d.GetReportByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.ReportRow{}, err
	}
	if row == nil {
		return internal.ReportRow{}, fmt.Errorf("report not found: provider=%s messageId=%s", provider, messageID)
	}
	return *row, nil
}

func (d *DB) ListReportsByStatus(status string, limit int) ([]internal.ReportRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM reports WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ReportRow
	for rows.Next() {
		var row internal.ReportRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateReportStatus(reportID int, status internal.ReportStatus) error {
	_, err := d.conn.Exec(`UPDATE reports SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, string(status), reportID)
	return err
}

// ClearReportRecords drops previously stored records so reprocessing a
// report never duplicates its rows.
func (d *DB) ClearReportRecords(reportID int) error {
	_, err := d.conn.Exec(`DELETE FROM records WHERE reportId = ?`, reportID)
	return err
}

func (d *DB) InsertRecords(reportID int, records []internal.Record) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO records (reportId, sourceFile, section, metricLabel, date, valueRaw, valueNum, isPercent, isTotal)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		var date *string
		if rec.Date != nil {
			s := rec.Date.Format("2006-01-02")
			date = &s
		}
		if _, err := stmt.Exec(
			reportID, rec.SourceFile, rec.Section, rec.MetricLabel, date,
			rec.ValueRaw, rec.ValueNum, boolToInt(rec.IsPercent), boolToInt(rec.IsTotal),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListRecords returns the stored records of one report, or of every report
// when reportID is 0, in insertion order.
func (d *DB) ListRecords(reportID int) ([]internal.Record, error) {
	query := `
SELECT sourceFile, section, metricLabel, date, valueRaw, valueNum, isPercent, isTotal
FROM records`
	args := []any{}
	if reportID > 0 {
		query += ` WHERE reportId = ?`
		args = append(args, reportID)
	}
	query += ` ORDER BY id ASC`

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Record
	for rows.Next() {
		var rec internal.Record
		var date sql.NullString
		var isPct, isTotal int
		if err := rows.Scan(&rec.SourceFile, &rec.Section, &rec.MetricLabel, &date, &rec.ValueRaw, &rec.ValueNum, &isPct, &isTotal); err != nil {
			return nil, err
		}
		if date.Valid {
			if t, err := time.Parse("2006-01-02", date.String); err == nil {
				rec.Date = &t
			}
		}
		rec.IsPercent = isPct != 0
		rec.IsTotal = isTotal != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(traceID string, reportID int, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	var report *int
	if reportID > 0 {
		report = &reportID
	}
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, reportId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, traceID, report, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) ListRuns(limit int) ([]internal.RunRow, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, reportId, countsJson, createdAt
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		var row internal.RunRow
		if err := rows.Scan(&row.ID, &row.TraceID, &row.ReportID, &row.CountsRaw, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
