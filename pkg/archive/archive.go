// Package archive keeps a queryable sqlite copy of every ingested journal
// event. The JSON state files remain the system of record; the archive exists
// so stats and later reclassification don't require re-reading journals that
// the processed-file index has already retired.
package archive

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	sql *sql.DB
}

type Event struct {
	SourcePath string
	LineIndex  int
	Date       string
	EventType  string
	Category   string
	Activity   string
	RawJSON    string
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS journal_events (
  id          INTEGER PRIMARY KEY,
  source_path TEXT NOT NULL,
  line_index  INTEGER NOT NULL,
  date        TEXT NOT NULL,
  event_type  TEXT NOT NULL,
  category    TEXT NOT NULL,
  activity    TEXT NOT NULL,
  raw_json    TEXT,
  ingested_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_events_date ON journal_events(date);
CREATE INDEX IF NOT EXISTS idx_events_type ON journal_events(event_type);
CREATE INDEX IF NOT EXISTS idx_events_source ON journal_events(source_path);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// InsertEvents archives a batch of events in one transaction.
func (d *DB) InsertEvents(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO journal_events(source_path, line_index, date, event_type, category, activity, raw_json, ingested_at) VALUES(?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, e := range events {
		if _, err = stmt.ExecContext(ctx, e.SourcePath, e.LineIndex, e.Date, e.EventType, e.Category, e.Activity, nullIfEmpty(e.RawJSON), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type TypeStat struct {
	EventType string
	Category  string
	Count     int
}

type DateStat struct {
	Date  string
	Count int
}

// TypeStats returns per-event-type counts across the whole archive.
func (d *DB) TypeStats(ctx context.Context) ([]TypeStat, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT event_type, category, COUNT(*)
		FROM journal_events
		GROUP BY event_type, category
		ORDER BY COUNT(*) DESC, event_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []TypeStat
	for rows.Next() {
		var s TypeStat
		if err := rows.Scan(&s.EventType, &s.Category, &s.Count); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// DateStats returns per-date event counts, ascending by date.
func (d *DB) DateStats(ctx context.Context) ([]DateStat, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT date, COUNT(*)
		FROM journal_events
		GROUP BY date
		ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []DateStat
	for rows.Next() {
		var s DateStat
		if err := rows.Scan(&s.Date, &s.Count); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
