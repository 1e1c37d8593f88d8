// Package journal records fired alerts in a SQLite database.
//
// The journal is write-mostly history. It is never read back into the alert
// cursor, so a fresh process always starts from the null cursor.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zappabad/squawk/internal/alert"
	"github.com/zappabad/squawk/internal/news"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

var (
	_ alert.Notifier = (*Journal)(nil)
	_ alert.Durable  = (*Journal)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS alerts (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id   TEXT NOT NULL,
	ticker     TEXT NOT NULL,
	headline   TEXT NOT NULL,
	impact     TEXT NOT NULL,
	fired_at   INTEGER NOT NULL
);`

// Entry is one journaled alert.
type Entry struct {
	EventID  news.EventID
	Ticker   string
	Headline string
	Impact   news.Impact
	FiredAt  time.Time
}

// Journal is an alert.Notifier backed by SQLite.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the journal at path and ensures its table exists.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	// one writer; database/sql would otherwise open extra connections that
	// each see their own in-memory database when path is ":memory:"
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &Journal{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Durable keeps journal writes running through engine shutdown.
func (j *Journal) Durable() bool {
	return true
}

// Notify appends ev to the journal.
func (j *Journal) Notify(ctx context.Context, ev news.Event) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO alerts (event_id, ticker, headline, impact, fired_at) VALUES (?, ?, ?, ?, ?)`,
		string(ev.ID), ev.Ticker, ev.Headline, ev.Impact.String(), j.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("journal alert %s: %w", ev.ID, err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT event_id, ticker, headline, impact, fired_at FROM alerts ORDER BY seq DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e      Entry
			id     string
			impact string
			ms     int64
		)
		if err := rows.Scan(&id, &e.Ticker, &e.Headline, &impact, &ms); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		e.EventID = news.EventID(id)
		e.Impact = news.ParseImpact(impact)
		e.FiredAt = time.UnixMilli(ms)
		out = append(out, e)
	}
	return out, rows.Err()
}
