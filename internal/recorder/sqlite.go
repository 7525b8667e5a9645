package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists query history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS query_history (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id  TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			input       TEXT,
			code        TEXT,
			source      TEXT,
			start_date  TEXT,
			end_date    TEXT,
			rows        INTEGER,
			outcome     TEXT,
			message     TEXT,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_query_ts ON query_history(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordQuery(evt *QueryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := evt.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO query_history
		(request_id, timestamp, input, code, source, start_date, end_date, rows, outcome, message, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		evt.RequestID, at.UnixMilli(), evt.Input, evt.Code, evt.Source,
		evt.Start, evt.End, evt.Rows, evt.Outcome, evt.Message, evt.Duration.Milliseconds(),
	)
	return err
}

// Recent returns up to limit events, newest first.
func (r *SQLiteRecorder) Recent(limit int) ([]QueryEvent, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.Query(`SELECT request_id, timestamp, input, code, source, start_date, end_date,
		rows, outcome, message, duration_ms
		FROM query_history ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []QueryEvent
	for rows.Next() {
		var (
			e         QueryEvent
			ts, durMS int64
		)
		if err := rows.Scan(&e.RequestID, &ts, &e.Input, &e.Code, &e.Source, &e.Start, &e.End,
			&e.Rows, &e.Outcome, &e.Message, &durMS); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.At = time.UnixMilli(ts)
		e.Duration = time.Duration(durMS) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
