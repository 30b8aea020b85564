package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"gptbridge/internal/batch"
)

// Store keeps one row per finished session in SQLite.
type Store struct {
	DBPath string
	db     *sql.DB
}

// Open opens or creates the journal database.
func Open(path string) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve journal path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// Concurrent sessions write through one connection to avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	store := &Store{DBPath: absPath, db: db}
	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) ensureSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	model TEXT NOT NULL,
	prompts INTEGER NOT NULL,
	request_path TEXT NOT NULL,
	response_path TEXT NOT NULL,
	status TEXT NOT NULL,
	error TEXT,
	started_at TEXT NOT NULL,
	duration_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create journal schema: %w", err)
	}
	return nil
}

// Record implements batch.Journal.
func (s *Store) Record(ctx context.Context, rec batch.SessionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions
			(id, model, prompts, request_path, response_path, status, error, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Model, rec.Prompts, rec.RequestPath, rec.ResponsePath, rec.Status, rec.Error,
		formatTime(rec.StartedAt), rec.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert session %s: %w", rec.ID, err)
	}
	return nil
}

// List returns the most recent sessions first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]batch.SessionRecord, error) {
	q := selectSessions + " ORDER BY started_at DESC"
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	return s.query(ctx, q, args...)
}

// StartedBefore returns sessions that started before cutoff, oldest first.
func (s *Store) StartedBefore(ctx context.Context, cutoff time.Time) ([]batch.SessionRecord, error) {
	return s.query(ctx, selectSessions+" WHERE started_at < ? ORDER BY started_at ASC", formatTime(cutoff))
}

// Delete removes the given session rows.
func (s *Store) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id IN ("+placeholders+")", args...); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

const selectSessions = `SELECT id, model, prompts, request_path, response_path, status, COALESCE(error, ''), started_at, duration_ms FROM sessions`

func (s *Store) query(ctx context.Context, q string, args ...any) ([]batch.SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []batch.SessionRecord
	for rows.Next() {
		var (
			rec     batch.SessionRecord
			started string
			durMS   int64
		)
		if err := rows.Scan(&rec.ID, &rec.Model, &rec.Prompts, &rec.RequestPath, &rec.ResponsePath,
			&rec.Status, &rec.Error, &started, &durMS); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		rec.StartedAt, err = time.Parse(timeLayout, started)
		if err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", started, err)
		}
		rec.Duration = time.Duration(durMS) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

// timeLayout sorts lexically in chronological order (fixed-width UTC).
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }
