package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite-backed transcript history.
type Store struct {
	db        *sql.DB
	retention time.Duration
	log       *slog.Logger
	clock     func() time.Time
}

// OpenStore initializes the transcript store at path, creating parent
// directories and the schema as needed. A zero retention keeps everything.
func OpenStore(ctx context.Context, path string, retention time.Duration, log *slog.Logger) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, retention: retention, log: log, clock: time.Now}

	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := s.Prune(ctx); err != nil {
		log.Warn("transcript prune on start failed", slog.String("error", err.Error()))
	}

	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS transcripts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    clip_id TEXT NOT NULL,
    source TEXT NOT NULL,
    language TEXT NOT NULL,
    text TEXT NOT NULL,
    confidence REAL NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transcripts_created ON transcripts(created_at);
CREATE INDEX IF NOT EXISTS idx_transcripts_session ON transcripts(session_id, created_at);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Save appends one transcript to the history.
func (s *Store) Save(ctx context.Context, t *Transcript) error {
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.clock()
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO transcripts (session_id, clip_id, source, language, text, confidence, duration_ms, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.SessionID, t.ClipID, t.Source, t.Language, t.Text, t.Confidence,
		t.Duration.Milliseconds(), createdAt.UTC())
	if err != nil {
		return fmt.Errorf("insert transcript: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		t.ID = id
	}

	return nil
}

// Recent returns the newest transcripts, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Transcript, error) {
	if limit < 1 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, session_id, clip_id, source, language, text, confidence, duration_ms, created_at
FROM transcripts ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	var out []Transcript
	for rows.Next() {
		var t Transcript
		var durationMs int64
		if err := rows.Scan(&t.ID, &t.SessionID, &t.ClipID, &t.Source, &t.Language,
			&t.Text, &t.Confidence, &durationMs, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		t.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, t)
	}

	return out, rows.Err()
}

// Prune deletes transcripts older than the retention period.
func (s *Store) Prune(ctx context.Context) error {
	if s.retention <= 0 {
		return nil
	}

	cutoff := s.clock().Add(-s.retention).UTC()
	res, err := s.db.ExecContext(ctx, `DELETE FROM transcripts WHERE created_at < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("prune transcripts: %w", err)
	}

	if deleted, err := res.RowsAffected(); err == nil && deleted > 0 {
		s.log.Debug("pruned old transcripts",
			slog.Int64("deleted", deleted),
			slog.Time("cutoff", cutoff),
		)
	}

	return nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
