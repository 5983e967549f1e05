// Package store keeps a local journal of flash messages shown by the dialog.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mikequentel/confirmtweet/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS flashes (
	id         TEXT PRIMARY KEY,
	package_id TEXT NOT NULL,
	category   TEXT NOT NULL,
	message    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS flashes_created_at ON flashes (created_at);
`

type Entry struct {
	ID        string
	PackageID string
	Message   model.Message
	CreatedAt time.Time
}

type Store struct {
	db *sql.DB
}

func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// single writer keeps sqlite happy across goroutines
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Append(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO flashes (id, package_id, category, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.PackageID, string(e.Message.Category), e.Message.Text, e.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("insert flash: %w", err)
	}
	return e, nil
}

// List returns the newest entries first. limit <= 0 returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, package_id, category, message, created_at
FROM flashes
ORDER BY created_at DESC, rowid DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var cat string
		if err := rows.Scan(&e.ID, &e.PackageID, &cat, &e.Message.Text, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Message.Category = model.Category(cat)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Recorder is a feedback sink that journals every flash for one dataset.
// Write failures are logged and otherwise ignored.
type Recorder struct {
	store *Store
	pkgID string
	log   *slog.Logger
}

func NewRecorder(s *Store, pkgID string, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{store: s, pkgID: pkgID, log: log}
}

func (r *Recorder) Flash(msg model.Message) {
	if _, err := r.store.Append(context.Background(), Entry{PackageID: r.pkgID, Message: msg}); err != nil {
		r.log.Warn("journal flash failed", "pkgid", r.pkgID, "err", err)
	}
}
