// Package history persists generated commit messages in a local SQLite file.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS generations (
	id            TEXT PRIMARY KEY,
	created_at    TIMESTAMP NOT NULL,
	repo_path     TEXT NOT NULL,
	branch        TEXT NOT NULL DEFAULT '',
	model         TEXT NOT NULL,
	files_changed INTEGER NOT NULL DEFAULT 0,
	insertions    INTEGER NOT NULL DEFAULT 0,
	deletions     INTEGER NOT NULL DEFAULT 0,
	message       TEXT NOT NULL,
	committed     INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_generations_created_at ON generations(created_at DESC);
`

// Entry is one recorded generation.
type Entry struct {
	ID           string
	CreatedAt    time.Time
	RepoPath     string
	Branch       string
	Model        string
	FilesChanged int
	Insertions   int
	Deletions    int
	Message      string
	Committed    bool
}

// Store wraps the SQLite database holding past generations.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the history database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	// Single-shot CLI, a lone connection avoids locking surprises.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a generation. ID and CreatedAt are filled in when unset.
func (s *Store) Record(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generations
			(id, created_at, repo_path, branch, model, files_changed, insertions, deletions, message, committed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt, e.RepoPath, e.Branch, e.Model,
		e.FilesChanged, e.Insertions, e.Deletions, e.Message, e.Committed,
	)
	if err != nil {
		return fmt.Errorf("recording generation: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, repo_path, branch, model, files_changed, insertions, deletions, message, committed
		FROM generations
		ORDER BY created_at DESC, id
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.CreatedAt, &e.RepoPath, &e.Branch, &e.Model,
			&e.FilesChanged, &e.Insertions, &e.Deletions, &e.Message, &e.Committed,
		); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
