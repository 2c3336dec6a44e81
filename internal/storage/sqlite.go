package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite" // SQLite driver registration.

	"github.com/deusflow/weeklydigest/internal/edition"
	"github.com/deusflow/weeklydigest/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Store backed by a SQLite database. Every archive row
// remembers the run that last wrote it.
type SQLite struct {
	db    *sql.DB
	runID string
	now   func() time.Time
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn, runID string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db, runID: runID, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) SaveCurrent(ctx context.Context, ed edition.Edition) error {
	payload, err := encode(ed)
	if err != nil {
		return fmt.Errorf("marshal edition: %w", err)
	}
	q := sq.Insert("current_edition").
		Columns("id", "payload", "run_id", "updated_at").
		Values(1, string(payload), s.runID, s.stamp()).
		Suffix("ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, run_id = excluded.run_id, updated_at = excluded.updated_at")
	return s.exec(ctx, q, "upsert current edition")
}

func (s *SQLite) SaveArchive(ctx context.Context, id string, ed edition.Edition) error {
	payload, err := encode(ed)
	if err != nil {
		return fmt.Errorf("marshal edition: %w", err)
	}
	q := sq.Insert("archive").
		Columns("id", "payload", "run_id", "updated_at").
		Values(id, string(payload), s.runID, s.stamp()).
		Suffix("ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, run_id = excluded.run_id, updated_at = excluded.updated_at")
	return s.exec(ctx, q, "upsert archive")
}

// ListArchive returns archive ids as file names ("2024-W03.json").
func (s *SQLite) ListArchive(ctx context.Context) ([]string, error) {
	query, args, err := sq.Select("id || '.json'").From("archive").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan archive id: %w", err)
		}
		files = append(files, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return files, nil
}

func (s *SQLite) SaveIndex(ctx context.Context, idx edition.Index) error {
	payload, err := encode(idx)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	q := sq.Insert("archive_index").
		Columns("id", "payload", "updated_at").
		Values(1, string(payload), s.stamp()).
		Suffix("ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at")
	return s.exec(ctx, q, "upsert archive index")
}

// Current returns the stored current edition payload, or "" if none.
func (s *SQLite) Current(ctx context.Context) (string, error) {
	return s.payload(ctx, sq.Select("payload").From("current_edition").Where(sq.Eq{"id": 1}))
}

// Archive returns the payload and run id stored for the archive entry id.
func (s *SQLite) Archive(ctx context.Context, id string) (payload, runID string, err error) {
	query, args, err := sq.Select("payload", "run_id").From("archive").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return "", "", fmt.Errorf("build query: %w", err)
	}
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&payload, &runID)
	if err == sql.ErrNoRows {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("query archive %s: %w", id, err)
	}
	return payload, runID, nil
}

// Index returns the stored archive index payload, or "" if none.
func (s *SQLite) Index(ctx context.Context) (string, error) {
	return s.payload(ctx, sq.Select("payload").From("archive_index").Where(sq.Eq{"id": 1}))
}

func (s *SQLite) payload(ctx context.Context, b sq.SelectBuilder) (string, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}
	var payload string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&payload)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query payload: %w", err)
	}
	return payload, nil
}

func (s *SQLite) exec(ctx context.Context, b sq.InsertBuilder, what string) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build %s: %w", what, err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func (s *SQLite) stamp() string {
	return s.now().UTC().Format(timeLayout)
}
