package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/powermap/internal/roster"
)

// storeSchema is executed on every open; IF NOT EXISTS keeps it idempotent.
// Row order (id) preserves import order, which fixes first-seen categories.
const storeSchema = `
CREATE TABLE IF NOT EXISTS records (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL,
    category    TEXT NOT NULL DEFAULT '',
    grp         TEXT NOT NULL DEFAULT '',
    weight      REAL NOT NULL DEFAULT 0,
    imported_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(name, grp)
);
`

// Store keeps raw roster records in a local SQLite database in WAL mode.
// It holds records only, never graphs or scores.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the database at path.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("source: open store: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("source: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("source: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("source: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Import upserts records in a single transaction. A record with the same
// (name, group) as an existing row replaces its category and weight but
// keeps its original position.
func (s *Store) Import(ctx context.Context, recs []roster.Record) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("source: begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	const q = `
		INSERT INTO records (name, category, grp, weight)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name, grp) DO UPDATE SET
			category = excluded.category,
			weight   = excluded.weight`

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("source: prepare import: %w", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.Name, r.Category, r.Group, r.Weight); err != nil {
			return 0, fmt.Errorf("source: import %q/%q: %w", r.Name, r.Group, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("source: commit import: %w", err)
	}
	return len(recs), nil
}

// Records returns every stored record in import order.
func (s *Store) Records(ctx context.Context) ([]roster.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, category, grp, weight FROM records ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("source: query records: %w", err)
	}
	defer rows.Close()

	var recs []roster.Record
	for rows.Next() {
		var r roster.Record
		if err := rows.Scan(&r.Name, &r.Category, &r.Group, &r.Weight); err != nil {
			return nil, fmt.Errorf("source: scan record: %w", err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("source: iterate records: %w", err)
	}
	return recs, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&n); err != nil {
		return 0, fmt.Errorf("source: count records: %w", err)
	}
	return n, nil
}

// Reset deletes every stored record.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return fmt.Errorf("source: reset records: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
