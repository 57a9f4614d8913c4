package results

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// CatalogFileName is the catalog database file inside the results directory.
const CatalogFileName = "catalog.db"

// CatalogSchemaVersion is the current catalog schema version.
const CatalogSchemaVersion = 1

const catalogSchemaV1 = `
CREATE TABLE IF NOT EXISTS artifacts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    kind TEXT NOT NULL,
    p_index INTEGER NOT NULL,
    batch_label TEXT NOT NULL,
    path TEXT NOT NULL UNIQUE,
    checksum TEXT NOT NULL,
    key_count INTEGER NOT NULL,
    run_count INTEGER NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_artifacts_kind_label ON artifacts(kind, batch_label);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// Entry is one catalog row. PIndex is -1 for consolidated artifacts.
type Entry struct {
	ID         int64
	Kind       string
	PIndex     int
	BatchLabel string
	Path       string
	Checksum   string
	Keys       int
	Runs       int
	CreatedAt  time.Time
}

// Catalog records every results artifact written, so a consolidation can find
// its inputs without scanning the results directory.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens (or creates) the catalog database at path.
func OpenCatalog(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := initCatalogSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

func initCatalogSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, catalogSchemaV1); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		CatalogSchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return tx.Commit()
}

// Record inserts e, replacing any earlier row for the same path. It returns
// the row id.
func (c *Catalog) Record(ctx context.Context, e Entry) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO artifacts (kind, p_index, batch_label, path, checksum, key_count, run_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			kind = excluded.kind,
			p_index = excluded.p_index,
			batch_label = excluded.batch_label,
			checksum = excluded.checksum,
			key_count = excluded.key_count,
			run_count = excluded.run_count,
			created_at = excluded.created_at`,
		e.Kind, e.PIndex, e.BatchLabel, e.Path, e.Checksum, e.Keys, e.Runs,
		e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to record artifact %s: %w", e.Path, err)
	}

	var id int64
	if err := c.db.QueryRowContext(ctx, `SELECT id FROM artifacts WHERE path = ?`, e.Path).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to read artifact id: %w", err)
	}
	return id, nil
}

// List returns the artifacts of kind with batch label, ordered by p-index.
// An empty kind or label matches everything.
func (c *Catalog) List(ctx context.Context, kind, label string) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, kind, p_index, batch_label, path, checksum, key_count, run_count, created_at
		FROM artifacts
		WHERE (? = '' OR kind = ?) AND (? = '' OR batch_label = ?)
		ORDER BY p_index, id`,
		kind, kind, label, label)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Kind, &e.PIndex, &e.BatchLabel, &e.Path,
			&e.Checksum, &e.Keys, &e.Runs, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("artifact %d: bad created_at %q: %w", e.ID, createdAt, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the catalog database.
func (c *Catalog) Close() error {
	return c.db.Close()
}
