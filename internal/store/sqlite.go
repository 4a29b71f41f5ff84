package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/painterhq/painter/internal/typeid"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
    id         TEXT PRIMARY KEY,
    doc_id     TEXT NOT NULL,
    version    INTEGER NOT NULL,
    document   BLOB NOT NULL,
    thumbnail  BLOB,
    created_at TEXT NOT NULL,
    UNIQUE (doc_id, version)
);
`

// SQLite is the embedded snapshot store used for local autosave.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Put(ctx context.Context, docID string, document, thumbnail []byte) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var current int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM snapshots WHERE doc_id = ?`, docID,
	).Scan(&current); err != nil {
		return 0, fmt.Errorf("current version: %w", err)
	}

	version := current + 1
	_, err = tx.ExecContext(ctx, `
        INSERT INTO snapshots (id, doc_id, version, document, thumbnail, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `, typeid.NewSnapshotID(), docID, version, document, thumbnail, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("create snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return version, nil
}

func (s *SQLite) Latest(ctx context.Context, docID string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, doc_id, version, document, thumbnail, created_at
        FROM snapshots
        WHERE doc_id = ?
        ORDER BY version DESC
        LIMIT 1
    `, docID)
	return scanSQLite(row)
}

func (s *SQLite) Get(ctx context.Context, docID string, version int) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, doc_id, version, document, thumbnail, created_at
        FROM snapshots
        WHERE doc_id = ? AND version = ?
    `, docID, version)
	return scanSQLite(row)
}

func (s *SQLite) List(ctx context.Context, docID string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, doc_id, version, created_at
        FROM snapshots
        WHERE doc_id = ?
        ORDER BY version DESC
    `, docID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	out := []Snapshot{}
	for rows.Next() {
		var snap Snapshot
		var created string
		if err := rows.Scan(&snap.ID, &snap.DocID, &snap.Version, &created); err != nil {
			return nil, err
		}
		if snap.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("snapshot %s created_at: %w", snap.ID, err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func scanSQLite(row *sql.Row) (Snapshot, error) {
	var snap Snapshot
	var created string
	if err := row.Scan(&snap.ID, &snap.DocID, &snap.Version, &snap.Document, &snap.Thumbnail, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s created_at: %w", snap.ID, err)
	}
	snap.CreatedAt = t
	return snap, nil
}
