package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/painterhq/painter/internal/typeid"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS painter_snapshots (
    id         TEXT PRIMARY KEY,
    doc_id     TEXT NOT NULL,
    version    INTEGER NOT NULL,
    document   BYTEA NOT NULL,
    thumbnail  BYTEA,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (doc_id, version)
);
`

// Postgres is the shared snapshot store for a multi-instance server.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPool connects to databaseURL and checks the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := NewPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Put(ctx context.Context, docID string, document, thumbnail []byte) (int, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serializes writers of the same document until commit.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, docID); err != nil {
		return 0, fmt.Errorf("lock document: %w", err)
	}

	var current int
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM painter_snapshots WHERE doc_id = $1`, docID,
	).Scan(&current); err != nil {
		return 0, fmt.Errorf("current version: %w", err)
	}

	version := current + 1
	_, err = tx.Exec(ctx, `
        INSERT INTO painter_snapshots (id, doc_id, version, document, thumbnail)
        VALUES ($1, $2, $3, $4, $5)
    `, typeid.NewSnapshotID(), docID, version, document, thumbnail)
	if err != nil {
		return 0, fmt.Errorf("create snapshot: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return version, nil
}

func (p *Postgres) Latest(ctx context.Context, docID string) (Snapshot, error) {
	row := p.pool.QueryRow(ctx, `
        SELECT id, doc_id, version, document, thumbnail, created_at
        FROM painter_snapshots
        WHERE doc_id = $1
        ORDER BY version DESC
        LIMIT 1
    `, docID)
	return scanPostgres(row)
}

func (p *Postgres) Get(ctx context.Context, docID string, version int) (Snapshot, error) {
	row := p.pool.QueryRow(ctx, `
        SELECT id, doc_id, version, document, thumbnail, created_at
        FROM painter_snapshots
        WHERE doc_id = $1 AND version = $2
    `, docID, version)
	return scanPostgres(row)
}

func (p *Postgres) List(ctx context.Context, docID string) ([]Snapshot, error) {
	rows, err := p.pool.Query(ctx, `
        SELECT id, doc_id, version, created_at
        FROM painter_snapshots
        WHERE doc_id = $1
        ORDER BY version DESC
    `, docID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	out := []Snapshot{}
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.DocID, &snap.Version, &snap.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func scanPostgres(row pgx.Row) (Snapshot, error) {
	var snap Snapshot
	err := row.Scan(&snap.ID, &snap.DocID, &snap.Version, &snap.Document, &snap.Thumbnail, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, err
	}
	return snap, nil
}
