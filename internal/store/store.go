// Package store keeps versioned snapshots of painter documents.
//
// A snapshot is the encoded .painter document plus a PNG thumbnail.
// Versions start at 1 and increase by one per document.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("snapshot not found")

type Snapshot struct {
	ID        string    `json:"id"`
	DocID     string    `json:"docId"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	Document  []byte    `json:"-"`
	Thumbnail []byte    `json:"-"`
}

type Store interface {
	// Put stores a new snapshot and returns its version.
	Put(ctx context.Context, docID string, document, thumbnail []byte) (int, error)
	Latest(ctx context.Context, docID string) (Snapshot, error)
	Get(ctx context.Context, docID string, version int) (Snapshot, error)
	// List returns snapshot metadata, newest first, without payloads.
	List(ctx context.Context, docID string) ([]Snapshot, error)
	Close() error
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// Open returns the store selected by driver. "none" keeps snapshots in
// memory only.
func Open(ctx context.Context, driver, sqlitePath, databaseURL string) (Store, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQLite(ctx, sqlitePath)
	case DriverPostgres:
		if databaseURL == "" {
			return nil, fmt.Errorf("store: postgres driver needs DATABASE_URL")
		}
		return OpenPostgres(ctx, databaseURL)
	case DriverNone, "":
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("store: unknown driver %q", driver)
}
