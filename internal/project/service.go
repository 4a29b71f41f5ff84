// Package project exposes stored drawings and their snapshot history.
package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/painterhq/painter/internal/document"
	"github.com/painterhq/painter/internal/store"
	"github.com/painterhq/painter/internal/typeid"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrInvalidDocument = errors.New("invalid document")
	ErrInvalidID       = errors.New("invalid document id")
)

type Service struct {
	store     store.Store
	thumbSize int
}

func NewService(st store.Store, thumbSize int) *Service {
	if thumbSize <= 0 {
		thumbSize = store.ThumbnailSize
	}
	return &Service{store: st, thumbSize: thumbSize}
}

// Create validates a .painter document and stores it as the next snapshot
// of docID, together with a rendered thumbnail.
func (s *Service) Create(ctx context.Context, docID string, data []byte) (int, error) {
	if err := validateID(docID); err != nil {
		return 0, err
	}
	sc, err := document.Decode(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	thumb, err := store.Thumbnail(sc, s.thumbSize)
	if err != nil {
		return 0, fmt.Errorf("create thumbnail: %w", err)
	}
	version, err := s.store.Put(ctx, docID, data, thumb)
	if err != nil {
		return 0, fmt.Errorf("create snapshot: %w", err)
	}
	return version, nil
}

func (s *Service) List(ctx context.Context, docID string) ([]store.Snapshot, error) {
	if err := validateID(docID); err != nil {
		return nil, err
	}
	snaps, err := s.store.List(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	if len(snaps) == 0 {
		return nil, ErrNotFound
	}
	return snaps, nil
}

// GetSnapshot returns a stored snapshot. Version 0 means the latest one.
func (s *Service) GetSnapshot(ctx context.Context, docID string, version int) (store.Snapshot, error) {
	if err := validateID(docID); err != nil {
		return store.Snapshot{}, err
	}
	var (
		snap store.Snapshot
		err  error
	)
	if version == 0 {
		snap, err = s.store.Latest(ctx, docID)
	} else {
		snap, err = s.store.Get(ctx, docID, version)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Snapshot{}, ErrNotFound
		}
		return store.Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	return snap, nil
}

// GetLatestSnapshot returns the encoded document of the newest snapshot.
func (s *Service) GetLatestSnapshot(ctx context.Context, docID string) ([]byte, error) {
	snap, err := s.GetSnapshot(ctx, docID, 0)
	if err != nil {
		return nil, err
	}
	return snap.Document, nil
}

// Thumbnail returns the PNG thumbnail of a snapshot, rendering it when the
// snapshot was stored without one.
func (s *Service) Thumbnail(ctx context.Context, docID string, version int) ([]byte, error) {
	snap, err := s.GetSnapshot(ctx, docID, version)
	if err != nil {
		return nil, err
	}
	if len(snap.Thumbnail) > 0 {
		return snap.Thumbnail, nil
	}
	sc, err := document.Decode(snap.Document)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %d: %w", snap.Version, err)
	}
	return store.Thumbnail(sc, s.thumbSize)
}

func validateID(docID string) error {
	if err := typeid.Validate(docID, typeid.PrefixDocument); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	return nil
}
