package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/painterhq/painter/internal/typeid"
)

// Memory is an in-process Store.
type Memory struct {
	mu   sync.Mutex
	docs map[string][]Snapshot
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]Snapshot)}
}

func (m *Memory) Put(_ context.Context, docID string, document, thumbnail []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	version := len(m.docs[docID]) + 1
	m.docs[docID] = append(m.docs[docID], Snapshot{
		ID:        typeid.NewSnapshotID(),
		DocID:     docID,
		Version:   version,
		CreatedAt: time.Now().UTC(),
		Document:  slices.Clone(document),
		Thumbnail: slices.Clone(thumbnail),
	})
	return version, nil
}

func (m *Memory) Latest(_ context.Context, docID string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snaps := m.docs[docID]
	if len(snaps) == 0 {
		return Snapshot{}, ErrNotFound
	}
	return snaps[len(snaps)-1], nil
}

func (m *Memory) Get(_ context.Context, docID string, version int) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snaps := m.docs[docID]
	if version < 1 || version > len(snaps) {
		return Snapshot{}, ErrNotFound
	}
	return snaps[version-1], nil
}

func (m *Memory) List(_ context.Context, docID string) ([]Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snaps := m.docs[docID]
	out := make([]Snapshot, len(snaps))
	for i, s := range snaps {
		s.Document, s.Thumbnail = nil, nil
		out[len(snaps)-1-i] = s
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
