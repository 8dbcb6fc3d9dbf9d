package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/davrell/codecity/internal/models"
)

type MemoryStorage struct {
	mu        sync.RWMutex
	snapshots map[string]*models.Snapshot
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		snapshots: make(map[string]*models.Snapshot),
	}
}

func (s *MemoryStorage) SaveSnapshot(ctx context.Context, snap *models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *snap
	stored.Messages = append([]models.Message(nil), snap.Messages...)
	s.snapshots[snap.ID] = &stored
	return nil
}

func (s *MemoryStorage) ListSnapshots(ctx context.Context) ([]*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStorage) GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if snap, exists := s.snapshots[id]; exists {
		return snap, nil
	}
	return nil, nil
}

func (s *MemoryStorage) DeleteSnapshot(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, id)
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
