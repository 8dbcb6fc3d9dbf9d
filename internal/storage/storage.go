package storage

import (
	"context"

	"github.com/davrell/codecity/internal/models"
)

// Storage persists console snapshots. Records are keyed by an opaque unique
// id; ListSnapshots returns most-recent-first by creation time.
type Storage interface {
	SaveSnapshot(ctx context.Context, snap *models.Snapshot) error
	ListSnapshots(ctx context.Context) ([]*models.Snapshot, error)
	GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error)
	DeleteSnapshot(ctx context.Context, id string) error
	Close() error
}
