package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davrell/codecity/internal/models"
)

func testSnapshot(id, name string, createdAt time.Time) *models.Snapshot {
	return &models.Snapshot{
		ID:        id,
		Name:      name,
		ProfileID: "bleak",
		Messages: []models.Message{
			models.NewMessage(models.SenderSystem, "saved state", models.CategorySystem),
		},
		CreatedAt: createdAt,
	}
}

func TestMemoryStorageRoundTrip(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	snap := testSnapshot("id-1", "checkpoint", time.Now())
	require.NoError(t, s.SaveSnapshot(ctx, snap))

	got, err := s.GetSnapshot(ctx, "id-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "checkpoint", got.Name)
	assert.Equal(t, "bleak", got.ProfileID)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "saved state", got.Messages[0].Text)
}

func TestMemoryStorageListMostRecentFirst(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, s.SaveSnapshot(ctx, testSnapshot("old", "old", base.Add(-time.Hour))))
	require.NoError(t, s.SaveSnapshot(ctx, testSnapshot("new", "new", base)))
	require.NoError(t, s.SaveSnapshot(ctx, testSnapshot("mid", "mid", base.Add(-time.Minute))))

	snapshots, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snapshots, 3)
	assert.Equal(t, "new", snapshots[0].ID)
	assert.Equal(t, "mid", snapshots[1].ID)
	assert.Equal(t, "old", snapshots[2].ID)
}

func TestMemoryStorageGetMissing(t *testing.T) {
	s := NewMemoryStorage()

	got, err := s.GetSnapshot(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStorageDelete(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, testSnapshot("id-1", "doomed", time.Now())))
	require.NoError(t, s.DeleteSnapshot(ctx, "id-1"))

	got, err := s.GetSnapshot(ctx, "id-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStorageSaveCopiesMessages(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	snap := testSnapshot("id-1", "checkpoint", time.Now())
	require.NoError(t, s.SaveSnapshot(ctx, snap))
	snap.Messages[0].Text = "tampered"

	got, err := s.GetSnapshot(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "saved state", got.Messages[0].Text)
}
