package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorageRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	snap := testSnapshot("id-1", "checkpoint", time.Now().UTC())
	require.NoError(t, s.SaveSnapshot(ctx, snap))

	got, err := s.GetSnapshot(ctx, "id-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "checkpoint", got.Name)
	assert.Equal(t, "bleak", got.ProfileID)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "saved state", got.Messages[0].Text)
	assert.WithinDuration(t, snap.CreatedAt, got.CreatedAt, time.Second)
}

func TestSQLiteStorageListMostRecentFirst(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	base := time.Now().UTC()

	require.NoError(t, s.SaveSnapshot(ctx, testSnapshot("old", "old", base.Add(-time.Hour))))
	require.NoError(t, s.SaveSnapshot(ctx, testSnapshot("new", "new", base)))

	snapshots, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, "new", snapshots[0].ID)
	assert.Equal(t, "old", snapshots[1].ID)
}

func TestSQLiteStorageUpsert(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, testSnapshot("id-1", "first", time.Now().UTC())))
	require.NoError(t, s.SaveSnapshot(ctx, testSnapshot("id-1", "second", time.Now().UTC())))

	snapshots, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "second", snapshots[0].Name)
}

func TestSQLiteStorageDeleteAndMissing(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, testSnapshot("id-1", "doomed", time.Now().UTC())))
	require.NoError(t, s.DeleteSnapshot(ctx, "id-1"))

	got, err := s.GetSnapshot(ctx, "id-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
