package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davrell/codecity/internal/models"
)

func TestAppendPreservesInsertionOrder(t *testing.T) {
	log := NewLog()
	log.Append(models.NewMessage(models.SenderUser, "first", models.CategoryCommand))
	log.Append(models.NewMessage(models.SenderAI, "second", models.CategoryAIResponse))
	log.Append(models.NewMessage(models.SenderSystem, "third", models.CategorySystem))

	snapshot := log.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "first", snapshot[0].Text)
	assert.Equal(t, "second", snapshot[1].Text)
	assert.Equal(t, "third", snapshot[2].Text)
}

func TestClearLeavesExactlyOneSyntheticMessage(t *testing.T) {
	log := NewLog()
	log.Append(models.NewMessage(models.SenderUser, "noise", models.CategoryCommand))
	log.Append(models.NewMessage(models.SenderAI, "more noise", models.CategoryAIResponse))

	log.Clear()

	snapshot := log.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, ClearedText, snapshot[0].Text)
	assert.Equal(t, models.SenderSystem, snapshot[0].Sender)
	assert.Equal(t, models.CategorySystem, snapshot[0].Category)
}

func TestClearOnEmptyLog(t *testing.T) {
	log := NewLog()

	log.Clear()

	require.Equal(t, 1, log.Len())
}

func TestSnapshotIsDefensiveCopy(t *testing.T) {
	log := NewLog()
	log.Append(models.NewMessage(models.SenderUser, "original", models.CategoryCommand))

	snapshot := log.Snapshot()
	snapshot[0].Text = "tampered"

	assert.Equal(t, "original", log.Snapshot()[0].Text)
}

func TestRestoreReplacesContents(t *testing.T) {
	log := NewLog()
	log.Append(models.NewMessage(models.SenderUser, "doomed", models.CategoryCommand))

	saved := []models.Message{
		models.NewMessage(models.SenderSystem, "from the vault", models.CategorySystem),
	}
	log.Restore(saved)

	snapshot := log.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "from the vault", snapshot[0].Text)
}

func TestOnAppendNotifies(t *testing.T) {
	log := NewLog()
	var seen []string
	log.OnAppend(func(msg models.Message) {
		seen = append(seen, msg.Text)
	})

	log.Append(models.NewMessage(models.SenderUser, "hello", models.CategoryCommand))
	log.Clear()

	require.Len(t, seen, 2)
	assert.Equal(t, "hello", seen[0])
	assert.Equal(t, ClearedText, seen[1])
}
