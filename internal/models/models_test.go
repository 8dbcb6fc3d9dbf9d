package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindProfile(t *testing.T) {
	p, ok := FindProfile("bleak")
	require.True(t, ok)
	assert.Equal(t, "Bleak", p.DisplayName)

	_, ok = FindProfile("nobody")
	assert.False(t, ok)
}

func TestProfileIDsMatchFixedSet(t *testing.T) {
	ids := ProfileIDs()
	require.Len(t, ids, 3)
	assert.Equal(t, []string{"bleak", "oracle", "warden"}, ids)
}

func TestAskAIFallbackCarriesRawText(t *testing.T) {
	res := AskAIFallback("what is the loom")

	assert.Equal(t, IntentAskAI, res.Intent)
	assert.Equal(t, "what is the loom", res.Param("query"))
	assert.Equal(t, "general", res.Nuance)
	assert.False(t, res.NeedsClarification)
}

func TestNewMessageStampsUniqueIDs(t *testing.T) {
	a := NewMessage(SenderUser, "one", CategoryCommand)
	b := NewMessage(SenderUser, "two", CategoryCommand)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEmpty(t, a.Timestamp)
}

func TestConceptualScriptAllowListSize(t *testing.T) {
	assert.Len(t, ConceptualScripts, 11)
	assert.Len(t, SnapshotActions, 2)
}

func TestParamOnNilMap(t *testing.T) {
	var res ClassificationResult
	assert.Empty(t, res.Param("query"))
}
