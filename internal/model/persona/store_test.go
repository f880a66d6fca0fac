package persona

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedContainsCryptoSage(t *testing.T) {
	store := NewMemoryStore(Seed())

	p, ok := store.FindByID(DefaultID)
	require.True(t, ok)
	assert.Equal(t, "Alex Nakamoto", p.Name)
	assert.Contains(t, p.Prompt, "The Crypto Sage")
}

func TestFindByIDMissing(t *testing.T) {
	store := NewMemoryStore(nil)

	_, ok := store.FindByID(DefaultID)
	assert.False(t, ok)
}

func TestPromptIsNotSerialized(t *testing.T) {
	data, err := json.Marshal(Seed()[0])
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Instructions :")
}

func TestListReturnsCopy(t *testing.T) {
	store := NewMemoryStore(Seed())

	items := store.List()
	items[0].Name = "someone else"

	p, _ := store.FindByID(DefaultID)
	assert.Equal(t, "Alex Nakamoto", p.Name)
}
