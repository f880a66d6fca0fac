package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisibleSkipsSystemEntries(t *testing.T) {
	transcript := []Message{
		{Role: RoleSystem, Content: "persona"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleUser, Content: "What is Bitcoin?"},
		{Role: RoleAssistant, Content: "A decentralized currency."},
	}

	visible := Visible(transcript)

	assert.Len(t, visible, 3)
	for _, msg := range visible {
		assert.NotEqual(t, RoleSystem, msg.Role)
	}
	assert.Equal(t, "hello", visible[0].Content)
}

func TestVisibleEmptyTranscript(t *testing.T) {
	assert.Empty(t, Visible(nil))
}
