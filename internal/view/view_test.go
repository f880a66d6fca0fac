package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w3wg/crypto-sage/internal/model/chat"
	"github.com/w3wg/crypto-sage/internal/model/persona"
	chatservice "github.com/w3wg/crypto-sage/internal/service/chat"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(NewMarkdown())
	require.NoError(t, err)
	return r
}

func TestPanelModelHidesSystemPersona(t *testing.T) {
	r := newRenderer(t)
	var buf bytes.Buffer

	err := r.Panel(&buf, "model", PanelData{
		Persona: persona.Seed()[0],
		Banner:  chatservice.Banner{Level: chatservice.BannerSuccess},
		Messages: []chat.Message{
			{Role: chat.RoleSystem, Content: "SECRET PERSONA PROMPT"},
			{Role: chat.RoleAssistant, Content: "Welcome, I am **Alex**."},
			{Role: chat.RoleUser, Content: "What is Bitcoin?"},
		},
	})
	require.NoError(t, err)

	html := buf.String()
	assert.NotContains(t, html, "SECRET PERSONA PROMPT")
	assert.Contains(t, html, "<strong>Alex</strong>")
	assert.Contains(t, html, "What is Bitcoin?")
	assert.Equal(t, 2, strings.Count(html, `class="message `))
}

func TestPanelModelWarningDisablesInput(t *testing.T) {
	r := newRenderer(t)
	var buf bytes.Buffer

	err := r.Panel(&buf, "model", PanelData{
		Banner: chatservice.Banner{Level: chatservice.BannerWarning, Text: "Please enter your OpenAI API token!"},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Please enter your OpenAI API token!")
	assert.Contains(t, buf.String(), "disabled")
}

func TestPanelUnknownView(t *testing.T) {
	r := newRenderer(t)

	err := r.Panel(&bytes.Buffer{}, "admin", PanelData{})
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestShellEmbedsSessionAndMenu(t *testing.T) {
	r := newRenderer(t)
	var buf bytes.Buffer

	err := r.Shell(&buf, ShellData{
		Title:        "Crypto Expert",
		SidebarLabel: "W3WG",
		SessionID:    "abc-123",
		Banner:       chatservice.Banner{Level: chatservice.BannerWarning, Text: "Please enter your OpenAI API token!"},
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `"abc-123"`)
	assert.Contains(t, html, `type="password"`)
	assert.Contains(t, html, `"/api/ws/"`)
	assert.NotContains(t, html, "/open")
	for _, item := range Menu {
		assert.Contains(t, html, item.Label)
	}
}

func TestMarkdownSanitizesScripts(t *testing.T) {
	out := string(NewMarkdown().Render("hi <script>alert(1)</script>"))
	assert.NotContains(t, out, "<script>")
}
