package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w3wg/crypto-sage/internal/config"
	"github.com/w3wg/crypto-sage/internal/model/chat"
	personaModel "github.com/w3wg/crypto-sage/internal/model/persona"
	chatService "github.com/w3wg/crypto-sage/internal/service/chat"
	"github.com/w3wg/crypto-sage/internal/view"
)

type staticCompleter struct{}

func (staticCompleter) Complete(context.Context, string, []chat.Message) (string, error) {
	return "hello", nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	personas := personaModel.NewMemoryStore(personaModel.Seed())
	loop := chatService.NewLoop(chatService.NewService(), staticCompleter{}, personas, chatService.CredentialPolicy{Prefix: "sk-", Length: 164})
	renderer, err := view.New(view.NewMarkdown())
	require.NoError(t, err)

	return NewRouter(personas, loop, renderer, config.UIConfig{Title: "Crypto Expert", SidebarLabel: "W3WG"})
}

func TestRouterServesShellAndAPI(t *testing.T) {
	r := newTestRouter(t)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, strings.HasPrefix(resp.Header().Get("Content-Type"), "text/html"))

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/personas", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), personaModel.DefaultID)
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterPreflight(t *testing.T) {
	r := newTestRouter(t)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodOptions, "/api/sessions", nil))

	assert.Equal(t, http.StatusNoContent, resp.Code)
}

var shellSession = regexp.MustCompile(`const sessionId = "([0-9a-f-]+)"`)

func TestShellSessionDrivesWebSocketLoop(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body := new(strings.Builder)
	_, err = io.Copy(body, resp.Body)
	require.NoError(t, err)
	m := shellSession.FindStringSubmatch(body.String())
	require.Len(t, m, 2)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws/"+m[1], nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	readFrame := func() map[string]any {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var frame map[string]any
		require.NoError(t, conn.ReadJSON(&frame))
		return frame
	}

	assert.Equal(t, "render", readFrame()["type"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "credential", "data": "sk-" + strings.Repeat("z", 161)}))
	assert.Equal(t, "render", readFrame()["type"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "open"}))
	frame := readFrame()
	require.Equal(t, "render", frame["type"])
	data := frame["data"].(map[string]any)
	assert.Len(t, data["messages"], 1)
	assert.Contains(t, data["html"], "hello")
}
