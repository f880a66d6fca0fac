package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w3wg/crypto-sage/internal/model/chat"
	"github.com/w3wg/crypto-sage/internal/model/persona"
	chatservice "github.com/w3wg/crypto-sage/internal/service/chat"
	"github.com/w3wg/crypto-sage/internal/view"
)

type scriptedCompleter struct {
	mu  sync.Mutex
	err error
}

func (s *scriptedCompleter) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *scriptedCompleter) Complete(_ context.Context, _ string, transcript []chat.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return "**reply** " + string(transcript[len(transcript)-1].Role), nil
}

type received struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func setup(t *testing.T, completer chatservice.Completer, opts ...func(*Handler)) (*httptest.Server, string) {
	t.Helper()

	sessions := chatservice.NewService()
	loop := chatservice.NewLoop(sessions, completer, persona.NewMemoryStore(persona.Seed()), chatservice.CredentialPolicy{Prefix: "sk-", Length: 164})
	renderer, err := view.New(view.NewMarkdown())
	require.NoError(t, err)

	h := New(loop, renderer)
	for _, opt := range opts {
		opt(h)
	}
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	session, err := sessions.CreateSession(context.Background(), persona.DefaultID)
	require.NoError(t, err)
	return srv, session.ID
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) received {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame received
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func readRender(t *testing.T, conn *websocket.Conn) renderData {
	t.Helper()

	frame := read(t, conn)
	require.Equal(t, frameRender, frame.Type, string(frame.Data))
	var data renderData
	require.NoError(t, json.Unmarshal(frame.Data, &data))
	return data
}

func send(t *testing.T, conn *websocket.Conn, frameType string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(inboundFrame{Type: frameType, Data: payload}))
}

func TestConversationOverWebSocket(t *testing.T) {
	srv, sessionID := setup(t, &scriptedCompleter{})
	conn := dial(t, srv, sessionID)

	initial := readRender(t, conn)
	assert.Equal(t, chatservice.BannerWarning, initial.Banner.Level)
	assert.Empty(t, initial.Messages)

	send(t, conn, frameCredential, "sk-"+strings.Repeat("a", 161))
	assert.Equal(t, chatservice.BannerSuccess, readRender(t, conn).Banner.Level)

	send(t, conn, frameOpen, nil)
	opened := readRender(t, conn)
	require.Len(t, opened.Messages, 1)
	assert.Equal(t, chat.RoleAssistant, opened.Messages[0].Role)

	send(t, conn, frameMessage, "What is Bitcoin?")
	replied := readRender(t, conn)
	require.Len(t, replied.Messages, 3)
	assert.Equal(t, chat.RoleUser, replied.Messages[1].Role)
	assert.Equal(t, chat.RoleAssistant, replied.Messages[2].Role)
	assert.Contains(t, replied.HTML, "<strong>reply</strong>")
	assert.Contains(t, replied.HTML, "What is Bitcoin?")
}

func TestMissingCredentialYieldsErrorFrame(t *testing.T) {
	srv, sessionID := setup(t, &scriptedCompleter{})
	conn := dial(t, srv, sessionID)
	readRender(t, conn)

	send(t, conn, frameOpen, nil)

	frame := read(t, conn)
	require.Equal(t, frameError, frame.Type)
	var data errorData
	require.NoError(t, json.Unmarshal(frame.Data, &data))
	assert.Equal(t, http.StatusPreconditionFailed, data.Status)
	require.NotNil(t, data.Banner)
	assert.Equal(t, "Please enter your OpenAI API token!", data.Banner.Text)
}

func TestRemoteFailureYieldsErrorFrame(t *testing.T) {
	completer := &scriptedCompleter{}
	srv, sessionID := setup(t, completer)
	conn := dial(t, srv, sessionID)
	readRender(t, conn)

	send(t, conn, frameCredential, "sk-"+strings.Repeat("a", 161))
	readRender(t, conn)
	send(t, conn, frameOpen, nil)
	readRender(t, conn)

	completer.fail(errors.New("upstream unavailable"))
	send(t, conn, frameMessage, "What is Bitcoin?")

	frame := read(t, conn)
	require.Equal(t, frameError, frame.Type)
	assert.Contains(t, string(frame.Data), "upstream unavailable")

	after := readRender(t, conn)
	assert.Len(t, after.Messages, 1)
	assert.Contains(t, after.HTML, "upstream unavailable")
}

type slowCompleter struct {
	delay time.Duration
}

func (s slowCompleter) Complete(ctx context.Context, _ string, _ []chat.Message) (string, error) {
	select {
	case <-time.After(s.delay):
		return "considered answer", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestSlowCompletionKeepsConnectionAlive(t *testing.T) {
	keepalive := func(h *Handler) {
		h.pongWait = 300 * time.Millisecond
		h.pingPeriod = 100 * time.Millisecond
	}
	srv, sessionID := setup(t, slowCompleter{delay: time.Second}, keepalive)
	conn := dial(t, srv, sessionID)
	readRender(t, conn)

	send(t, conn, frameCredential, "sk-"+strings.Repeat("a", 161))
	readRender(t, conn)

	send(t, conn, frameOpen, nil)
	opened := readRender(t, conn)
	require.Len(t, opened.Messages, 1)

	send(t, conn, frameMessage, "What is Bitcoin?")
	replied := readRender(t, conn)
	require.Len(t, replied.Messages, 3)
	assert.Equal(t, "considered answer", replied.Messages[2].Content)
}

func TestFramesQueuedDuringCompletionRunInOrder(t *testing.T) {
	srv, sessionID := setup(t, slowCompleter{delay: 200 * time.Millisecond})
	conn := dial(t, srv, sessionID)
	readRender(t, conn)

	send(t, conn, frameCredential, "sk-"+strings.Repeat("a", 161))
	send(t, conn, frameOpen, nil)
	send(t, conn, frameMessage, "first")
	send(t, conn, frameMessage, "second")

	var last renderData
	for i := 0; i < 4; i++ {
		last = readRender(t, conn)
	}
	require.Len(t, last.Messages, 5)
	assert.Equal(t, "first", last.Messages[1].Content)
	assert.Equal(t, "second", last.Messages[3].Content)
}

func TestUnknownFrameType(t *testing.T) {
	srv, sessionID := setup(t, &scriptedCompleter{})
	conn := dial(t, srv, sessionID)
	readRender(t, conn)

	send(t, conn, "config", nil)

	frame := read(t, conn)
	assert.Equal(t, frameError, frame.Type)
}

func TestUnknownSessionRejectsUpgrade(t *testing.T) {
	srv, _ := setup(t, &scriptedCompleter{})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
