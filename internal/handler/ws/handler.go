package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatHandler "github.com/w3wg/crypto-sage/internal/handler/chat"
	"github.com/w3wg/crypto-sage/internal/model/chat"
	chatService "github.com/w3wg/crypto-sage/internal/service/chat"
	"github.com/w3wg/crypto-sage/internal/view"
	"github.com/w3wg/crypto-sage/pkg/log"
)

const (
	defaultPongWait   = 60 * time.Second
	defaultPingPeriod = 54 * time.Second
	writeWait         = 10 * time.Second

	// 补全进行中最多排队的入站帧数
	frameQueueSize = 16
)

// Handler WebSocket 聊天处理器，每个连接内的帧按到达顺序依次处理
type Handler struct {
	loop       *chatService.Loop
	renderer   *view.Renderer
	upgrader   websocket.Upgrader
	pongWait   time.Duration
	pingPeriod time.Duration
}

// New 创建WebSocket处理器
func New(loop *chatService.Loop, renderer *view.Renderer) *Handler {
	return &Handler{
		loop:     loop,
		renderer: renderer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		pongWait:   defaultPongWait,
		pingPeriod: defaultPingPeriod,
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

const (
	frameCredential = "credential"
	frameOpen       = "open"
	frameMessage    = "message"

	frameRender = "render"
	frameError  = "error"
)

type inboundFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type outgoingFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

type renderData struct {
	Banner   chatService.Banner `json:"banner"`
	Messages []chat.Message     `json:"messages"`
	HTML     string             `json:"html"`
}

type errorData struct {
	Message string              `json:"message"`
	Status  int                 `json:"status"`
	Banner  *chatService.Banner `json:"banner,omitempty"`
}

// conn 串行化写操作，ping 走 WriteControl
type conn struct {
	ws        *websocket.Conn
	sessionID string
	mu        sync.Mutex
}

func (c *conn) send(frameType string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	err := c.ws.WriteJSON(outgoingFrame{
		Type:      frameType,
		SessionID: c.sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		log.Warnw("websocket write failed", "session", c.sessionID, "error", err)
	}
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.loop.Sessions().GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnw("websocket upgrade failed", "session", sessionID, "error", err)
		return
	}
	defer ws.Close()

	log.Infow("websocket connected", "session", sessionID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = ws.SetReadDeadline(time.Now().Add(h.pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	c := &conn{ws: ws, sessionID: sessionID}
	go h.pingLoop(ctx, c)

	h.render(ctx, c, "")

	// 读取独立运行，补全耗时再长也能持续处理 pong；帧交给下面的循环按序执行
	frames := make(chan inboundFrame, frameQueueSize)
	go h.readLoop(ctx, cancel, ws, sessionID, frames)

	for frame := range frames {
		h.handleFrame(ctx, c, frame)
	}
}

// readLoop 读取入站帧直到连接关闭，关闭时取消进行中的补全
func (h *Handler) readLoop(ctx context.Context, cancel context.CancelFunc, ws *websocket.Conn, sessionID string, frames chan<- inboundFrame) {
	defer close(frames)
	defer cancel()

	for {
		var frame inboundFrame
		if err := ws.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnw("websocket read failed", "session", sessionID, "error", err)
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(h.pongWait))

		select {
		case frames <- frame:
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) handleFrame(ctx context.Context, c *conn, frame inboundFrame) {
	var err error
	switch frame.Type {
	case frameCredential:
		var credential string
		if err = json.Unmarshal(frame.Data, &credential); err != nil {
			c.send(frameError, errorData{Message: "invalid credential payload", Status: http.StatusBadRequest})
			return
		}
		_, err = h.loop.StoreCredential(ctx, c.sessionID, credential)
	case frameOpen:
		_, err = h.loop.Open(ctx, c.sessionID)
	case frameMessage:
		var content string
		if err = json.Unmarshal(frame.Data, &content); err != nil {
			c.send(frameError, errorData{Message: "invalid message payload", Status: http.StatusBadRequest})
			return
		}
		_, err = h.loop.Submit(ctx, c.sessionID, content)
	default:
		c.send(frameError, errorData{Message: "unknown frame type: " + frame.Type, Status: http.StatusBadRequest})
		return
	}

	if err != nil {
		status := chatHandler.StatusFor(err)
		data := errorData{Message: err.Error(), Status: status}
		panelError := err.Error()
		if status == http.StatusPreconditionFailed {
			// 横幅已经说明了凭证问题
			panelError = ""
			if banner, bErr := h.loop.Banner(ctx, c.sessionID); bErr == nil {
				data.Banner = &banner
			}
		}
		c.send(frameError, data)
		if status != http.StatusNotFound {
			h.render(ctx, c, panelError)
		}
		return
	}
	h.render(ctx, c, "")
}

func (h *Handler) render(ctx context.Context, c *conn, panelError string) {
	banner, err := h.loop.Banner(ctx, c.sessionID)
	if err != nil {
		c.send(frameError, errorData{Message: err.Error(), Status: chatHandler.StatusFor(err)})
		return
	}
	messages, err := h.loop.Visible(ctx, c.sessionID)
	if err != nil {
		c.send(frameError, errorData{Message: err.Error(), Status: chatHandler.StatusFor(err)})
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Panel(&buf, "model", view.PanelData{Banner: banner, Messages: messages, Error: panelError}); err != nil {
		log.Error("failed to render model view", err)
	}

	c.send(frameRender, renderData{Banner: banner, Messages: messages, HTML: buf.String()})
}

// pingLoop 定期发送ping消息
func (h *Handler) pingLoop(ctx context.Context, c *conn) {
	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
