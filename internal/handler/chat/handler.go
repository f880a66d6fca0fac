package chat

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/w3wg/crypto-sage/internal/model/chat"
	"github.com/w3wg/crypto-sage/internal/model/persona"
	chatService "github.com/w3wg/crypto-sage/internal/service/chat"
	"github.com/w3wg/crypto-sage/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	loop         *chatService.Loop
	personaStore persona.Store
}

// New 创建聊天处理器
func New(loop *chatService.Loop, personaStore persona.Store) *Handler {
	return &Handler{
		loop:         loop,
		personaStore: personaStore,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Route("/sessions/{sessionID}", func(s chi.Router) {
		s.Delete("/", h.handleDeleteSession)
		s.Put("/credential", h.handleSetCredential)
		s.Post("/open", h.handleOpen)
		s.Get("/messages", h.handleListMessages)
		s.Post("/messages", h.handleSubmit)
	})
}

type transcriptResponse struct {
	SessionID string         `json:"sessionId"`
	Messages  []chat.Message `json:"messages"`
}

// handleCreateSession 创建会话，默认绑定 Crypto Sage 角色
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonaID string `json:"personaId"`
	}

	// 空请求体（包括分块传输的空体）使用默认角色
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.PersonaID == "" {
		payload.PersonaID = persona.DefaultID
	}

	p, ok := h.personaStore.FindByID(payload.PersonaID)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "persona not found")
		return
	}

	session, err := h.loop.Sessions().CreateSession(r.Context(), p.ID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"session": session,
		"persona": p,
	})
}

// handleDeleteSession 丢弃会话，页面关闭或刷新时调用
func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.loop.Sessions().DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		RespondLoopError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetCredential 保存会话凭证并返回提示横幅
func (h *Handler) handleSetCredential(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Credential string `json:"credential"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	banner, err := h.loop.StoreCredential(r.Context(), chi.URLParam(r, "sessionID"), payload.Credential)
	if err != nil {
		RespondLoopError(w, err, nil)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"banner": banner})
}

// handleOpen 首次进入 Model 视图时生成开场白
func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	messages, err := h.loop.Open(r.Context(), sessionID)
	if err != nil {
		RespondLoopError(w, err, h.bannerFor(r, sessionID))
		return
	}
	utils.RespondJSON(w, http.StatusOK, transcriptResponse{SessionID: sessionID, Messages: messages})
}

// handleListMessages 返回可见的对话记录
func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	messages, err := h.loop.Visible(r.Context(), sessionID)
	if err != nil {
		RespondLoopError(w, err, nil)
		return
	}
	utils.RespondJSON(w, http.StatusOK, transcriptResponse{SessionID: sessionID, Messages: messages})
}

// handleSubmit 追加用户消息并同步请求模型回复
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	messages, err := h.loop.Submit(r.Context(), sessionID, payload.Content)
	if err != nil {
		RespondLoopError(w, err, h.bannerFor(r, sessionID))
		return
	}
	utils.RespondJSON(w, http.StatusOK, transcriptResponse{SessionID: sessionID, Messages: messages})
}

func (h *Handler) bannerFor(r *http.Request, sessionID string) *chatService.Banner {
	banner, err := h.loop.Banner(r.Context(), sessionID)
	if err != nil {
		return nil
	}
	return &banner
}

// StatusFor maps chat loop errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, chatService.ErrCredentialMissing), errors.Is(err, chatService.ErrCredentialInvalid):
		return http.StatusPreconditionFailed
	case errors.Is(err, chatService.ErrEmptyMessage), errors.Is(err, chatService.ErrPersonaRequired):
		return http.StatusBadRequest
	case errors.Is(err, chatService.ErrNotOpened):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// RespondLoopError 将聊天循环的错误写成 JSON，凭证问题附带提示横幅
func RespondLoopError(w http.ResponseWriter, err error, banner *chatService.Banner) {
	status := StatusFor(err)
	body := map[string]any{"error": err.Error()}
	if status == http.StatusPreconditionFailed && banner != nil {
		body["banner"] = banner
	}
	utils.RespondJSON(w, status, body)
}
