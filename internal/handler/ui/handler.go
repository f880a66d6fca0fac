package ui

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/w3wg/crypto-sage/internal/config"
	"github.com/w3wg/crypto-sage/internal/model/persona"
	chatService "github.com/w3wg/crypto-sage/internal/service/chat"
	"github.com/w3wg/crypto-sage/internal/view"
	"github.com/w3wg/crypto-sage/pkg/log"
	"github.com/w3wg/crypto-sage/pkg/utils"
)

// Handler 页面外壳与各视图片段的HTTP处理器
type Handler struct {
	loop     *chatService.Loop
	personas persona.Store
	renderer *view.Renderer
	cfg      config.UIConfig
}

// New 创建页面处理器
func New(loop *chatService.Loop, personas persona.Store, renderer *view.Renderer, cfg config.UIConfig) *Handler {
	return &Handler{
		loop:     loop,
		personas: personas,
		renderer: renderer,
		cfg:      cfg,
	}
}

// RegisterRoutes 注册页面路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleShell)
	r.Get("/views/{view}", h.handleView)
}

// handleShell 每次加载页面都会创建新的会话，刷新即重置对话
func (h *Handler) handleShell(w http.ResponseWriter, r *http.Request) {
	session, err := h.loop.Sessions().CreateSession(r.Context(), persona.DefaultID)
	if err != nil {
		utils.RespondHTML(w, http.StatusInternalServerError, errorFragment(err.Error()))
		return
	}
	p, _ := h.personas.FindByID(session.PersonaID)

	banner, err := h.loop.Banner(r.Context(), session.ID)
	if err != nil {
		utils.RespondHTML(w, http.StatusInternalServerError, errorFragment(err.Error()))
		return
	}

	var buf bytes.Buffer
	err = h.renderer.Shell(&buf, view.ShellData{
		Title:        h.cfg.Title,
		SidebarLabel: h.cfg.SidebarLabel,
		SessionID:    session.ID,
		Banner:       banner,
		Persona:      p,
	})
	if err != nil {
		log.Error("failed to render shell", err)
		utils.RespondHTML(w, http.StatusInternalServerError, errorFragment("failed to render page"))
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	utils.RespondHTML(w, http.StatusOK, buf.Bytes())
}

// handleView 渲染主面板中的 Home / About Us / Model 视图
func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "view")
	if !view.IsView(name) {
		utils.RespondHTML(w, http.StatusNotFound, errorFragment("unknown view"))
		return
	}

	sessionID := r.URL.Query().Get("session")
	session, err := h.loop.Sessions().GetSession(r.Context(), sessionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chatService.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		utils.RespondHTML(w, status, errorFragment("session expired, reload the page"))
		return
	}
	p, _ := h.personas.FindByID(session.PersonaID)

	banner, err := h.loop.Banner(r.Context(), sessionID)
	if err != nil {
		utils.RespondHTML(w, http.StatusNotFound, errorFragment(err.Error()))
		return
	}

	data := view.PanelData{
		Persona: p,
		Banner:  banner,
		Error:   r.URL.Query().Get("error"),
	}
	if name == "model" {
		data.Messages, err = h.loop.Visible(r.Context(), sessionID)
		if err != nil {
			utils.RespondHTML(w, http.StatusNotFound, errorFragment(err.Error()))
			return
		}
	}

	var buf bytes.Buffer
	if err := h.renderer.Panel(&buf, name, data); err != nil {
		log.Error("failed to render view", err)
		utils.RespondHTML(w, http.StatusInternalServerError, errorFragment("failed to render view"))
		return
	}
	utils.RespondHTML(w, http.StatusOK, buf.Bytes())
}

func errorFragment(message string) []byte {
	return []byte(`<div class="banner error">` + template.HTMLEscapeString(message) + `</div>`)
}
