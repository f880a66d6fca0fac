package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/w3wg/crypto-sage/internal/config"
	"github.com/w3wg/crypto-sage/internal/handler/chat"
	"github.com/w3wg/crypto-sage/internal/handler/persona"
	"github.com/w3wg/crypto-sage/internal/handler/ui"
	"github.com/w3wg/crypto-sage/internal/handler/ws"
	middlewarePkg "github.com/w3wg/crypto-sage/internal/middleware"
	personaModel "github.com/w3wg/crypto-sage/internal/model/persona"
	chatService "github.com/w3wg/crypto-sage/internal/service/chat"
	"github.com/w3wg/crypto-sage/internal/view"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, loop *chatService.Loop, renderer *view.Renderer, uiCfg config.UIConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	// Page shell and view fragments
	ui.New(loop, personas, renderer, uiCfg).RegisterRoutes(r)

	personaHandler := persona.New(personas)
	chatHandler := chat.New(loop, personas)
	wsHandler := ws.New(loop, renderer)

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	return r
}
