package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/cqle/dba-virtual/backend/internal/handler/chat"
	"github.com/cqle/dba-virtual/backend/internal/handler/history"
	"github.com/cqle/dba-virtual/backend/internal/handler/persona"
	middlewarePkg "github.com/cqle/dba-virtual/backend/internal/middleware"
	personaModel "github.com/cqle/dba-virtual/backend/internal/model/persona"
	chatService "github.com/cqle/dba-virtual/backend/internal/service/chat"
	"github.com/cqle/dba-virtual/backend/internal/service/conversation"
	"github.com/cqle/dba-virtual/backend/pkg/utils"
)

// Health describes the wiring reported by /healthz.
type Health struct {
	RateLimit  string `json:"rateLimit"`
	Store      string `json:"store"`
	Generation string `json:"generation"`
}

// Deps 路由依赖
type Deps struct {
	Logger       zerolog.Logger
	CORSOrigins  []string
	Personas     personaModel.Store
	PersonaID    string
	Store        chatService.Store
	Orchestrator *conversation.Orchestrator
	Health       Health
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.CORSOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, struct {
			Status string `json:"status"`
			Health
		}{Status: "ok", Health: deps.Health})
	})

	r.Route("/api", func(api chi.Router) {
		chat.New(deps.Orchestrator).RegisterRoutes(api)
		history.New(deps.Store).RegisterRoutes(api)
		persona.New(deps.Personas, deps.PersonaID).RegisterRoutes(api)
	})

	return r
}
