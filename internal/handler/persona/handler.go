package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cqle/dba-virtual/backend/internal/model/persona"
	"github.com/cqle/dba-virtual/backend/pkg/utils"
)

// Handler persona服务的HTTP处理器
type Handler struct {
	personas persona.Store
	activeID string
}

// New 创建persona处理器，activeID 为当前生效的 persona
func New(personas persona.Store, activeID string) *Handler {
	if activeID == "" {
		activeID = persona.DefaultID
	}
	return &Handler{
		personas: personas,
		activeID: activeID,
	}
}

// RegisterRoutes 注册persona相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/persona", h.handleActivePersona)
	r.Get("/personas", h.handleListPersonas)
}

type greetingView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	OpeningLine string `json:"openingLine"`
}

// handleActivePersona 返回前端欢迎语所需的信息
func (h *Handler) handleActivePersona(w http.ResponseWriter, r *http.Request) {
	p, ok := h.personas.FindByID(h.activeID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "persona not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, greetingView{
		ID:          p.ID,
		Name:        p.Name,
		Title:       p.Title,
		OpeningLine: p.OpeningLine,
	})
}

// handleListPersonas 列出所有persona
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}
