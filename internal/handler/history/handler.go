package history

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cqle/dba-virtual/backend/internal/logging"
	"github.com/cqle/dba-virtual/backend/internal/model/chat"
	chatService "github.com/cqle/dba-virtual/backend/internal/service/chat"
	"github.com/cqle/dba-virtual/backend/pkg/utils"
)

const listFailedMessage = "Erro ao carregar o histórico."

// Handler 历史会话的只读接口
type Handler struct {
	store chatService.Store
}

// New 创建历史处理器
func New(store chatService.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册历史相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/history", h.handleListSessions)
	r.Get("/history/{id}", h.handleListMessages)
}

type sessionView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

type messageView struct {
	Role      chat.Role `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// handleListSessions 列出调用方的会话，最新的在前
func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	owner := utils.RawOwnerID(r)
	if owner == "" {
		utils.RespondJSON(w, http.StatusOK, []sessionView{})
		return
	}

	sessions, err := h.store.ListSessions(r.Context(), owner)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str(logging.FieldOwner, owner).Msg("failed to list sessions")
		utils.RespondError(w, http.StatusInternalServerError, listFailedMessage)
		return
	}

	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, sessionView{ID: s.ID, Title: s.Title, CreatedAt: s.CreatedAt})
	}
	utils.RespondJSON(w, http.StatusOK, views)
}

// handleListMessages 列出会话消息，最早的在前
func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	messages, err := h.store.ListMessages(r.Context(), sessionID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str(logging.FieldSessionID, sessionID).Msg("failed to list messages")
		utils.RespondError(w, http.StatusInternalServerError, listFailedMessage)
		return
	}

	views := make([]messageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, messageView{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt})
	}
	utils.RespondJSON(w, http.StatusOK, views)
}
