package chat

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cqle/dba-virtual/backend/internal/model/chat"
	"github.com/cqle/dba-virtual/backend/internal/service/conversation"
	"github.com/cqle/dba-virtual/backend/pkg/utils"
)

// Handler 聊天接口的HTTP处理器
type Handler struct {
	orchestrator *conversation.Orchestrator
}

// New 创建聊天处理器
func New(orchestrator *conversation.Orchestrator) *Handler {
	return &Handler{orchestrator: orchestrator}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
}

type chatRequest struct {
	Message   string      `json:"message"`
	History   []chat.Turn `json:"history"`
	SessionID string      `json:"sessionId"`
}

type chatResponse struct {
	Result    string `json:"result"`
	SessionID string `json:"sessionId,omitempty"`
}

// handleChat 处理一轮对话
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out := h.orchestrator.Handle(r.Context(), conversation.Request{
		Message:   payload.Message,
		History:   payload.History,
		SessionID: payload.SessionID,
		OwnerID:   utils.OwnerID(r),
		ClientKey: utils.ClientKey(r),
	})
	if !out.Succeeded() {
		utils.RespondErrorDetails(w, out.Status, out.Error, out.Details)
		return
	}

	utils.RespondJSON(w, out.Status, chatResponse{Result: out.Result, SessionID: out.SessionID})
}
