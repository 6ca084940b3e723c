package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/markdave123-py/sermonchat/internal/core"
	"github.com/markdave123-py/sermonchat/internal/models"
)

// ChatOrchestrator answers one prompt given the caller's history.
type ChatOrchestrator interface {
	Handle(ctx context.Context, prompt string, history []models.ConversationTurn) (models.ChatReply, error)
}

type ChatHandler struct {
	chat ChatOrchestrator
}

func NewChatHandler(chat ChatOrchestrator) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type ChatRequest struct {
	Prompt  string                    `json:"prompt"`
	History []models.ConversationTurn `json:"history"`
}

// Chat forwards the prompt and history and returns {text, sources}.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.chat.Handle(r.Context(), req.Prompt, req.History)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, reply)
	case errors.Is(err, core.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, core.ErrNotConfigured.Error())
	case core.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "error calling completion API", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Internal Server Error",
			Details: err.Error(),
		})
	}
}
