package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/markdave123-py/sermonchat/internal/core"
	"github.com/markdave123-py/sermonchat/internal/core/llm"
	"github.com/markdave123-py/sermonchat/internal/core/sources"
	"github.com/markdave123-py/sermonchat/internal/metrics"
	"github.com/markdave123-py/sermonchat/internal/models"
)

const emptyAnswer = "No response received."

// ChatService turns one prompt plus the caller's history into a reply with
// extracted sources. It keeps no conversation state between calls.
type ChatService struct {
	llm     core.CompletionClient
	metrics *metrics.Metrics
	timeout time.Duration
}

// NewChatService wires the orchestrator. A zero timeout leaves the call bounded
// only by the caller's context.
func NewChatService(client core.CompletionClient, m *metrics.Metrics, timeout time.Duration) *ChatService {
	return &ChatService{llm: client, metrics: m, timeout: timeout}
}

// Handle validates the request, asks the model and extracts sources.
func (s *ChatService) Handle(ctx context.Context, prompt string, history []models.ConversationTurn) (models.ChatReply, error) {
	if s.llm == nil || !s.llm.Configured() {
		s.metrics.CountChat(metrics.OutcomeNotConfigured)
		return models.ChatReply{}, core.ErrNotConfigured
	}
	if strings.TrimSpace(prompt) == "" {
		s.metrics.CountChat(metrics.OutcomeInvalid)
		return models.ChatReply{}, core.NewValidationError("prompt is required")
	}
	turns, err := conversationTurns(ctx, history)
	if err != nil {
		s.metrics.CountChat(metrics.OutcomeInvalid)
		return models.ChatReply{}, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.llm.Complete(ctx, llm.SystemInstruction, turns, prompt)
	s.metrics.ObserveCompletion(start)
	if err != nil {
		s.metrics.CountChat(metrics.OutcomeRemoteError)
		if errors.Is(err, core.ErrNotConfigured) || core.IsRemote(err) {
			return models.ChatReply{}, err
		}
		return models.ChatReply{}, core.NewRemoteError(err)
	}

	refs, rec := sources.ExtractReply(text)
	if strings.TrimSpace(text) == "" {
		text = emptyAnswer
	}
	s.metrics.CountChat(metrics.OutcomeOK)
	slog.DebugContext(ctx, "chat answered", "history_turns", len(turns), "sources", len(refs))
	return models.ChatReply{Text: text, Sources: refs, Recommendation: rec}, nil
}

// conversationTurns keeps user and assistant turns. System notices are UI
// artefacts and are dropped with a warning; any other role is rejected.
func conversationTurns(ctx context.Context, history []models.ConversationTurn) ([]models.ConversationTurn, error) {
	out := make([]models.ConversationTurn, 0, len(history))
	dropped := 0
	for i, turn := range history {
		switch turn.Role {
		case models.RoleUser, models.RoleAssistant:
			out = append(out, turn)
		case models.RoleSystemNotice:
			dropped++
		default:
			return nil, core.NewValidationError("history[%d]: unsupported role %q", i, turn.Role)
		}
	}
	if dropped > 0 {
		slog.WarnContext(ctx, "dropped system notices from chat history", "count", dropped)
	}
	return out, nil
}
