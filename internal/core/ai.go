package core

import (
	"context"

	"github.com/markdave123-py/sermonchat/internal/models"
)

// CompletionClient sends a conversation to a remote model and returns the raw answer.
type CompletionClient interface {
	// Configured reports whether a credential is present. Callers must not
	// invoke Complete when it returns false.
	Configured() bool
	Complete(ctx context.Context, systemInstruction string, history []models.ConversationTurn, prompt string) (string, error)
}
