package llm

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/sermonchat/internal/core"
	"github.com/markdave123-py/sermonchat/internal/models"
)

func TestNewGeminiLLM_EmptyKeyIsUnconfigured(t *testing.T) {
	g, err := NewGeminiLLM(context.Background(), "", "")
	require.NoError(t, err)
	assert.False(t, g.Configured())
	assert.Equal(t, defaultModel, g.modelName)

	_, err = g.Complete(context.Background(), SystemInstruction, nil, "hello")
	assert.ErrorIs(t, err, core.ErrNotConfigured)
	assert.NoError(t, g.Close())
}

func TestToGeminiHistory_MapsRoles(t *testing.T) {
	got, err := toGeminiHistory([]models.ConversationTurn{
		{Role: models.RoleUser, Content: "What is honour?"},
		{Role: models.RoleAssistant, Content: "Honour is..."},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "user", got[0].Role)
	assert.Equal(t, []genai.Part{genai.Text("What is honour?")}, got[0].Parts)
	assert.Equal(t, "model", got[1].Role)
}

func TestToGeminiHistory_RejectsUnknownRole(t *testing.T) {
	_, err := toGeminiHistory([]models.ConversationTurn{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleSystemNotice, Content: "connection lost"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history[1]")
}

func TestResponseText(t *testing.T) {
	assert.Equal(t, "", responseText(nil))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  "model",
				Parts: []genai.Part{genai.Text("first "), genai.Blob{MIMEType: "image/png"}, genai.Text("second")},
			},
		}},
	}
	assert.Equal(t, "first second", responseText(resp))
}
