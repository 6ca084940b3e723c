package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/markdave123-py/sermonchat/internal/core"
	"github.com/markdave123-py/sermonchat/internal/models"
)

const defaultModel = "gemini-1.5-flash"

// Gemini role names. The API only knows the caller and the responder.
const (
	geminiUser  = "user"
	geminiModel = "model"
)

type GeminiLLM struct {
	client    *genai.Client
	modelName string
}

// NewGeminiLLM builds the completion client. An empty apiKey yields an
// unconfigured client that refuses every call without dialing the API.
func NewGeminiLLM(ctx context.Context, apiKey, modelName string) (*GeminiLLM, error) {
	if modelName == "" {
		modelName = defaultModel
	}
	if apiKey == "" {
		return &GeminiLLM{modelName: modelName}, nil
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiLLM{client: cl, modelName: modelName}, nil
}

func (g *GeminiLLM) Configured() bool {
	return g != nil && g.client != nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Complete seeds a chat session with the system instruction and history,
// sends prompt once and returns the text of the first candidate.
func (g *GeminiLLM) Complete(ctx context.Context, systemInstruction string, history []models.ConversationTurn, prompt string) (string, error) {
	if !g.Configured() {
		return "", core.ErrNotConfigured
	}

	contents, err := toGeminiHistory(history)
	if err != nil {
		return "", err
	}

	m := g.client.GenerativeModel(g.modelName)
	if systemInstruction != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemInstruction)},
		}
	}

	cs := m.StartChat()
	cs.History = contents

	resp, err := cs.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", core.NewRemoteError(fmt.Errorf("gemini send message: %w", err))
	}
	return responseText(resp), nil
}

// toGeminiHistory maps conversation turns onto the two-party vocabulary.
// Only user and assistant turns are accepted.
func toGeminiHistory(history []models.ConversationTurn) ([]*genai.Content, error) {
	out := make([]*genai.Content, 0, len(history))
	for i, turn := range history {
		var role string
		switch turn.Role {
		case models.RoleUser:
			role = geminiUser
		case models.RoleAssistant:
			role = geminiModel
		default:
			return nil, fmt.Errorf("history[%d]: role %q cannot be sent to the model", i, turn.Role)
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}
	return out, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

var _ core.CompletionClient = (*GeminiLLM)(nil)
