package completion

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"synapse/pkg/logger"
)

// DefaultModel is the model requested when config leaves it empty.
const DefaultModel = "gemini-2.5-flash"

// Gemini implements Provider on top of the Google GenAI API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini provider. apiKey is required; model falls
// back to DefaultModel when empty.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	logger.Debug("gemini_client_created", "model", model)
	return &Gemini{client: client, model: model}, nil
}

// Generate sends the full history and returns the generated text.
func (g *Gemini) Generate(ctx context.Context, history []Turn) (string, error) {
	if len(history) == 0 {
		return "", errors.New("empty history")
	}
	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		var role genai.Role = genai.RoleUser
		if t.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("model returned no text")
	}
	return text, nil
}
