package chat

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Generation settings for the assistant. Low-ish temperature keeps answers
// consistent; the token cap keeps them short.
const (
	DefaultModel    = "gemini-2.5-flash"
	temperature     = 0.7
	topP            = 0.95
	topK            = 40
	maxOutputTokens = 1024
)

// GeminiGenerator sends prompts to the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a client for the Gemini developer API.
// An empty model selects DefaultModel.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("chat: Gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("chat: creating Gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate asks the model for a reply to message, steered by system.
func (g *GeminiGenerator) Generate(ctx context.Context, system, message string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](temperature),
		TopP:            genai.Ptr[float32](topP),
		TopK:            genai.Ptr[float32](topK),
		MaxOutputTokens: maxOutputTokens,
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(message), config)
	if err != nil {
		return "", fmt.Errorf("chat: generating content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("chat: model returned no text")
	}
	return text, nil
}
