package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Client generates text through the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini-backed text generator.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// Generate substitutes the draft into the prompt template and runs a single
// completion. Any transport or parsing failure is returned as an error; the
// caller decides whether to degrade or abort.
func (c *Client) Generate(ctx context.Context, promptTemplate, draft string) (string, error) {
	prompt := BuildPrompt(promptTemplate, draft)

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("llm generate: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("llm generate: empty response")
	}
	return text, nil
}

// TranslateToEnglish renders arbitrary user text in English. The moodboard
// image prompt template only works well with English keywords.
func (c *Client) TranslateToEnglish(ctx context.Context, text string) (string, error) {
	prompt := "Translate the following text to English. Reply with the translation only, no commentary:\n\n" + text

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("llm translate: %w", err)
	}

	translated := strings.TrimSpace(result.Text())
	if translated == "" {
		return "", fmt.Errorf("llm translate: empty response")
	}
	return translated, nil
}

// BuildPrompt substitutes the draft into a prompt template.
func BuildPrompt(promptTemplate, draft string) string {
	return strings.ReplaceAll(promptTemplate, draftMarker, draft)
}
