package poem

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

const systemInstruction = "You are a helpful assistant that writes short, four-line apology poems."

// Prompt builds the user prompt for an apology reason.
func Prompt(apologyReason string) string {
	return fmt.Sprintf("Write a short, four-line poem apologizing for: %s", apologyReason)
}

// Generator produces apology poems through the Gemini API.
type Generator struct {
	client *genai.Client
	model  string
}

func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("poem generator API key is required")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Generator{client: client, model: model}, nil
}

// ApologyPoem generates a four-line poem for the given reason.
func (g *Generator) ApologyPoem(ctx context.Context, apologyReason string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx,
		g.model,
		genai.Text(Prompt(apologyReason)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		},
	)
	if err != nil {
		return "", fmt.Errorf("poem generation failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("poem generation returned no text")
	}

	return text, nil
}
