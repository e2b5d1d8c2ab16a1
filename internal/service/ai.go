package service

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// TextGenerator is the narrow seam to the language-model provider. The
// rest of the app never talks to a provider SDK directly.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// OpenAIGenerator backs TextGenerator with the OpenAI chat API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// EchoGenerator is the development fallback when no API key is configured.
type EchoGenerator struct{}

func (EchoGenerator) Generate(_ context.Context, _, prompt string) (string, error) {
	slog.Info("text generation (dev mode)", "prompt_len", len(prompt))
	return "(dev mode) " + prompt, nil
}

// NewTextGenerator picks the provider implementation based on config.
func NewTextGenerator(apiKey, model string, isDev bool) TextGenerator {
	if apiKey == "" {
		if !isDev {
			slog.Warn("OPENAI_API_KEY not set, falling back to echo generator")
		}
		return EchoGenerator{}
	}
	return NewOpenAIGenerator(apiKey, model)
}
