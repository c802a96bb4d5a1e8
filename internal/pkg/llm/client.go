// Package llm wraps the external chat-completion API behind a small
// interface so the advisor can be tested with a scripted fake.
package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/yonderlust/yonderlust/internal/pkg/env"
)

// Message is one turn of conversation history sent to the generator.
type Message struct {
	Role    string
	Content string
}

// Generator produces text from a system instruction plus ordered history.
type Generator interface {
	Generate(ctx context.Context, system string, history []Message, maxTokens int) (string, error)
}

// ErrEmptyResponse is returned when the API answers without any choices.
var ErrEmptyResponse = errors.New("llm: empty response from generator")

type openAIGenerator struct {
	client *openai.Client
	model  string
}

// NewGeneratorFromEnv builds the production generator. LLM_BASE_URL allows
// pointing at any OpenAI-compatible endpoint.
func NewGeneratorFromEnv() Generator {
	cfg := openai.DefaultConfig(env.GetEnv("LLM_API_KEY", ""))
	if baseURL := env.GetEnv("LLM_BASE_URL", ""); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &openAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  env.GetEnv("LLM_MODEL", openai.GPT4oMini),
	}
}

func (g *openAIGenerator) Generate(ctx context.Context, system string, history []Message, maxTokens int) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
