package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaClient runs completions against a local Ollama server. It exists so
// the assistant can be developed without Azure credentials.
type OllamaClient struct {
	client *api.Client
	model  string
}

func NewOllamaClient(model string) (CompletionClient, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("error creating ollama client: %w", err)
	}

	if model == "" {
		return nil, errors.New("ollama model must be configured")
	}

	return &OllamaClient{
		client: client,
		model:  model,
	}, nil
}

func (c *OllamaClient) GetModel() string {
	return c.model
}

func (c *OllamaClient) Complete(ctx context.Context, messages []Message, opts ...CompletionOption) (string, error) {
	settings := CompletionSettings{
		model:       c.model,
		temperature: 0.7,
		maxTokens:   200,
	}

	// Apply options
	for _, opt := range opts {
		opt(&settings)
	}

	apiMessages := make([]api.Message, 0, len(messages)+1)
	if settings.system != "" {
		apiMessages = append(apiMessages, api.Message{Role: "system", Content: settings.system})
	}
	for _, msg := range messages {
		apiMessages = append(apiMessages, api.Message{Role: msg.Role, Content: msg.Content})
	}

	stream := false
	request := &api.ChatRequest{
		Model:    settings.model,
		Messages: apiMessages,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": settings.temperature,
			"num_predict": settings.maxTokens,
		},
	}

	var response strings.Builder
	err := c.client.Chat(ctx, request, func(resp api.ChatResponse) error {
		response.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("error running ollama chat: %w", err)
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("%w: empty assistant message", ErrMalformed)
	}

	return strings.TrimSpace(response.String()), nil
}
