package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
)

type AzureOpenAIClient struct {
	apiKey     string
	httpClient *http.Client
	url        string
	deployment string
}

// NewAzureOpenAIClient builds a client for an Azure OpenAI chat-completions
// deployment. The API key is taken from AZURE_OPENAI_API_KEY.
func NewAzureOpenAIClient(endpoint, deployment, apiVersion string) (CompletionClient, error) {
	apiKey := os.Getenv("AZURE_OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("AZURE_OPENAI_API_KEY environment variable is not set")
	}

	if endpoint == "" || deployment == "" {
		return nil, errors.New("azure openai endpoint and deployment must be configured")
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(endpoint, "/"), deployment, apiVersion)

	return &AzureOpenAIClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
		url:        url,
		deployment: deployment,
	}, nil
}

func (c *AzureOpenAIClient) GetModel() string {
	return c.deployment
}

func (c *AzureOpenAIClient) Complete(ctx context.Context, messages []Message, opts ...CompletionOption) (string, error) {
	settings := CompletionSettings{
		model:       c.deployment,
		temperature: 0.7,
		maxTokens:   200,
	}

	// Apply options
	for _, opt := range opts {
		opt(&settings)
	}

	request := azureChatRequest{
		Messages:    messages,
		Temperature: settings.temperature,
		MaxTokens:   settings.maxTokens,
	}

	// Azure expects the system prompt as the leading message.
	if settings.system != "" {
		systemMsg := Message{
			Role:    "system",
			Content: settings.system,
		}
		request.Messages = append([]Message{systemMsg}, request.Messages...)
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	if err := classifyStatus(resp.StatusCode, body); err != nil {
		return "", err
	}

	var response azureChatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: no choices in response", ErrMalformed)
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// classifyTransportError maps network-level failures onto the completion
// failure classes.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return fmt.Errorf("error making request: %w", err)
}

func classifyStatus(status int, body []byte) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", ErrAuthentication, status, string(body))
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d: %s", ErrRateLimited, status, string(body))
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: status %d: %s", ErrTimeout, status, string(body))
	default:
		return fmt.Errorf("API request failed with status %d: %s", status, string(body))
	}
}

// Azure OpenAI API types
type azureChatRequest struct {
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type azureChatResponse struct {
	ID      string            `json:"id"`
	Object  string            `json:"object"`
	Created int64             `json:"created"`
	Model   string            `json:"model"`
	Choices []azureChatChoice `json:"choices"`
	Usage   azureChatUsage    `json:"usage"`
}

type azureChatChoice struct {
	Index        int          `json:"index"`
	Message      azureMessage `json:"message"`
	FinishReason string       `json:"finish_reason"`
}

type azureMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type azureChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
