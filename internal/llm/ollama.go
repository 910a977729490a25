package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	ollamaBaseURL      = "http://localhost:11434"
	ollamaDefaultModel = "llama3.1:latest"
)

// ollamaClient talks to a local Ollama server's chat endpoint.
type ollamaClient struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
}

func newOllamaClient(cfg Config) (Client, error) {
	model := cfg.Model
	if model == "" {
		model = ollamaDefaultModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = ollamaBaseURL
	}

	return &ollamaClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokensOrDefault(cfg.MaxTokens),
		httpClient:  newHTTPClient(cfg.Timeout),
	}, nil
}

func (c *ollamaClient) Name() string { return "ollama/" + c.model }

// Chat sends a non-streaming chat request.
func (c *ollamaClient) Chat(ctx context.Context, conv Conversation) (string, error) {
	messages := make([]map[string]string, 0, 2)
	if conv.System != "" {
		messages = append(messages, map[string]string{"role": "system", "content": conv.System})
	}
	messages = append(messages, map[string]string{"role": "user", "content": conv.User})

	requestBody := map[string]any{
		"model":    c.model,
		"messages": messages,
		"stream":   false,
		"options": map[string]any{
			"temperature": c.temperature,
			"num_predict": c.maxTokens,
		},
	}

	var response ollamaResponse
	if err := postJSON(ctx, c.httpClient, "ollama", c.baseURL+"/api/chat", nil, requestBody, &response); err != nil {
		return "", err
	}

	if response.Error != "" {
		return "", fmt.Errorf("ollama error: %s", response.Error)
	}
	if response.Message.Content == "" {
		return "", fmt.Errorf("no content in response")
	}

	return response.Message.Content, nil
}

type ollamaResponse struct {
	Model   string `json:"model"`
	Error   string `json:"error"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}
