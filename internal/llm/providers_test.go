package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Veraticus/phone-manager/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConv = Conversation{System: "extract fields", User: "Your a/c debited BDT 500.00"}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		config  Config
		want    string
		wantErr bool
	}{
		{name: "openai", config: Config{Provider: "openai", APIKey: "k"}, want: "openai/gpt-4o-mini"},
		{name: "openai without key", config: Config{Provider: "openai"}, wantErr: true},
		{name: "anthropic custom model", config: Config{Provider: "Anthropic", APIKey: "k", Model: "claude-x"}, want: "anthropic/claude-x"},
		{name: "anthropic without key", config: Config{Provider: "anthropic"}, wantErr: true},
		{name: "gemini", config: Config{Provider: "gemini", APIKey: "k"}, want: "gemini/gemini-2.0-flash"},
		{name: "gemini without key", config: Config{Provider: "gemini"}, wantErr: true},
		{name: "ollama needs no key", config: Config{Provider: "ollama"}, want: "ollama/llama3.1:latest"},
		{name: "empty provider defaults to ollama", config: Config{}, want: "ollama/llama3.1:latest"},
		{name: "unknown", config: Config{Provider: "mystery"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(ctx, tt.config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, client.Name())
		})
	}
}

func TestOpenAIClient_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body := decodeBody(t, r)
		assert.Equal(t, "gpt-test", body["model"])
		messages, ok := body["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]any)["role"])
		assert.Equal(t, testConv.User, messages[1].(map[string]any)["content"])

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"amount\":\"500\"}"}}]}`))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", Model: "gpt-test", BaseURL: server.URL + "/"})
	require.NoError(t, err)

	got, err := client.Chat(context.Background(), testConv)
	require.NoError(t, err)
	assert.Equal(t, `{"amount":"500"}`, got)
}

func TestOpenAIClient_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		status    int
		permanent bool
		rateLimit bool
	}{
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, rateLimit: true},
		{name: "server error", status: http.StatusBadGateway, body: `oops`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"bad key"}`, permanent: true},
		{name: "malformed body", status: http.StatusOK, body: `not json`, permanent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := newOpenAIClient(Config{APIKey: "k", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = client.Chat(context.Background(), testConv)
			require.Error(t, err)
			var re *common.RetryableError
			assert.Equal(t, tt.permanent, errors.As(err, &re) && !re.Retryable)
			assert.Equal(t, tt.rateLimit, errors.Is(err, common.ErrRateLimit))
		})
	}
}

func TestAnthropicClient_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		body := decodeBody(t, r)
		assert.Equal(t, testConv.System, body["system"])

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"balance\":"},{"type":"text","text":"\"4500\"}"}]}`))
	}))
	defer server.Close()

	client, err := newAnthropicClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	got, err := client.Chat(context.Background(), testConv)
	require.NoError(t, err)
	assert.Equal(t, `{"balance":"4500"}`, got)
}

func TestAnthropicClient_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	client, err := newAnthropicClient(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), testConv)
	assert.Error(t, err)
}

func TestOllamaClient_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, false, body["stream"])
		assert.Equal(t, ollamaDefaultModel, body["model"])

		_, _ = w.Write([]byte(`{"model":"llama3.1:latest","message":{"role":"assistant","content":"ok"},"done":true}`))
	}))
	defer server.Close()

	client, err := newOllamaClient(Config{BaseURL: server.URL})
	require.NoError(t, err)

	got, err := client.Chat(context.Background(), testConv)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestOllamaClient_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := newOllamaClient(Config{BaseURL: url})
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), testConv)
	assert.Error(t, err)
}

func TestGeminiClient_Chat(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"amount\":\"1\"}"}]}}]}`))
	}))
	defer server.Close()

	client, err := newGeminiClient(context.Background(), Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	got, err := client.Chat(context.Background(), testConv)
	require.NoError(t, err)
	assert.Equal(t, `{"amount":"1"}`, got)
	assert.Equal(t, int32(1), calls.Load())
}
