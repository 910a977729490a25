package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted Client for tests.
type MockClient struct {
	ChatFunc func(ctx context.Context, conv Conversation) (string, error)
	Response string
	Err      error
	calls    []Conversation
	mu       sync.Mutex
}

// NewMockClient returns a mock that answers every call with response.
func NewMockClient(response string) *MockClient {
	return &MockClient{Response: response}
}

// Chat implements Client.
func (m *MockClient) Chat(ctx context.Context, conv Conversation) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, conv)
	fn, resp, err := m.ChatFunc, m.Response, m.Err
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, conv)
	}
	return resp, err
}

// Name implements Client.
func (m *MockClient) Name() string { return "mock" }

// Calls returns the conversations received so far.
func (m *MockClient) Calls() []Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Conversation, len(m.calls))
	copy(out, m.calls)
	return out
}
