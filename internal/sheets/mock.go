package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/phone-manager/internal/model"
)

// MockReader is a mock source reader for testing.
type MockReader struct {
	FetchFunc      func(ctx context.Context) (model.Grid, error)
	Grid           model.Grid
	Err            error
	FetchCallCount int
	mu             sync.Mutex
}

// NewMockReader creates a mock reader that returns grid.
func NewMockReader(grid model.Grid) *MockReader {
	return &MockReader{Grid: grid}
}

// Fetch implements the engine's source interface.
func (m *MockReader) Fetch(ctx context.Context) (model.Grid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FetchCallCount++
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx)
	}
	if m.Err != nil {
		return model.Grid{}, m.Err
	}
	return m.Grid, nil
}

// SetGrid replaces the snapshot returned by subsequent fetches.
func (m *MockReader) SetGrid(grid model.Grid) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Grid = grid
	m.Err = nil
}

// SetError makes subsequent fetches fail with err.
func (m *MockReader) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// Calls returns the number of fetches performed.
func (m *MockReader) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FetchCallCount
}
