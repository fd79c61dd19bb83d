package ai

import (
	"context"
	"fmt"
	"sync"
)

// MockGenerator is a Generator with canned responses for tests
type MockGenerator struct {
	mu          sync.Mutex
	title       string
	body        string
	err         error
	callCount   int
	lastContext *PRContext
}

// NewMockGenerator creates an empty MockGenerator
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// GenerateDescription implements Generator
func (m *MockGenerator) GenerateDescription(_ context.Context, prContext *PRContext) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	contextCopy := *prContext
	m.lastContext = &contextCopy

	if m.err != nil {
		return "", "", m.err
	}
	if m.title == "" && m.body == "" {
		return "", "", fmt.Errorf("no mock response set, use SetMockResponse()")
	}
	return m.title, m.body, nil
}

// SetMockResponse sets the title and body to return
func (m *MockGenerator) SetMockResponse(title, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.title = title
	m.body = body
}

// SetMockError makes every call fail with err
func (m *MockGenerator) SetMockError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// CallCount returns how many times GenerateDescription was called
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastContext returns a copy of the most recent PRContext
func (m *MockGenerator) LastContext() *PRContext {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastContext
}
