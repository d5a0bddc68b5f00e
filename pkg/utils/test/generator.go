package testutils

import (
	"context"

	"github.com/thinkbooklabs/thinkbook/pkg/llm"
)

// MockGenerator is a test generator returning a fixed response
type MockGenerator struct {
	Response string

	// Err causes Complete to fail when set
	Err error

	// LastRequest records the most recent request for assertions
	LastRequest llm.Request
}

func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

func (m *MockGenerator) Complete(_ context.Context, req llm.Request) (string, error) {
	m.LastRequest = req
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockGenerator) Model() string {
	return "mock-generator"
}

func (m *MockGenerator) Close() error {
	return nil
}

// Ensure MockGenerator implements llm.Generator
var _ llm.Generator = (*MockGenerator)(nil)
