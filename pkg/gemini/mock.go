package gemini

import "context"

// MockClient is a mock Gemini client for testing
type MockClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *MockClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt)
	}
	return `{"result": "mock"}`, nil
}

// NewMockClient creates a mock client with default behavior
func NewMockClient() *MockClient {
	return &MockClient{}
}
