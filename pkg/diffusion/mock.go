package diffusion

import "context"

// MockClient is a mock diffusion client for testing
type MockClient struct {
	RenderFunc func(ctx context.Context, req RenderRequest) ([]byte, error)
}

func (m *MockClient) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(ctx, req)
	}
	return []byte("mock-image"), nil
}

// NewMockClient creates a mock client with default behavior
func NewMockClient() *MockClient {
	return &MockClient{}
}
