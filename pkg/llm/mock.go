package llm

import "context"

// MockChatClient is a configurable mock for testing. Set the function fields
// to control behavior.
type MockChatClient struct {
	// CompleteFunc is called when Complete is invoked. If nil, returns "".
	CompleteFunc func(ctx context.Context, req *Request) (string, error)

	// StreamFunc is called when Stream is invoked. If nil, Stream behaves
	// like Complete delivered as one delta.
	StreamFunc func(ctx context.Context, req *Request, onDelta DeltaFunc) (string, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	// Call tracking for verification.
	CompleteCalls int
	StreamCalls   int
}

// NewMockChatClient creates a mock with defaults.
func NewMockChatClient() *MockChatClient {
	return &MockChatClient{ModelName: "mock-model"}
}

// Complete implements ChatClient.
func (m *MockChatClient) Complete(ctx context.Context, req *Request) (string, error) {
	m.CompleteCalls++
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "", nil
}

// Stream implements ChatClient.
func (m *MockChatClient) Stream(ctx context.Context, req *Request, onDelta DeltaFunc) (string, error) {
	m.StreamCalls++
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, req, onDelta)
	}

	content := ""
	if m.CompleteFunc != nil {
		var err error
		content, err = m.CompleteFunc(ctx, req)
		if err != nil {
			return "", err
		}
	}
	if content != "" && onDelta != nil {
		if err := onDelta(content); err != nil {
			return content, err
		}
	}
	return content, nil
}

// Model implements ChatClient.
func (m *MockChatClient) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}
