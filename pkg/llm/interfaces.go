// Package llm provides chat-completion clients for the coaching and
// extraction models, behind one provider-neutral interface.
package llm

import "context"

// Message is one chat message sent to a completion endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message role constants.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Request is a chat-completion request.
type Request struct {
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	// JSONMode asks the endpoint for a strict JSON object response. Only
	// honored by providers that support it; others rely on prompt discipline
	// plus ExtractJSON.
	JSONMode bool
}

// DeltaFunc receives incremental text as a stream produces it. Returning an
// error aborts the stream.
type DeltaFunc func(delta string) error

// ChatClient is the provider-neutral completion interface. Use it for
// dependency injection so tests can swap in MockChatClient.
type ChatClient interface {
	// Complete performs a blocking chat completion and returns the full text.
	Complete(ctx context.Context, req *Request) (string, error)

	// Stream performs a streaming chat completion, invoking onDelta for each
	// text fragment, and returns the assembled full text.
	Stream(ctx context.Context, req *Request, onDelta DeltaFunc) (string, error)

	// Model returns the configured model name.
	Model() string
}

// Compile-time interface checks.
var (
	_ ChatClient = (*OpenAIClient)(nil)
	_ ChatClient = (*AnthropicClient)(nil)
	_ ChatClient = (*MockChatClient)(nil)
)
