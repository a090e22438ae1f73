package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// defaultAnthropicMaxTokens applies when a request does not set MaxTokens;
// the Anthropic API requires the field.
const defaultAnthropicMaxTokens = 2048

// AnthropicClient implements ChatClient against the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// NewAnthropicClient creates a client for the Anthropic API. Endpoint is
// optional; empty means the public API.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	var opts []anthropic.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(cfg.Endpoint, "/")))
	}

	return &AnthropicClient{
		client: anthropic.NewClient(cfg.APIKey, opts...),
		model:  cfg.Model,
		logger: logger.Named("llm"),
	}, nil
}

// Complete implements ChatClient. JSONMode has no native equivalent here;
// callers run the result through ExtractJSON.
func (c *AnthropicClient) Complete(ctx context.Context, req *Request) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateMessages(ctx, c.buildRequest(req))
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err)
	}

	c.logger.Info("LLM request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return firstText(resp.Content), nil
}

// Stream implements ChatClient.
func (c *AnthropicClient) Stream(ctx context.Context, req *Request, onDelta DeltaFunc) (string, error) {
	var content strings.Builder
	var deltaErr error

	start := time.Now()
	_, err := c.client.CreateMessagesStream(ctx, anthropic.MessagesStreamRequest{
		MessagesRequest: c.buildRequest(req),
		OnContentBlockDelta: func(data anthropic.MessagesEventContentBlockDeltaData) {
			if deltaErr != nil || data.Delta.Text == nil {
				return
			}
			content.WriteString(*data.Delta.Text)
			if onDelta != nil {
				deltaErr = onDelta(*data.Delta.Text)
			}
		},
	})
	if deltaErr != nil {
		return content.String(), deltaErr
	}
	if err != nil {
		c.logger.Error("Stream failed", zap.Error(err))
		return content.String(), ClassifyError(err)
	}

	c.logger.Info("LLM stream completed",
		zap.Int("content_len", content.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return content.String(), nil
}

// Model implements ChatClient.
func (c *AnthropicClient) Model() string {
	return c.model
}

func (c *AnthropicClient) buildRequest(req *Request) anthropic.MessagesRequest {
	messages := make([]anthropic.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		text := m.Content
		role := anthropic.RoleUser
		if m.Role == RoleAssistant {
			role = anthropic.RoleAssistant
		}
		messages = append(messages, anthropic.Message{
			Role:    role,
			Content: []anthropic.MessageContent{{Type: "text", Text: &text}},
		})
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	request := anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		Messages:  messages,
		MaxTokens: maxTokens,
	}
	if req.System != "" {
		request.System = req.System
	}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		request.Temperature = &temp
	}
	return request
}

func firstText(blocks []anthropic.MessageContent) string {
	for _, block := range blocks {
		if block.Type == "text" && block.Text != nil {
			return *block.Text
		}
	}
	return ""
}
