package groq

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"

	domai "github.com/sezaiemrekonuk/freesight-ai/internal/domain/ai"
	apperr "github.com/sezaiemrekonuk/freesight-ai/internal/errors"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

// Client talks to Groq's OpenAI-compatible chat completion API.
type Client struct {
	*openai.Client
}

func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	cfg.BaseURL = baseURL
	if timeout > 0 {
		cfg.HTTPClient.Timeout = timeout
	}
	return &Client{Client: openai.NewClientWithConfig(cfg)}
}

// Complete implements the ai.ChatClient port.
func (c *Client) Complete(ctx context.Context, messages []domai.Message, opts domai.ChatOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		status := 0
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.HTTPStatusCode
		}
		return "", apperr.NewUpstreamError("chat completion failed", status, err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.NewUpstreamError("chat completion returned no choices", 0, nil)
	}

	return resp.Choices[0].Message.Content, nil
}
