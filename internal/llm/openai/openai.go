// internal/llm/openai/openai.go
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/tahcohcat/voicechat-web/config"
	"github.com/tahcohcat/voicechat-web/internal/llm/chat"
	"github.com/tahcohcat/voicechat-web/internal/logger"
)

// Client talks to any OpenAI-compatible chat completion API (OpenAI, Groq, ...).
type Client struct {
	client *goopenai.Client
	config *config.OpenAIConfig
	logger *logger.Log
}

func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: time.Duration(cfg.Timeout) * time.Second,
	}

	return &Client{
		client: goopenai.NewClientWithConfig(clientConfig),
		config: cfg,
		logger: logger.New(),
	}, nil
}

func (c *Client) ChatCompletion(ctx context.Context, req chat.Request) (*chat.Response, error) {
	model := req.Model
	if model == "" {
		model = c.config.Model
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	c.logger.Debug(fmt.Sprintf("Requesting chat completion with model %s (%d messages)", model, len(messages)))

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: c.config.MaxTokens,
	})
	if err != nil {
		c.logger.WithError(err).Error("Failed to make chat completion request")
		return nil, statusError(err)
	}

	out := &chat.Response{
		Model:   resp.Model,
		Choices: make([]chat.Choice, 0, len(resp.Choices)),
	}
	for _, choice := range resp.Choices {
		out.Choices = append(out.Choices, chat.Choice{
			Index: choice.Index,
			Message: chat.Message{
				Role:    choice.Message.Role,
				Content: choice.Message.Content,
			},
			FinishReason: string(choice.FinishReason),
		})
	}

	c.logger.Debug(fmt.Sprintf("Chat completion returned %d choices, %d tokens used", len(out.Choices), resp.Usage.TotalTokens))
	return out, nil
}

// statusError converts go-openai's HTTP failures into chat.StatusError so
// callers can forward the upstream status.
func statusError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return fmt.Errorf("openai request failed: %w", &chat.StatusError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message})
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		msg := http.StatusText(reqErr.HTTPStatusCode)
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return fmt.Errorf("openai request failed: %w", &chat.StatusError{StatusCode: reqErr.HTTPStatusCode, Message: msg})
	}

	return fmt.Errorf("openai request failed: %w", err)
}

func (c *Client) IsModelAvailable(ctx context.Context) error {
	models, err := c.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	var available []string
	for _, model := range models.Models {
		if model.ID == c.config.Model {
			return nil
		}
		available = append(available, model.ID)
	}

	return fmt.Errorf("model %s not found. Available models: %v", c.config.Model, available)
}
