package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/tahcohcat/voicechat-web/config"
	"github.com/tahcohcat/voicechat-web/internal/llm/chat"
	"github.com/tahcohcat/voicechat-web/internal/logger"
)

type Client struct {
	client *api.Client
	config *config.OllamaConfig
	logger *logger.Log
}

func NewClient(cfg *config.OllamaConfig) (*Client, error) {
	if cfg.Host == "" {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return &Client{client: client, config: cfg, logger: logger.New()}, nil
	}

	base, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", cfg.Host, err)
	}

	return &Client{
		client: api.NewClient(base, http.DefaultClient),
		config: cfg,
		logger: logger.New(),
	}, nil
}

func (c *Client) ChatCompletion(ctx context.Context, req chat.Request) (*chat.Response, error) {
	// the requested model names a hosted model, ollama serves its own
	model := c.config.Model

	shouldStream := false

	messages := make([]api.Message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, api.Message{Role: msg.Role, Content: msg.Content})
	}

	chatReq := &api.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   &shouldStream,
		Options: map[string]interface{}{
			"temperature": 0.7,
			"top_p":       0.9,
		},
	}

	// Create context with timeout
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(c.config.Timeout)*time.Second)
	defer cancel()

	c.logger.Debug(fmt.Sprintf("Generating chat response with model %s", model))

	var content strings.Builder
	var done bool
	f := func(r api.ChatResponse) error {
		content.WriteString(r.Message.Content)
		done = done || r.Done
		return nil
	}

	if err := c.client.Chat(timeoutCtx, chatReq, f); err != nil {
		c.logger.WithError(err).Error("Failed to generate chat response")

		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			return nil, fmt.Errorf("ollama chat failed: %w", &chat.StatusError{StatusCode: statusErr.StatusCode, Message: statusErr.ErrorMessage})
		}
		return nil, fmt.Errorf("ollama chat failed: %w", err)
	}

	resp := &chat.Response{Model: model, Choices: []chat.Choice{}}
	if content.Len() > 0 {
		finish := ""
		if done {
			finish = "stop"
		}
		resp.Choices = append(resp.Choices, chat.Choice{
			Message:      chat.Message{Role: chat.RoleAssistant, Content: content.String()},
			FinishReason: finish,
		})
	}

	return resp, nil
}

func (c *Client) IsModelAvailable(ctx context.Context) error {
	models, err := c.client.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	for _, model := range models.Models {
		if model.Name == c.config.Model {
			return nil
		}
	}

	return fmt.Errorf("model %s not found. Available models: %v", c.config.Model, getModelNames(models.Models))
}

func getModelNames(models []api.ListModelResponse) []string {
	names := make([]string, len(models))
	for i, model := range models {
		names[i] = model.Name
	}
	return names
}
