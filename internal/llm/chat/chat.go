// Package chat holds the chat-completion wire types shared by every provider.
package chat

import "fmt"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role/content pair of the conversation sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request mirrors the chat-completion request body.
type Request struct {
	Messages []Message `json:"messages"`
	Model    string    `json:"model"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// Response mirrors the chat-completion response body. Choices may be empty;
// callers decide whether that is acceptable.
type Response struct {
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
}

// StatusError is returned when the provider answered with a non-success status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat provider returned status %d: %s", e.StatusCode, e.Message)
}
