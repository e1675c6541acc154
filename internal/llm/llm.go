// internal/llm/llm.go
package llm

import (
	"context"

	"github.com/tahcohcat/voicechat-web/internal/llm/chat"
)

// LLM defines the interface for language model providers
type LLM interface {

	// ChatCompletion sends the conversation and returns the provider's choices
	ChatCompletion(ctx context.Context, req chat.Request) (*chat.Response, error)

	// IsModelAvailable checks if the configured model is available
	IsModelAvailable(ctx context.Context) error
}
