package assistant

import "errors"

// Error kinds surfaced by the assistant. Causes are wrapped with %w so
// callers match kinds with errors.Is.
var (
	ErrCapabilityMissing = errors.New("speech recognition not supported")
	ErrSpeechEngine      = errors.New("speech recognition error")
	ErrVoiceFetch        = errors.New("failed to fetch voices")
	ErrChatRequest       = errors.New("failed to get response from chat API")
	ErrChatFormat        = errors.New("invalid response format from chat API")
	ErrSynthesisRequest  = errors.New("failed to synthesize speech")
	ErrAutoplayBlocked   = errors.New("autoplay was blocked")
	ErrConfiguration     = errors.New("missing text or voice model")
	ErrRetry             = errors.New("retry failed")

	ErrUnknownInteraction = errors.New("interaction not found")
	ErrUnknownVoice       = errors.New("voice not found")
)
