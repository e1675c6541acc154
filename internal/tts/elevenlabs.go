package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tahcohcat/voicechat-web/config"
	"github.com/tahcohcat/voicechat-web/internal/logger"
)

const elevenLabsBaseURL = "https://api.elevenlabs.io/v1"

// ElevenLabs calls the ElevenLabs REST API with the server-held xi-api-key.
type ElevenLabs struct {
	config     *config.ElevenLabsConfig
	baseURL    string
	httpClient *http.Client
	logger     *logger.Log
}

type elevenLabsVoice struct {
	VoiceID    string `json:"voice_id"`
	Name       string `json:"name"`
	PreviewURL string `json:"preview_url"`
	Category   string `json:"category"`
}

type elevenLabsVoicesResponse struct {
	Voices []elevenLabsVoice `json:"voices"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type elevenLabsSpeechRequest struct {
	Text          string                   `json:"text"`
	ModelID       string                   `json:"model_id,omitempty"`
	VoiceSettings *elevenLabsVoiceSettings `json:"voice_settings,omitempty"`
}

func NewElevenLabs(cfg *config.ElevenLabsConfig) (*ElevenLabs, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ElevenLabs API key is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = elevenLabsBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30
	}

	return &ElevenLabs{
		config:  cfg,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		logger: logger.New(),
	}, nil
}

// ListVoices returns the provider's voices in provider order.
func (e *ElevenLabs) ListVoices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("xi-api-key", e.config.APIKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs voices request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		e.logger.Error(fmt.Sprintf("ElevenLabs API error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload elevenLabsVoicesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal voices response: %w", err)
	}

	voices := make([]Voice, 0, len(payload.Voices))
	for _, v := range payload.Voices {
		voices = append(voices, Voice{
			VoiceID:    v.VoiceID,
			Name:       v.Name,
			PreviewURL: v.PreviewURL,
		})
	}

	e.logger.Debug(fmt.Sprintf("Fetched %d ElevenLabs voices", len(voices)))
	return voices, nil
}

// Synthesize returns MP3 audio for text spoken with voiceID.
func (e *ElevenLabs) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	if voiceID == "" {
		return nil, fmt.Errorf("voice id cannot be empty")
	}

	payload := elevenLabsSpeechRequest{
		Text:    text,
		ModelID: e.config.ModelID,
	}
	if e.config.Stability > 0 || e.config.SimilarityBoost > 0 {
		payload.VoiceSettings = &elevenLabsVoiceSettings{
			Stability:       e.config.Stability,
			SimilarityBoost: e.config.SimilarityBoost,
		}
	}

	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := e.baseURL + "/text-to-speech/" + url.PathEscape(voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.config.APIKey)

	e.logger.Debug(fmt.Sprintf("Generating ElevenLabs audio with voice: %s, model: %s", voiceID, e.config.ModelID))

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		e.logger.Error(fmt.Sprintf("ElevenLabs API returned status %d: %s", resp.StatusCode, string(audio)))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(audio)}
	}

	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}

	e.logger.Debug(fmt.Sprintf("Generated %d bytes of MP3 audio", len(audio)))
	return audio, nil
}

func (e *ElevenLabs) Name() string {
	return "ElevenLabs Text-to-Speech"
}
