package tts

import (
	"context"
	"fmt"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"

	"github.com/tahcohcat/voicechat-web/config"
	"github.com/tahcohcat/voicechat-web/internal/logger"
)

type WebGoogleTTS struct {
	client *texttospeech.Client
	config *config.GoogleConfig
	logger *logger.Log
}

func NewWebGoogleTTSClient(cfg *config.GoogleConfig) (*WebGoogleTTS, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google TTS client: %w", err)
	}

	return &WebGoogleTTS{
		client: client,
		config: cfg,
		logger: logger.New(),
	}, nil
}

// Extract language code from voice name (e.g., "en-US-Chirp-HD-F" -> "en-US", "en-GB-Standard-D" -> "en-GB")
func extractLanguageCode(voiceName, fallback string) string {
	parts := strings.Split(voiceName, "-")
	if len(parts) >= 3 {
		return fmt.Sprintf("%s-%s", parts[0], parts[1])
	}
	if fallback == "" {
		return "en-US"
	}
	return fallback
}

// Synthesize generates MP3 audio for the browser audio element
func (g *WebGoogleTTS) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	languageCode := extractLanguageCode(voiceID, g.config.LanguageCode)

	req := &ttspb.SynthesizeSpeechRequest{
		Input: &ttspb.SynthesisInput{
			InputSource: &ttspb.SynthesisInput_Text{Text: text},
		},
		Voice: &ttspb.VoiceSelectionParams{
			LanguageCode: languageCode,
			Name:         voiceID,
		},
		AudioConfig: &ttspb.AudioConfig{
			AudioEncoding:   ttspb.AudioEncoding_MP3, // Use MP3 for web compatibility
			SpeakingRate:    g.config.SpeakingRate,
			Pitch:           g.config.Pitch,
			SampleRateHertz: 22050, // Good quality for web
		},
	}

	g.logger.Debug(fmt.Sprintf("Generating Google TTS audio with voice: %s, language: %s", voiceID, languageCode))

	resp, err := g.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	if len(resp.AudioContent) == 0 {
		return nil, ErrEmptyAudio
	}

	g.logger.Debug(fmt.Sprintf("Generated %d bytes of MP3 audio", len(resp.AudioContent)))
	return resp.AudioContent, nil
}

// ListVoices lists Google voices for the configured language. Google has no
// preview clips, so PreviewURL stays empty.
func (g *WebGoogleTTS) ListVoices(ctx context.Context) ([]Voice, error) {
	resp, err := g.client.ListVoices(ctx, &ttspb.ListVoicesRequest{LanguageCode: g.config.LanguageCode})
	if err != nil {
		return nil, fmt.Errorf("failed to list Google voices: %w", err)
	}

	voices := make([]Voice, 0, len(resp.GetVoices()))
	for _, v := range resp.GetVoices() {
		voices = append(voices, Voice{
			VoiceID: v.GetName(),
			Name:    fmt.Sprintf("%s (%s)", v.GetName(), strings.ToLower(v.GetSsmlGender().String())),
		})
	}
	return voices, nil
}

func (g *WebGoogleTTS) Name() string {
	return "Google Cloud Text-to-Speech (Web)"
}

func (g *WebGoogleTTS) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
