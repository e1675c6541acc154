package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Ollama     OllamaConfig     `mapstructure:"ollama"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Tts        TtsConfig        `mapstructure:"tts"`
	ElevenLabs ElevenLabsConfig `mapstructure:"elevenlabs"`
	Google     GoogleConfig     `mapstructure:"google"`
	Session    SessionConfig    `mapstructure:"session"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// seconds to wait for the browser to confirm an audio play request
	PlaybackAckTimeout int `mapstructure:"playback_ack_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LLM provider selection
type LLMConfig struct {
	Provider string `mapstructure:"provider"` // "openai" or "ollama"
}

// OpenAI-compatible chat completion endpoint (Groq by default)
type OpenAIConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"`
	MaxTokens int    `mapstructure:"max_tokens"`
	Timeout   int    `mapstructure:"timeout"`
}

type OllamaConfig struct {
	Host    string `mapstructure:"host"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

type TtsConfig struct {
	Type    string `mapstructure:"type"` // "elevenlabs" or "google"
	Enabled bool   `mapstructure:"enabled"`
	// voice id or approximate voice name selected instead of the first listed voice
	PreferredVoice string `mapstructure:"preferred_voice"`
}

type ElevenLabsConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	BaseURL         string  `mapstructure:"base_url"`
	ModelID         string  `mapstructure:"model_id"`
	Stability       float64 `mapstructure:"stability"`
	SimilarityBoost float64 `mapstructure:"similarity_boost"`
	Timeout         int     `mapstructure:"timeout"`
}

type GoogleConfig struct {
	LanguageCode    string  `mapstructure:"language_code"`
	CredentialsFile string  `mapstructure:"credentials_file"`
	SpeakingRate    float64 `mapstructure:"speaking_rate"`
	Pitch           float64 `mapstructure:"pitch"`
}

type SessionConfig struct {
	Secret     string `mapstructure:"secret"`
	CookieName string `mapstructure:"cookie_name"`
}

// Load reads config.yaml from the working directory (or ./config) and
// overlays VOICECHAT_* environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	// Provider credentials stay server side
	v.BindEnv("openai.api_key", "VOICECHAT_OPENAI_API_KEY", "GROQ_API_KEY")
	v.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	v.BindEnv("elevenlabs.api_key", "VOICECHAT_ELEVENLABS_API_KEY", "ELEVEN_LABS_API_KEY")
	v.BindEnv("google.credentials_file", "GOOGLE_APPLICATION_CREDENTIALS")
	v.BindEnv("llm.provider", "LLM_PROVIDER")
	v.BindEnv("server.port", "PORT")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:8080"})
	v.SetDefault("server.playback_ack_timeout", 5)

	v.SetDefault("log.level", "info")

	v.SetDefault("llm.provider", "openai")

	v.SetDefault("openai.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("openai.model", "llama-3.1-8b-instant")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.timeout", 30)

	v.SetDefault("ollama.host", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.2")
	v.SetDefault("ollama.timeout", 50)

	v.SetDefault("tts.enabled", true)
	v.SetDefault("tts.type", "elevenlabs")

	v.SetDefault("elevenlabs.base_url", "https://api.elevenlabs.io/v1")
	v.SetDefault("elevenlabs.model_id", "eleven_turbo_v2_5")
	v.SetDefault("elevenlabs.stability", 0.5)
	v.SetDefault("elevenlabs.similarity_boost", 0.75)
	v.SetDefault("elevenlabs.timeout", 30)

	v.SetDefault("google.language_code", "en-US")
	v.SetDefault("google.speaking_rate", 1.0)

	v.SetDefault("session.secret", "change-this-voicechat-secret")
	v.SetDefault("session.cookie_name", "voicechat")

	// Allow environment variables
	v.SetEnvPrefix("VOICECHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
