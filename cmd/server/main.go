// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/tahcohcat/voicechat-web/config"
	"github.com/tahcohcat/voicechat-web/internal/api"
	"github.com/tahcohcat/voicechat-web/internal/audio"
	"github.com/tahcohcat/voicechat-web/internal/llm"
	"github.com/tahcohcat/voicechat-web/internal/logger"
	"github.com/tahcohcat/voicechat-web/internal/tts"
	"github.com/tahcohcat/voicechat-web/internal/websocket"
	"github.com/tahcohcat/voicechat-web/web"
)

func main() {
	// Load config from files and environment variables
	cfg, err := config.Load()
	if err != nil {
		logger.New().WithError(err).Error("Failed to load config")
		os.Exit(1)
	}
	logger.SetGlobalLevel(logger.ParseLevel(cfg.Log.Level))
	log := logger.New()

	chatClient, err := llm.NewLLMClient(cfg)
	if err != nil {
		log.WithError(err).Error("Failed to initialize chat provider")
		os.Exit(1)
	}

	// A missing model is reported, not fatal; the first chat request surfaces it again
	checkCtx, cancelCheck := context.WithTimeout(context.Background(), 10*time.Second)
	if err := chatClient.IsModelAvailable(checkCtx); err != nil {
		log.WithError(err).Warn("Chat model not confirmed available")
	}
	cancelCheck()

	ttsProvider, err := tts.NewProvider(cfg)
	if err != nil {
		log.WithError(err).Error("Failed to initialize TTS provider")
		os.Exit(1)
	}
	if closer, ok := ttsProvider.(io.Closer); ok {
		defer closer.Close()
	}

	model := cfg.OpenAI.Model
	if llm.Provider(cfg.LLM.Provider) == llm.ProviderOllama {
		model = cfg.Ollama.Model
	}

	registry := audio.NewRegistry()
	prefs := api.NewVoicePreferences(&cfg.Session)

	hub := websocket.NewHub(websocket.Deps{
		Chat:               chatClient,
		TTS:                ttsProvider,
		Audio:              registry,
		Preferences:        prefs,
		Model:              model,
		PreferredVoice:     cfg.Tts.PreferredVoice,
		PlaybackAckTimeout: time.Duration(cfg.Server.PlaybackAckTimeout) * time.Second,
		AllowedOrigins:     cfg.Server.AllowedOrigins,
	})

	page, err := web.NewPage("Voice Chat")
	if err != nil {
		log.WithError(err).Error("Failed to load page template")
		os.Exit(1)
	}

	handler := api.NewHandler(chatClient, model, ttsProvider, registry, prefs)

	r := mux.NewRouter()
	api.RegisterRoutes(r.PathPrefix("/api/v1").Subrouter(), handler)
	websocket.RegisterRoutes(r, hub)
	r.HandleFunc("/healthz", handler.Health).Methods("GET")
	r.Handle("/", page).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	go func() {
		log.Info(fmt.Sprintf("🎙️ Voice chat server starting on port %s", cfg.Server.Port))
		log.Info(fmt.Sprintf("📍 Open http://localhost:%s in your browser", cfg.Server.Port))
		log.Info(fmt.Sprintf("🔊 TTS: %s, chat: %s (%s)", ttsProvider.Name(), cfg.LLM.Provider, model))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Failed to start server")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	stopHub()
	<-hub.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	log.Success("Server stopped")
}
