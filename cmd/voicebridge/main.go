package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/TacImpulse/ultimate-voice-bridge/internal/config"
	"github.com/TacImpulse/ultimate-voice-bridge/internal/conversation"
	"github.com/TacImpulse/ultimate-voice-bridge/internal/history"
	"github.com/TacImpulse/ultimate-voice-bridge/internal/httpapi"
	"github.com/TacImpulse/ultimate-voice-bridge/internal/observability"
	"github.com/TacImpulse/ultimate-voice-bridge/internal/synth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)
	window := observability.NewStageWindow(256)

	ctx := context.Background()
	store, err := history.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("history store init failed: %v", err)
	}
	defer store.Close()

	backend, resolved := buildBackend(cfg)
	cfg.SynthBackend = resolved

	engine := conversation.NewEngine(backend, conversation.EngineConfig{
		Workers:         cfg.SynthesisWorkers,
		FailurePolicy:   conversation.FailurePolicy(cfg.FailurePolicy),
		FallbackVoiceID: cfg.FallbackVoiceID,
		RetryBackoff:    cfg.RetryBackoff,
	})

	api := httpapi.New(cfg, engine, store, metrics, window)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}

// buildBackend resolves the synthesis backend per config. Auto prefers the
// HTTP backend when a base URL is configured and falls back to mock
// otherwise; a secondary URL wraps both in sticky failover.
func buildBackend(cfg config.Config) (synth.Synthesizer, string) {
	mode := strings.ToLower(strings.TrimSpace(cfg.SynthBackend))
	if mode == "" {
		mode = "auto"
	}

	newHTTP := func(baseURL string) synth.Synthesizer {
		b, err := synth.NewHTTPBackend(synth.HTTPConfig{
			BaseURL: baseURL,
			APIKey:  cfg.TTSAPIKey,
			Timeout: cfg.TTSTimeout,
		})
		if err != nil {
			log.Fatalf("tts backend init failed: %v", err)
		}
		return b
	}

	switch mode {
	case "mock":
		log.Printf("synthesis backend: mock")
		return synth.NewMockBackend(), "mock"
	case "http", "auto":
		if cfg.TTSBaseURL == "" {
			if mode == "http" {
				log.Fatalf("SYNTH_BACKEND=http but TTS_BASE_URL is not set")
			}
			log.Printf("synthesis backend: mock (no TTS_BASE_URL configured)")
			return synth.NewMockBackend(), "mock"
		}
		primary := newHTTP(cfg.TTSBaseURL)
		if cfg.TTSFallbackBaseURL != "" {
			log.Printf("synthesis backend: http with failover (%s -> %s)", cfg.TTSBaseURL, cfg.TTSFallbackBaseURL)
			return synth.NewFailoverBackend(primary, newHTTP(cfg.TTSFallbackBaseURL), cfg.FallbackVoiceID), "http"
		}
		log.Printf("synthesis backend: http (%s)", cfg.TTSBaseURL)
		return primary, "http"
	default:
		log.Fatalf("invalid SYNTH_BACKEND: %q (expected auto|http|mock)", cfg.SynthBackend)
		return nil, ""
	}
}
