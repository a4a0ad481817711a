package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the conversation service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	// SynthBackend selects the synthesis backend: "auto", "http" or "mock".
	// Auto uses HTTP when TTS_BASE_URL is set, mock otherwise.
	SynthBackend string

	TTSBaseURL         string
	TTSAPIKey          string
	TTSTimeout         time.Duration
	TTSFallbackBaseURL string

	SynthesisWorkers int
	FailurePolicy    string
	FallbackVoiceID  string
	RetryBackoff     time.Duration

	DatabaseURL  string
	HistoryLimit int
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:           envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:   envOrDefault("APP_METRICS_NAMESPACE", "voicebridge"),
		AllowAnyOrigin:     false,
		SynthBackend:       envOrDefault("SYNTH_BACKEND", "auto"),
		TTSBaseURL:         stringsTrimSpace("TTS_BASE_URL"),
		TTSAPIKey:          stringsTrimSpace("TTS_API_KEY"),
		TTSFallbackBaseURL: stringsTrimSpace("TTS_FALLBACK_BASE_URL"),
		FailurePolicy:      envOrDefault("SYNTHESIS_FAILURE_POLICY", "retry"),
		FallbackVoiceID:    stringsTrimSpace("SYNTHESIS_FALLBACK_VOICE_ID"),
		DatabaseURL:        stringsTrimSpace("DATABASE_URL"),
		SynthesisWorkers:   2,
		HistoryLimit:       20,
		ShutdownTimeout:    15 * time.Second,
		TTSTimeout:         60 * time.Second,
		RetryBackoff:       150 * time.Millisecond,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.TTSTimeout, err = durationFromEnv("TTS_TIMEOUT", cfg.TTSTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.RetryBackoff, err = durationFromEnv("SYNTHESIS_RETRY_BACKOFF", cfg.RetryBackoff)
	if err != nil {
		return Config{}, err
	}
	cfg.SynthesisWorkers, err = intFromEnv("SYNTHESIS_WORKERS", cfg.SynthesisWorkers)
	if err != nil {
		return Config{}, err
	}
	cfg.HistoryLimit, err = intFromEnv("HISTORY_LIMIT", cfg.HistoryLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	switch cfg.SynthBackend {
	case "auto", "http", "mock":
	default:
		return Config{}, fmt.Errorf("SYNTH_BACKEND must be auto, http or mock")
	}
	switch cfg.FailurePolicy {
	case "retry", "fallback", "skip":
	default:
		return Config{}, fmt.Errorf("SYNTHESIS_FAILURE_POLICY must be retry, fallback or skip")
	}
	if cfg.SynthBackend == "http" && cfg.TTSBaseURL == "" {
		return Config{}, fmt.Errorf("TTS_BASE_URL is required when SYNTH_BACKEND=http")
	}
	if cfg.FailurePolicy == "fallback" && cfg.FallbackVoiceID == "" {
		return Config{}, fmt.Errorf("SYNTHESIS_FALLBACK_VOICE_ID is required when SYNTHESIS_FAILURE_POLICY=fallback")
	}
	if cfg.SynthesisWorkers <= 0 {
		return Config{}, fmt.Errorf("SYNTHESIS_WORKERS must be positive")
	}
	if cfg.HistoryLimit <= 0 {
		return Config{}, fmt.Errorf("HISTORY_LIMIT must be positive")
	}
	if cfg.TTSTimeout < time.Second {
		return Config{}, fmt.Errorf("TTS_TIMEOUT must be at least 1s")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
