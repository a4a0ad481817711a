package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want :8080", cfg.BindAddr)
	}
	if cfg.SynthBackend != "auto" {
		t.Fatalf("SynthBackend = %q, want auto", cfg.SynthBackend)
	}
	if cfg.FailurePolicy != "retry" {
		t.Fatalf("FailurePolicy = %q, want retry", cfg.FailurePolicy)
	}
	if cfg.SynthesisWorkers != 2 {
		t.Fatalf("SynthesisWorkers = %d, want 2", cfg.SynthesisWorkers)
	}
	if cfg.TTSTimeout != 60*time.Second {
		t.Fatalf("TTSTimeout = %v, want 60s", cfg.TTSTimeout)
	}
	if cfg.AllowAnyOrigin {
		t.Fatal("AllowAnyOrigin should default to false")
	}
}

func TestLoadExplicitValues(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9191")
	t.Setenv("SYNTH_BACKEND", "http")
	t.Setenv("TTS_BASE_URL", "http://localhost:7777")
	t.Setenv("SYNTHESIS_WORKERS", "4")
	t.Setenv("SYNTHESIS_RETRY_BACKOFF", "500ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9191" {
		t.Fatalf("BindAddr = %q, want :9191", cfg.BindAddr)
	}
	if cfg.TTSBaseURL != "http://localhost:7777" {
		t.Fatalf("TTSBaseURL = %q", cfg.TTSBaseURL)
	}
	if cfg.SynthesisWorkers != 4 {
		t.Fatalf("SynthesisWorkers = %d, want 4", cfg.SynthesisWorkers)
	}
	if cfg.RetryBackoff != 500*time.Millisecond {
		t.Fatalf("RetryBackoff = %v, want 500ms", cfg.RetryBackoff)
	}
}

func TestLoadRejectsInvalidCombinations(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"http backend without url", map[string]string{"SYNTH_BACKEND": "http"}},
		{"unknown backend", map[string]string{"SYNTH_BACKEND": "carrier-pigeon"}},
		{"unknown failure policy", map[string]string{"SYNTHESIS_FAILURE_POLICY": "pray"}},
		{"fallback without voice", map[string]string{"SYNTHESIS_FAILURE_POLICY": "fallback"}},
		{"zero workers", map[string]string{"SYNTHESIS_WORKERS": "0"}},
		{"bad duration", map[string]string{"TTS_TIMEOUT": "soon"}},
		{"tiny timeout", map[string]string{"TTS_TIMEOUT": "10ms"}},
		{"bad bool", map[string]string{"APP_ALLOW_ANY_ORIGIN": "sure"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setCoreEnvEmpty(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("Load() expected error")
			}
		})
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"SYNTH_BACKEND",
		"TTS_BASE_URL",
		"TTS_API_KEY",
		"TTS_TIMEOUT",
		"TTS_FALLBACK_BASE_URL",
		"SYNTHESIS_WORKERS",
		"SYNTHESIS_FAILURE_POLICY",
		"SYNTHESIS_FALLBACK_VOICE_ID",
		"SYNTHESIS_RETRY_BACKOFF",
		"DATABASE_URL",
		"HISTORY_LIMIT",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
