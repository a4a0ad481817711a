package synth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TacImpulse/ultimate-voice-bridge/internal/audio"
)

func TestHTTPBackendDecodesWAVResponse(t *testing.T) {
	var gotReq ttsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		wav, _ := audio.EncodeWAV(audio.Silence(0.3, 24000, 1))
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write(wav)
	}))
	defer srv.Close()

	b, err := NewHTTPBackend(HTTPConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewHTTPBackend() error = %v", err)
	}
	clip, err := b.Synthesize(context.Background(), Request{Text: "hello there", VoiceID: "vibevoice-alice", RateModifier: 1.1})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if clip.SampleRate != 24000 {
		t.Fatalf("SampleRate = %d, want 24000", clip.SampleRate)
	}
	if gotReq.Voice != "vibevoice-alice" {
		t.Fatalf("request voice = %q, want %q", gotReq.Voice, "vibevoice-alice")
	}
	if gotReq.OutputFormat != "wav" {
		t.Fatalf("request output_format = %q, want wav", gotReq.OutputFormat)
	}
}

func TestHTTPBackendClassifiesStatusCodes(t *testing.T) {
	cases := []struct {
		status        int
		wantTransient bool
	}{
		{http.StatusServiceUnavailable, true},
		{http.StatusBadRequest, false},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "no", tc.status)
		}))
		b, err := NewHTTPBackend(HTTPConfig{BaseURL: srv.URL})
		if err != nil {
			t.Fatalf("NewHTTPBackend() error = %v", err)
		}
		_, err = b.Synthesize(context.Background(), Request{Text: "hi", VoiceID: "v"})
		srv.Close()

		var synthErr *SynthesisError
		if !errors.As(err, &synthErr) {
			t.Fatalf("status %d: error = %v, want *SynthesisError", tc.status, err)
		}
		if synthErr.Retryable() != tc.wantTransient {
			t.Fatalf("status %d: Retryable() = %v, want %v", tc.status, synthErr.Retryable(), tc.wantTransient)
		}
	}
}

func TestHTTPBackendRequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPBackend(HTTPConfig{}); err == nil {
		t.Fatalf("NewHTTPBackend() expected error without base url")
	}
}
