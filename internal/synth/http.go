package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/TacImpulse/ultimate-voice-bridge/internal/audio"
	"github.com/TacImpulse/ultimate-voice-bridge/internal/reliability"
)

// HTTPConfig configures a backend speaking the voice-bridge TTS protocol:
// POST {base}/api/v1/tts with a JSON body, WAV bytes back.
type HTTPConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPBackend synthesizes speech through an external TTS HTTP service
// (VibeVoice-style model server or compatible).
type HTTPBackend struct {
	cfg    HTTPConfig
	client *http.Client
}

func NewHTTPBackend(cfg HTTPConfig) (*HTTPBackend, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("tts backend url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &HTTPBackend{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type ttsRequest struct {
	Text         string  `json:"text"`
	Voice        string  `json:"voice"`
	Speed        float64 `json:"speed,omitempty"`
	Emotion      string  `json:"emotion,omitempty"`
	OutputFormat string  `json:"output_format"`
}

func (b *HTTPBackend) Synthesize(ctx context.Context, req Request) (audio.Clip, error) {
	if strings.TrimSpace(req.Text) == "" {
		return audio.Clip{}, &SynthesisError{VoiceID: req.VoiceID, Code: "empty_text", Detail: "nothing to synthesize"}
	}
	if strings.TrimSpace(req.VoiceID) == "" {
		return audio.Clip{}, &SynthesisError{Code: "missing_voice", Detail: "voice_id is required"}
	}

	payload, err := json.Marshal(ttsRequest{
		Text:         req.Text,
		Voice:        req.VoiceID,
		Speed:        req.RateModifier,
		Emotion:      req.Emotion,
		OutputFormat: "wav",
	})
	if err != nil {
		return audio.Clip{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.BaseURL+"/api/v1/tts", bytes.NewReader(payload))
	if err != nil {
		return audio.Clip{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(b.cfg.APIKey) != "" {
		httpReq.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
	}

	res, err := b.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return audio.Clip{}, ctx.Err()
		}
		return audio.Clip{}, &SynthesisError{VoiceID: req.VoiceID, Code: "backend_unreachable", Detail: err.Error(), Transient: true}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 64<<20))
	if err != nil {
		return audio.Clip{}, &SynthesisError{VoiceID: req.VoiceID, Code: "read_body", Detail: err.Error(), Transient: true}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return audio.Clip{}, &SynthesisError{
			VoiceID:   req.VoiceID,
			Code:      fmt.Sprintf("backend_status_%d", res.StatusCode),
			Detail:    strings.TrimSpace(string(body)),
			Transient: reliability.IsRetryableHTTPStatus(res.StatusCode),
		}
	}

	clip, err := audio.DecodeWAV(body)
	if err != nil {
		return audio.Clip{}, &SynthesisError{VoiceID: req.VoiceID, Code: "invalid_audio", Detail: err.Error()}
	}
	return clip, nil
}
