package synth

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/TacImpulse/ultimate-voice-bridge/internal/audio"
)

// NewFailoverBackend builds a synthesizer that prefers the primary backend
// and automatically switches to fallback when a primary call fails. Once
// fallback succeeds, it stays active until fallback fails; then primary is
// retried. When fallbackVoiceID is set, calls routed to the fallback
// backend use it instead of the requested voice.
func NewFailoverBackend(primary, fallback Synthesizer, fallbackVoiceID string) Synthesizer {
	return &failoverBackend{
		primary:         primary,
		fallback:        fallback,
		fallbackVoiceID: strings.TrimSpace(fallbackVoiceID),
	}
}

type failoverBackend struct {
	fallbackActive  atomic.Bool
	primary         Synthesizer
	fallback        Synthesizer
	fallbackVoiceID string
}

func (b *failoverBackend) Synthesize(ctx context.Context, req Request) (audio.Clip, error) {
	if b.fallbackActive.Load() {
		clip, fbErr := b.fallback.Synthesize(ctx, b.fallbackRequest(req))
		if fbErr == nil {
			return clip, nil
		}
		// Fallback failed after being active; try primary again.
		clip, prErr := b.primary.Synthesize(ctx, req)
		if prErr == nil {
			b.fallbackActive.Store(false)
			return clip, nil
		}
		return audio.Clip{}, fmt.Errorf("tts fallback failed: %v; tts primary failed: %w", fbErr, prErr)
	}

	clip, prErr := b.primary.Synthesize(ctx, req)
	if prErr == nil {
		return clip, nil
	}
	clip, fbErr := b.fallback.Synthesize(ctx, b.fallbackRequest(req))
	if fbErr != nil {
		return audio.Clip{}, fmt.Errorf("tts primary failed: %v; tts fallback failed: %w", prErr, fbErr)
	}
	b.fallbackActive.Store(true)
	return clip, nil
}

func (b *failoverBackend) fallbackRequest(req Request) Request {
	if b.fallbackVoiceID != "" {
		req.VoiceID = b.fallbackVoiceID
	}
	return req
}
