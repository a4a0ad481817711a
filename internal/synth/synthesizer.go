package synth

import (
	"context"
	"fmt"

	"github.com/TacImpulse/ultimate-voice-bridge/internal/audio"
)

// Request carries everything a backend needs to render one utterance.
type Request struct {
	Text         string
	VoiceID      string
	RateModifier float64 // 1.0 = backend default speed
	Emotion      string  // advisory; backends without emotion control ignore it
}

// Synthesizer is the single capability the conversation engine consumes.
// Any TTS backend (neural model server, cloud API, mock) implements it.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (audio.Clip, error)
}

// SynthesisError reports a failed backend call for one utterance.
type SynthesisError struct {
	VoiceID   string
	Code      string
	Detail    string
	Transient bool
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed (voice=%s, code=%s): %s", e.VoiceID, e.Code, e.Detail)
}

func (e *SynthesisError) Retryable() bool { return e.Transient }
