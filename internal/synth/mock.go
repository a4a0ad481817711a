package synth

import (
	"context"
	"strings"

	"github.com/TacImpulse/ultimate-voice-bridge/internal/audio"
)

// MockBackend renders silence sized to the utterance, so pipelines and
// tests run without a model server. Output is deterministic per request.
type MockBackend struct {
	SampleRate int
}

func NewMockBackend() *MockBackend {
	return &MockBackend{SampleRate: audio.DefaultSampleRate}
}

// wordsPerSecond approximates conversational speaking pace.
const wordsPerSecond = 2.5

func (b *MockBackend) Synthesize(_ context.Context, req Request) (audio.Clip, error) {
	words := len(strings.Fields(req.Text))
	if words == 0 {
		return audio.Clip{}, &SynthesisError{VoiceID: req.VoiceID, Code: "empty_text", Detail: "nothing to synthesize"}
	}
	rate := req.RateModifier
	if rate <= 0 {
		rate = 1.0
	}
	seconds := float64(words) / (wordsPerSecond * rate)
	sampleRate := b.SampleRate
	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}
	return audio.Silence(seconds, sampleRate, 1), nil
}
