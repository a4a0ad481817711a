package conversation

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/TacImpulse/ultimate-voice-bridge/internal/audio"
	"github.com/TacImpulse/ultimate-voice-bridge/internal/synth"
)

// scriptedBackend produces short silent clips and fails on demand, counting
// every call so tests can assert validation happens before synthesis.
type scriptedBackend struct {
	mu      sync.Mutex
	calls   int
	failFor func(req synth.Request) error
}

func (s *scriptedBackend) Synthesize(ctx context.Context, req synth.Request) (audio.Clip, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return audio.Clip{}, err
	}
	if s.failFor != nil {
		if err := s.failFor(req); err != nil {
			return audio.Clip{}, err
		}
	}
	return audio.Silence(0.1, audio.DefaultSampleRate, 1), nil
}

func (s *scriptedBackend) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func seedPtr(v int64) *int64 { return &v }

func TestGenerateTwoSpeakerConversation(t *testing.T) {
	backend := &scriptedBackend{}
	engine := NewEngine(backend, EngineConfig{Workers: 1})

	res, err := engine.Generate(context.Background(), Request{
		Script: "Alice: Hi!\nBob: Hello there.",
		SpeakerVoiceMap: map[string]string{
			"Alice": "voice-a",
			"Bob":   "voice-b",
		},
		Style:                 StyleNatural,
		EmotionalIntelligence: true,
		RandomSeed:            seedPtr(1),
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(res.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(res.Segments))
	}
	if res.Metadata.SpeakerCount != 2 {
		t.Fatalf("SpeakerCount = %d, want 2", res.Metadata.SpeakerCount)
	}
	if res.Metadata.WordCount != 3 {
		t.Fatalf("WordCount = %d, want 3", res.Metadata.WordCount)
	}
	if res.Metadata.SegmentsFailed != 0 {
		t.Fatalf("SegmentsFailed = %d, want 0", res.Metadata.SegmentsFailed)
	}
	if res.Metadata.EmotionDistribution[EmotionNeutral] != 1.0 {
		t.Fatalf("neutral share = %v, want 1.0", res.Metadata.EmotionDistribution[EmotionNeutral])
	}
	if res.ID == "" {
		t.Fatal("missing result ID")
	}
	if len(res.WAV) == 0 {
		t.Fatal("empty WAV output")
	}
	if _, err := audio.DecodeWAV(res.WAV); err != nil {
		t.Fatalf("output is not decodable WAV: %v", err)
	}
	if res.Metadata.DurationSeconds <= 0 {
		t.Fatalf("DurationSeconds = %v, want > 0", res.Metadata.DurationSeconds)
	}
	if backend.callCount() != 2 {
		t.Fatalf("backend calls = %d, want 2", backend.callCount())
	}
}

func TestGenerateDebateDetectsConfidence(t *testing.T) {
	backend := &scriptedBackend{}
	engine := NewEngine(backend, EngineConfig{Workers: 2})

	res, err := engine.Generate(context.Background(), Request{
		Script: "Moderator: Opening question for the panel?\n" +
			"Sarah: I believe strongly in this position.\n" +
			"Mike: Absolutely not, that cannot stand!",
		SpeakerVoiceMap: map[string]string{
			"Moderator": "voice-m",
			"Sarah":     "voice-s",
			"Mike":      "voice-k",
		},
		Style:                 StyleDebate,
		EmotionalIntelligence: true,
		RandomSeed:            seedPtr(2),
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	script := 0
	confident := 0
	for _, seg := range res.Segments {
		if seg.IsInterjection {
			continue
		}
		script++
		if seg.Emotion == EmotionConfident {
			confident++
		}
	}
	if script != 3 {
		t.Fatalf("script segments = %d, want 3", script)
	}
	if confident == 0 {
		t.Fatalf("no confident segments detected: %+v", res.Segments)
	}
	// Every turn changes speaker, so complexity carries at least that term.
	if res.Metadata.InteractionComplexity < 1.0/3-1e-9 {
		t.Fatalf("complexity = %v, want >= 1/3", res.Metadata.InteractionComplexity)
	}
}

func TestGenerateEmptyScriptFailsBeforeSynthesis(t *testing.T) {
	backend := &scriptedBackend{}
	engine := NewEngine(backend, EngineConfig{})

	_, err := engine.Generate(context.Background(), Request{
		Script:          "   \n  ",
		SpeakerVoiceMap: map[string]string{"Alice": "voice-a"},
	})
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if backend.callCount() != 0 {
		t.Fatalf("backend called %d times before validation failure", backend.callCount())
	}
}

func TestGenerateMissingVoiceMappingFailsBeforeSynthesis(t *testing.T) {
	backend := &scriptedBackend{}
	engine := NewEngine(backend, EngineConfig{})

	_, err := engine.Generate(context.Background(), Request{
		Script:          "Alice: Hi!\nBob: Hello there.",
		SpeakerVoiceMap: map[string]string{"Alice": "voice-a"},
	})
	var profErr *ProfileError
	if !errors.As(err, &profErr) {
		t.Fatalf("error = %v, want *ProfileError", err)
	}
	if profErr.Speaker != "Bob" {
		t.Fatalf("offending speaker = %q, want Bob", profErr.Speaker)
	}
	if backend.callCount() != 0 {
		t.Fatalf("backend called %d times before validation failure", backend.callCount())
	}
}

func TestGenerateUnknownMappedSpeakerFails(t *testing.T) {
	engine := NewEngine(&scriptedBackend{}, EngineConfig{})
	_, err := engine.Generate(context.Background(), Request{
		Script: "Alice: Hi!",
		SpeakerVoiceMap: map[string]string{
			"Alice":   "voice-a",
			"Phantom": "voice-p",
		},
	})
	var profErr *ProfileError
	if !errors.As(err, &profErr) {
		t.Fatalf("error = %v, want *ProfileError", err)
	}
	if profErr.Speaker != "Phantom" {
		t.Fatalf("offending speaker = %q, want Phantom", profErr.Speaker)
	}
}

func TestGenerateSurvivesSingleSegmentFailure(t *testing.T) {
	backend := &scriptedBackend{
		failFor: func(req synth.Request) error {
			if strings.Contains(req.Text, "doomed") {
				return &synth.SynthesisError{VoiceID: req.VoiceID, Code: "voice_error", Detail: "backend rejected input"}
			}
			return nil
		},
	}
	engine := NewEngine(backend, EngineConfig{Workers: 1, FailurePolicy: PolicySkip})

	res, err := engine.Generate(context.Background(), Request{
		Script: "Alice: First line works.\nBob: This one is doomed.\nAlice: Third line works.",
		SpeakerVoiceMap: map[string]string{
			"Alice": "voice-a",
			"Bob":   "voice-b",
		},
		RandomSeed: seedPtr(3),
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Metadata.SegmentsFailed != 1 {
		t.Fatalf("SegmentsFailed = %d, want 1", res.Metadata.SegmentsFailed)
	}
	if len(res.Segments) != 3 {
		t.Fatalf("segments = %d, want 3 (failed segment stays in the plan)", len(res.Segments))
	}
	if len(res.WAV) == 0 {
		t.Fatal("empty WAV despite two successful segments")
	}
	// Skip policy means the failing segment is attempted exactly once.
	if backend.callCount() != 3 {
		t.Fatalf("backend calls = %d, want 3", backend.callCount())
	}
}

func TestGenerateAllSegmentsFailed(t *testing.T) {
	backend := &scriptedBackend{
		failFor: func(req synth.Request) error {
			return &synth.SynthesisError{Code: "voice_error", Detail: "down"}
		},
	}
	engine := NewEngine(backend, EngineConfig{Workers: 1, FailurePolicy: PolicySkip})

	_, err := engine.Generate(context.Background(), Request{
		Script:          "Alice: Hi!",
		SpeakerVoiceMap: map[string]string{"Alice": "voice-a"},
	})
	if !errors.Is(err, ErrAllSegmentsFailed) {
		t.Fatalf("error = %v, want ErrAllSegmentsFailed", err)
	}
}

func TestGenerateRetriesTransientFailure(t *testing.T) {
	var mu sync.Mutex
	failures := 1
	backend := &scriptedBackend{}
	backend.failFor = func(req synth.Request) error {
		mu.Lock()
		defer mu.Unlock()
		if failures > 0 {
			failures--
			return &synth.SynthesisError{Code: "overloaded", Detail: "try again", Transient: true}
		}
		return nil
	}
	engine := NewEngine(backend, EngineConfig{Workers: 1, FailurePolicy: PolicyRetry, RetryBackoff: 1})

	res, err := engine.Generate(context.Background(), Request{
		Script:          "Alice: Hi!",
		SpeakerVoiceMap: map[string]string{"Alice": "voice-a"},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Metadata.SegmentsFailed != 0 {
		t.Fatalf("SegmentsFailed = %d, want 0 after retry", res.Metadata.SegmentsFailed)
	}
	if backend.callCount() != 2 {
		t.Fatalf("backend calls = %d, want 2 (first attempt plus retry)", backend.callCount())
	}
}

func TestGenerateFallbackVoiceOnRetry(t *testing.T) {
	var mu sync.Mutex
	var voices []string
	backend := &scriptedBackend{}
	backend.failFor = func(req synth.Request) error {
		mu.Lock()
		defer mu.Unlock()
		voices = append(voices, req.VoiceID)
		if len(voices) == 1 {
			return &synth.SynthesisError{VoiceID: req.VoiceID, Code: "voice_error", Detail: "bad voice"}
		}
		return nil
	}
	engine := NewEngine(backend, EngineConfig{
		Workers:         1,
		FailurePolicy:   PolicyFallback,
		FallbackVoiceID: "voice-neutral",
		RetryBackoff:    1,
	})

	_, err := engine.Generate(context.Background(), Request{
		Script:          "Alice: Hi!",
		SpeakerVoiceMap: map[string]string{"Alice": "voice-a"},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(voices) != 2 || voices[0] != "voice-a" || voices[1] != "voice-neutral" {
		t.Fatalf("voice sequence = %v, want [voice-a voice-neutral]", voices)
	}
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	run := func() *Result {
		engine := NewEngine(&scriptedBackend{}, EngineConfig{Workers: 1})
		res, err := engine.Generate(context.Background(), Request{
			Script: "Alice: What do you think about this?\n" +
				"Bob: However, I see it differently.\n" +
				"Alice: Interesting point there.",
			SpeakerVoiceMap: map[string]string{
				"Alice": "voice-a",
				"Bob":   "voice-b",
			},
			Style:                  StyleCasual,
			AddNaturalInteractions: true,
			EmotionalIntelligence:  true,
			RandomSeed:             seedPtr(42),
		})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		return res
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first.Segments, second.Segments) {
		t.Fatalf("segment plans diverged for the same seed:\n%+v\nvs\n%+v", first.Segments, second.Segments)
	}
	if first.Metadata.InteractionComplexity != second.Metadata.InteractionComplexity {
		t.Fatalf("complexity diverged: %v vs %v",
			first.Metadata.InteractionComplexity, second.Metadata.InteractionComplexity)
	}
	if first.ID == second.ID {
		t.Fatal("run IDs should be unique per run")
	}
}

func TestGeneratePausesNeverNegative(t *testing.T) {
	engine := NewEngine(&scriptedBackend{}, EngineConfig{Workers: 2})
	res, err := engine.Generate(context.Background(), Request{
		Script: "Alice: First thought, with commas.\nBob: A question for you?\nAlice: Wow!",
		SpeakerVoiceMap: map[string]string{
			"Alice": "voice-a",
			"Bob":   "voice-b",
		},
		Style:                  StyleDramatic,
		AddNaturalInteractions: true,
		EmotionalIntelligence:  true,
		RandomSeed:             seedPtr(7),
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	for i, seg := range res.Segments {
		if seg.PauseBefore < 0 || seg.PauseAfter < 0 {
			t.Fatalf("segment %d pauses (%v, %v) went negative", i, seg.PauseBefore, seg.PauseAfter)
		}
	}
	if c := res.Metadata.InteractionComplexity; c < 0 || c > 1 {
		t.Fatalf("complexity %v outside [0,1]", c)
	}
}

func TestGenerateReportsProgress(t *testing.T) {
	var mu sync.Mutex
	var seen []Progress
	engine := NewEngine(&scriptedBackend{}, EngineConfig{Workers: 2})

	_, err := engine.Generate(context.Background(), Request{
		Script: "Alice: Hi!\nBob: Hello there.",
		SpeakerVoiceMap: map[string]string{
			"Alice": "voice-a",
			"Bob":   "voice-b",
		},
		RandomSeed: seedPtr(9),
		OnProgress: func(p Progress) {
			mu.Lock()
			seen = append(seen, p)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Fatalf("progress events = %d, want 2", len(seen))
	}
	for _, p := range seen {
		if p.SegmentCount != 2 {
			t.Fatalf("SegmentCount = %d, want 2", p.SegmentCount)
		}
		if p.Failed {
			t.Fatalf("unexpected failed progress event: %+v", p)
		}
	}
}

func TestGenerateCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(&scriptedBackend{}, EngineConfig{Workers: 1})
	_, err := engine.Generate(ctx, Request{
		Script:          "Alice: Hi!\nBob: Hello there.",
		SpeakerVoiceMap: map[string]string{"Alice": "voice-a", "Bob": "voice-b"},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestGenerateBackgroundSoundLengthensNothing(t *testing.T) {
	base := Request{
		Script:          "Alice: Hi!\nBob: Hello there.",
		SpeakerVoiceMap: map[string]string{"Alice": "voice-a", "Bob": "voice-b"},
		Style:           StylePodcast,
		RandomSeed:      seedPtr(11),
	}

	plain, err := NewEngine(&scriptedBackend{}, EngineConfig{Workers: 1}).Generate(context.Background(), base)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	withBed := base
	withBed.IncludeBackgroundSound = true
	withBed.BackgroundSoundVolume = 60
	bedded, err := NewEngine(&scriptedBackend{}, EngineConfig{Workers: 1}).Generate(context.Background(), withBed)
	if err != nil {
		t.Fatalf("Generate() with background error = %v", err)
	}

	// The ambience bed mixes under the voices without changing length.
	if plain.Metadata.DurationSeconds != bedded.Metadata.DurationSeconds {
		t.Fatalf("duration changed with background: %v vs %v",
			plain.Metadata.DurationSeconds, bedded.Metadata.DurationSeconds)
	}
	if bedded.Segments[0].BackgroundSound == "" {
		t.Fatal("background sound name missing from segments")
	}
}
