package conversation

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TacImpulse/ultimate-voice-bridge/internal/audio"
	"github.com/TacImpulse/ultimate-voice-bridge/internal/reliability"
	"github.com/TacImpulse/ultimate-voice-bridge/internal/synth"
)

// FailurePolicy decides what happens when one segment fails to synthesize.
type FailurePolicy string

const (
	// PolicyRetry retries the segment once when the error looks transient.
	PolicyRetry FailurePolicy = "retry"
	// PolicyFallback retries once with the configured neutral fallback voice.
	PolicyFallback FailurePolicy = "fallback"
	// PolicySkip drops the segment after the first failure.
	PolicySkip FailurePolicy = "skip"
)

// EngineConfig tunes the orchestration around the synthesis backend.
type EngineConfig struct {
	// Workers bounds concurrent synthesis calls; backends have limited
	// accelerator concurrency.
	Workers         int
	FailurePolicy   FailurePolicy
	FallbackVoiceID string
	RetryBackoff    time.Duration
}

// Engine turns a dialogue script into one mixed, multi-speaker audio
// stream. It is a pure function of its inputs apart from the injected
// synthesis backend.
type Engine struct {
	backend synth.Synthesizer
	cfg     EngineConfig
}

func NewEngine(backend synth.Synthesizer, cfg EngineConfig) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.FailurePolicy == "" {
		cfg.FailurePolicy = PolicyRetry
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 150 * time.Millisecond
	}
	return &Engine{backend: backend, cfg: cfg}
}

// Generate runs the full pipeline: parse, profile, enhance, synthesize,
// assemble, summarize. Validation errors surface before any synthesis
// call; per-segment synthesis failures are absorbed unless every segment
// fails.
func (e *Engine) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Style == "" {
		req.Style = StyleNatural
	}
	if req.BackgroundSoundVolume <= 0 {
		req.BackgroundSoundVolume = 50
	}

	utterances, err := ParseScript(req.Script)
	if err != nil {
		return nil, err
	}
	if err := validateVoiceMap(utterances, req.SpeakerVoiceMap); err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	if req.RandomSeed != nil {
		seed = *req.RandomSeed
	}
	rng := rand.New(rand.NewSource(seed))

	profiles := newProfileGenerator(req.Style, rng)
	for _, u := range utterances {
		profiles.profileFor(u.Speaker, req.SpeakerVoiceMap[u.Speaker])
	}

	segments := e.planSegments(utterances, profiles, req, rng)
	if req.AddNaturalInteractions {
		segments = addNaturalInteractions(segments, profiles, req.Style, rng)
	}

	clips, failed, err := e.synthesizeAll(ctx, segments, profiles, req)
	if err != nil {
		return nil, err
	}
	if failed == len(segments) {
		return nil, fmt.Errorf("%w (%d attempted)", ErrAllSegmentsFailed, len(segments))
	}

	mixed, err := assembleTimeline(segments, clips, req)
	if err != nil {
		return nil, err
	}
	wav, err := audio.EncodeWAV(mixed)
	if err != nil {
		return nil, &AssemblyError{Detail: err.Error()}
	}

	return &Result{
		ID:       uuid.NewString(),
		WAV:      wav,
		Metadata: computeMetadata(segments, mixed.Duration(), failed),
		Segments: segments,
	}, nil
}

// validateVoiceMap fails fast when the mapping and the script disagree in
// either direction, naming the offending speaker label.
func validateVoiceMap(utterances []utterance, voiceMap map[string]string) error {
	inScript := make(map[string]bool)
	for _, u := range utterances {
		if !inScript[u.Speaker] {
			inScript[u.Speaker] = true
			if voiceMap[u.Speaker] == "" {
				return &ProfileError{Speaker: u.Speaker, Reason: "no voice mapping for speaker appearing in script"}
			}
		}
	}

	extra := make([]string, 0)
	for label := range voiceMap {
		if !inScript[label] {
			extra = append(extra, label)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return &ProfileError{Speaker: extra[0], Reason: "voice mapping references speaker not present in script"}
	}
	return nil
}

func (e *Engine) planSegments(utterances []utterance, profiles *profileGenerator, req Request, rng *rand.Rand) []Segment {
	background := ""
	if req.IncludeBackgroundSound {
		if a, ok := ambienceFor(req.Style); ok {
			background = a.Name
		}
	}

	segments := make([]Segment, 0, len(utterances))
	previousSpeaker := ""
	for _, u := range utterances {
		emotion := EmotionNeutral
		if req.EmotionalIntelligence {
			emotion = DetectEmotion(u.Text, req.Style)
		}

		profile := profiles.lookup(u.Speaker)
		before, after := naturalPauses(u.Text, u.Speaker, previousSpeaker, req.Style, profile, rng)

		segments = append(segments, Segment{
			Speaker:         u.Speaker,
			Text:            u.Text,
			Emotion:         emotion,
			PauseBefore:     before,
			PauseAfter:      after,
			RateModifier:    profile.SpeechRate,
			EmphasisWords:   EmphasisWords(u.Text, emotion),
			BackgroundSound: background,
		})
		previousSpeaker = u.Speaker
	}
	return segments
}

type synthResult struct {
	idx  int
	clip *audio.Clip
	err  error
}

// synthesizeAll dispatches segments to a bounded worker pool and
// reassembles results by original index. Cancellation aborts at segment
// boundaries; no partial audio escapes.
func (e *Engine) synthesizeAll(ctx context.Context, segments []Segment, profiles *profileGenerator, req Request) ([]*audio.Clip, int, error) {
	clips := make([]*audio.Clip, len(segments))
	jobs := make(chan int)
	results := make(chan synthResult, len(segments))

	var wg sync.WaitGroup
	for w := 0; w < e.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results <- synthResult{idx: idx, err: err}
					continue
				}
				clip, err := e.synthesizeSegment(ctx, segments[idx], profiles)
				if err != nil {
					results <- synthResult{idx: idx, err: err}
					continue
				}
				results <- synthResult{idx: idx, clip: &clip}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range segments {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	failed := 0
	received := 0
	for received < len(segments) {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, 0, ctx.Err()
		case r := <-results:
			received++
			if r.err != nil {
				failed++
				log.Printf("segment %d (%s) synthesis failed: %v", r.idx, segments[r.idx].Speaker, r.err)
			} else {
				clips[r.idx] = r.clip
			}
			if req.OnProgress != nil {
				req.OnProgress(Progress{
					SegmentIndex: r.idx,
					SegmentCount: len(segments),
					Speaker:      segments[r.idx].Speaker,
					Emotion:      segments[r.idx].Emotion,
					Failed:       r.err != nil,
				})
			}
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return clips, failed, nil
}

func (e *Engine) synthesizeSegment(ctx context.Context, seg Segment, profiles *profileGenerator) (audio.Clip, error) {
	profile := profiles.lookup(seg.Speaker)
	if profile == nil {
		return audio.Clip{}, &synth.SynthesisError{Code: "missing_profile", Detail: "no profile for speaker " + seg.Speaker}
	}

	text := CleanForTTS(seg.Text)
	if text == "" {
		return audio.Clip{}, &synth.SynthesisError{VoiceID: profile.VoiceID, Code: "empty_after_cleanup", Detail: "utterance had no speakable text"}
	}

	synthReq := synth.Request{
		Text:         text,
		VoiceID:      profile.VoiceID,
		RateModifier: seg.RateModifier,
		Emotion:      string(seg.Emotion),
	}
	clip, err := e.backend.Synthesize(ctx, synthReq)
	if err == nil {
		return clip, nil
	}
	if ctx.Err() != nil {
		return audio.Clip{}, ctx.Err()
	}
	if e.cfg.FailurePolicy == PolicySkip {
		return audio.Clip{}, err
	}
	if e.cfg.FailurePolicy == PolicyRetry && !reliability.IsRetryable(err) {
		return audio.Clip{}, err
	}

	retry := synthReq
	if e.cfg.FailurePolicy == PolicyFallback && e.cfg.FallbackVoiceID != "" {
		retry.VoiceID = e.cfg.FallbackVoiceID
	}

	select {
	case <-ctx.Done():
		return audio.Clip{}, ctx.Err()
	case <-time.After(reliability.ExponentialBackoff(0, e.cfg.RetryBackoff, 2*time.Second)):
	}
	return e.backend.Synthesize(ctx, retry)
}
