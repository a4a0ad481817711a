package conversation

import (
	"hash/fnv"

	"github.com/TacImpulse/ultimate-voice-bridge/internal/audio"
)

// Boundary gap policy, applied consistently everywhere: lead-in silence of
// the first synthesized segment's pause_before, then one gap per boundary
// of max(prev.pause_after, next.pause_before), then tail silence of the
// last segment's pause_after.
func assembleTimeline(segments []Segment, clips []*audio.Clip, req Request) (audio.Clip, error) {
	type voiced struct {
		seg  Segment
		clip audio.Clip
	}
	var ordered []voiced
	for i, clip := range clips {
		if clip == nil {
			continue
		}
		ordered = append(ordered, voiced{seg: segments[i], clip: *clip})
	}
	if len(ordered) == 0 {
		return audio.Clip{}, &AssemblyError{Detail: "no synthesized segments"}
	}

	// Synthesis backends are not guaranteed to return uniform formats, so
	// everything is normalized to the first clip's sample rate, mono.
	targetRate := ordered[0].clip.SampleRate
	if targetRate <= 0 {
		targetRate = audio.DefaultSampleRate
	}
	const targetChannels = 1

	var parts []audio.Clip
	parts = append(parts, audio.Silence(ordered[0].seg.PauseBefore, targetRate, targetChannels))
	for i, v := range ordered {
		normalized, err := audio.Normalize(v.clip, targetRate, targetChannels)
		if err != nil {
			return audio.Clip{}, &AssemblyError{Detail: err.Error()}
		}
		parts = append(parts, normalized)

		gap := v.seg.PauseAfter
		if i < len(ordered)-1 {
			if next := ordered[i+1].seg.PauseBefore; next > gap {
				gap = next
			}
		}
		parts = append(parts, audio.Silence(gap, targetRate, targetChannels))
	}

	mixed, err := audio.Concat(parts...)
	if err != nil {
		return audio.Clip{}, &AssemblyError{Detail: err.Error()}
	}

	if req.IncludeBackgroundSound {
		if name := backgroundName(segments); name != "" {
			mixed = audio.OverlayNoise(mixed, ambienceGain(req.Style, req.BackgroundSoundVolume), ambienceSeed(name))
		}
	}
	return mixed, nil
}

func backgroundName(segments []Segment) string {
	for _, seg := range segments {
		if seg.BackgroundSound != "" {
			return seg.BackgroundSound
		}
	}
	return ""
}

// ambienceGain maps the 10-100 user volume scale onto ±15 dB around the
// style's base gain, clamped so the bed never drowns the speech.
func ambienceGain(style ConversationStyle, volume int) float64 {
	base := -25.0
	if a, ok := ambienceFor(style); ok {
		base = a.BaseGain
	}
	if volume <= 0 {
		volume = 50
	}
	gain := base + float64(volume-50)*0.3
	if gain > -5 {
		gain = -5
	}
	if gain < -50 {
		gain = -50
	}
	return gain
}

// ambienceSeed keeps a given ambience bed identical across runs.
func ambienceSeed(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}
