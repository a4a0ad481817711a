package conversation

import (
	"math/rand"
	"strings"
)

const (
	// sameSpeakerPause is the continuation gap when a speaker keeps the floor.
	sameSpeakerPause = 0.2
	minPauseBefore   = 0.1
	minPauseAfter    = 0.2
)

// thinkingConnectives trigger an extra reflective pause after the utterance.
var thinkingConnectives = []string{"however", "therefore", "furthermore", "meanwhile"}

// naturalPauses computes (pause_before, pause_after) for one utterance.
// Rules are additive, then floored, so pauses never go negative.
func naturalPauses(text, speaker, previousSpeaker string, style ConversationStyle, profile *SpeakerProfile, rng *rand.Rand) (float64, float64) {
	table := pausesFor(style)

	before := sameSpeakerPause
	if previousSpeaker != "" && previousSpeaker != speaker {
		before = table.SpeakerChange
	}

	trimmed := strings.TrimSpace(text)
	after := table.SentenceEnd
	switch {
	case strings.HasSuffix(trimmed, "?"):
		after = table.Question
	case strings.HasSuffix(trimmed, "!"):
		after *= 1.2
	case strings.Contains(trimmed, ","):
		if table.Comma > after {
			after = table.Comma
		}
	}

	lower := strings.ToLower(trimmed)
	for _, word := range thinkingConnectives {
		if strings.Contains(lower, word) {
			after += table.Thinking
			break
		}
	}

	if profile != nil {
		after *= profile.PauseBias
	}

	// Seeded jitter keeps runs reproducible while avoiding metronome pacing.
	before += rng.Float64()*0.2 - 0.1
	after += rng.Float64()*0.4 - 0.2

	if before < minPauseBefore {
		before = minPauseBefore
	}
	if after < minPauseAfter {
		after = minPauseAfter
	}
	return before, after
}
