package conversation

import "math/rand"

// reactionBank holds the short acknowledgements an engaged listener drops
// between turns.
var reactionBank = []string{"Mm-hmm", "Right", "Exactly", "Oh", "Wow", "Really?", "I see"}

// addNaturalInteractions splices short reactive interjections between
// adjacent segments where the speaker changes, drawn against the incoming
// speaker's interruption likelihood. Original segments are never altered;
// this is the only place new segments enter the timeline.
func addNaturalInteractions(segments []Segment, profiles *profileGenerator, style ConversationStyle, rng *rand.Rand) []Segment {
	if style == StyleFormal {
		return segments
	}

	out := make([]Segment, 0, len(segments))
	for i, seg := range segments {
		out = append(out, seg)
		if i >= len(segments)-1 {
			continue
		}
		next := segments[i+1]
		if next.Speaker == seg.Speaker {
			continue
		}
		profile := profiles.lookup(next.Speaker)
		if profile == nil {
			continue
		}
		if rng.Float64() >= profile.InterruptionLikelihood {
			continue
		}

		out = append(out, Segment{
			Speaker:        next.Speaker,
			Text:           reactionBank[rng.Intn(len(reactionBank))],
			Emotion:        EmotionNeutral,
			PauseBefore:    0.1,
			PauseAfter:     0.3,
			RateModifier:   profile.SpeechRate * 1.2, // reactions come out a touch faster
			IsInterjection: true,
		})
	}
	return out
}
