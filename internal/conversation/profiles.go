package conversation

import "math/rand"

// personalities are assigned round-robin in speaker-appearance order so a
// two-speaker run always gets contrasting traits.
var personalities = []string{"energetic", "calm", "authoritative", "friendly", "analytical", "creative"}

// profileGenerator creates and caches one SpeakerProfile per distinct
// speaker label for the duration of a single run. Voice identity comes from
// the caller verbatim; only the performance attributes are synthesized, by
// style-conditioned draws from the run's RNG.
type profileGenerator struct {
	style ConversationStyle
	rng   *rand.Rand
	cache map[string]*SpeakerProfile
	order []string
}

func newProfileGenerator(style ConversationStyle, rng *rand.Rand) *profileGenerator {
	return &profileGenerator{
		style: style,
		rng:   rng,
		cache: make(map[string]*SpeakerProfile),
	}
}

func (g *profileGenerator) profileFor(speaker, voiceID string) *SpeakerProfile {
	if p, ok := g.cache[speaker]; ok {
		return p
	}

	r := profileRangeFor(g.style)
	p := &SpeakerProfile{
		Name:                   speaker,
		VoiceID:                voiceID,
		Personality:            personalities[len(g.order)%len(personalities)],
		SpeechRate:             g.uniform(r.RateMin, r.RateMax),
		InterruptionLikelihood: g.uniform(r.IntMin, r.IntMax),
		PauseBias:              g.uniform(r.BiasMin, r.BiasMax),
	}
	g.cache[speaker] = p
	g.order = append(g.order, speaker)
	return p
}

func (g *profileGenerator) lookup(speaker string) *SpeakerProfile {
	return g.cache[speaker]
}

func (g *profileGenerator) count() int { return len(g.order) }

func (g *profileGenerator) uniform(min, max float64) float64 {
	return min + g.rng.Float64()*(max-min)
}
