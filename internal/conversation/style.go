package conversation

import (
	"fmt"
	"strings"
)

// ConversationStyle drives pacing, profile generation and ambience.
type ConversationStyle string

const (
	StyleNatural   ConversationStyle = "natural"
	StyleInterview ConversationStyle = "interview"
	StyleDebate    ConversationStyle = "debate"
	StylePodcast   ConversationStyle = "podcast"
	StyleCasual    ConversationStyle = "casual"
	StyleFormal    ConversationStyle = "formal"
	StyleDramatic  ConversationStyle = "dramatic"
)

// Styles enumerates every supported conversation style, in catalog order.
func Styles() []ConversationStyle {
	return []ConversationStyle{
		StyleNatural, StyleInterview, StyleDebate, StylePodcast,
		StyleCasual, StyleFormal, StyleDramatic,
	}
}

// ParseStyle resolves a caller-supplied style name. Empty input maps to
// natural.
func ParseStyle(s string) (ConversationStyle, error) {
	v := ConversationStyle(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return StyleNatural, nil
	}
	for _, known := range Styles() {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown conversation style %q", s)
}

// pauseTable holds the five timing constants for one style, in seconds.
type pauseTable struct {
	SentenceEnd   float64
	Comma         float64
	Question      float64
	SpeakerChange float64
	Interruption  float64
	Thinking      float64
}

// Timing tables are data, not behavior: new styles are new entries here.
var stylePauses = map[ConversationStyle]pauseTable{
	StyleNatural:   {SentenceEnd: 0.8, Comma: 0.3, Question: 1.2, SpeakerChange: 1.0, Interruption: 0.1, Thinking: 0.5},
	StyleInterview: {SentenceEnd: 0.6, Comma: 0.2, Question: 2.0, SpeakerChange: 1.5, Interruption: 0.05, Thinking: 0.8},
	StyleDebate:    {SentenceEnd: 0.4, Comma: 0.15, Question: 1.0, SpeakerChange: 0.3, Interruption: 0.0, Thinking: 0.2},
	StylePodcast:   {SentenceEnd: 1.0, Comma: 0.4, Question: 1.5, SpeakerChange: 1.8, Interruption: 0.02, Thinking: 1.0},
	StyleCasual:    {SentenceEnd: 0.5, Comma: 0.2, Question: 0.8, SpeakerChange: 0.6, Interruption: 0.2, Thinking: 0.4},
	StyleFormal:    {SentenceEnd: 0.9, Comma: 0.35, Question: 1.4, SpeakerChange: 1.6, Interruption: 0.0, Thinking: 0.9},
	StyleDramatic:  {SentenceEnd: 1.1, Comma: 0.45, Question: 1.8, SpeakerChange: 1.5, Interruption: 0.05, Thinking: 1.2},
}

func pausesFor(style ConversationStyle) pauseTable {
	if t, ok := stylePauses[style]; ok {
		return t
	}
	return stylePauses[StyleNatural]
}

// profileRange bounds the style-conditioned randomization of speaker
// performance attributes.
type profileRange struct {
	RateMin, RateMax float64
	IntMin, IntMax   float64
	BiasMin, BiasMax float64
}

var styleProfiles = map[ConversationStyle]profileRange{
	StyleDebate:   {RateMin: 1.1, RateMax: 1.3, IntMin: 0.3, IntMax: 0.5, BiasMin: 0.5, BiasMax: 0.8},
	StylePodcast:  {RateMin: 0.9, RateMax: 1.1, IntMin: 0.01, IntMax: 0.05, BiasMin: 1.2, BiasMax: 1.5},
	StyleCasual:   {RateMin: 0.8, RateMax: 1.2, IntMin: 0.1, IntMax: 0.3, BiasMin: 0.8, BiasMax: 1.2},
	StyleDramatic: {RateMin: 0.85, RateMax: 1.15, IntMin: 0.05, IntMax: 0.2, BiasMin: 1.0, BiasMax: 1.3},
}

var defaultProfileRange = profileRange{RateMin: 0.9, RateMax: 1.1, IntMin: 0.05, IntMax: 0.15, BiasMin: 0.9, BiasMax: 1.1}

func profileRangeFor(style ConversationStyle) profileRange {
	if r, ok := styleProfiles[style]; ok {
		return r
	}
	return defaultProfileRange
}

// emotionSensitivity is the minimum pattern-hit count an emotion needs to
// be selected over neutral. Formal conversations demand stronger evidence.
func emotionSensitivity(style ConversationStyle) int {
	if style == StyleFormal {
		return 2
	}
	return 1
}

// ambience pairs a named background bed with its base gain in dB.
type ambience struct {
	Name     string
	BaseGain float64
}

var styleAmbience = map[ConversationStyle]ambience{
	StylePodcast:   {Name: "studio_ambience", BaseGain: -25},
	StyleInterview: {Name: "office_ambience", BaseGain: -23},
	StyleCasual:    {Name: "cafe_ambience", BaseGain: -20},
	StyleDebate:    {Name: "audience_murmur", BaseGain: -28},
	StyleFormal:    {Name: "conference_room", BaseGain: -27},
	StyleDramatic:  {Name: "low_drone", BaseGain: -18},
}

func ambienceFor(style ConversationStyle) (ambience, bool) {
	a, ok := styleAmbience[style]
	return a, ok
}
