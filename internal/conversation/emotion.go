package conversation

import (
	"regexp"
	"strings"
)

// EmotionType classifies the emotional tone of one segment.
type EmotionType string

const (
	EmotionNeutral    EmotionType = "neutral"
	EmotionHappy      EmotionType = "happy"
	EmotionExcited    EmotionType = "excited"
	EmotionSad        EmotionType = "sad"
	EmotionAngry      EmotionType = "angry"
	EmotionSurprised  EmotionType = "surprised"
	EmotionConfused   EmotionType = "confused"
	EmotionConfident  EmotionType = "confident"
	EmotionNervous    EmotionType = "nervous"
	EmotionWhispering EmotionType = "whispering"
)

// Emotions enumerates every emotion the engine can assign.
func Emotions() []EmotionType {
	return []EmotionType{
		EmotionNeutral, EmotionHappy, EmotionExcited, EmotionSad,
		EmotionAngry, EmotionSurprised, EmotionConfused, EmotionConfident,
		EmotionNervous, EmotionWhispering,
	}
}

type emotionRule struct {
	emotion  EmotionType
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

// emotionRules is an ordered priority table: the first emotion whose
// patterns accumulate enough hits wins. Detection is lexical and
// deterministic on purpose; callers must be able to explain every tag.
var emotionRules = []emotionRule{
	{EmotionExcited, compileAll(
		`\b(wow|amazing|incredible|fantastic|awesome)\b`,
		`!{2,}`,
		`\b(really|so|very) [a-z]+\b`,
	)},
	{EmotionAngry, compileAll(
		`\b(angry|furious|outraged|ridiculous|unacceptable)\b`,
		`\b(damn|hell|stupid|idiotic)\b`,
	)},
	{EmotionSurprised, compileAll(
		`\b(no way|unbelievable)\b`,
		`\b(what|really|seriously)\?`,
		`[?!]{2,}`,
	)},
	{EmotionHappy, compileAll(
		`\b(happy|glad|pleased|delighted|cheerful)\b`,
		`\b(haha|hehe|lol)\b`,
	)},
	{EmotionSad, compileAll(
		`\b(sad|disappointed|upset|sorry|unfortunately)\b`,
		`\b(oh no|that's terrible|how awful)\b`,
	)},
	{EmotionConfident, compileAll(
		`\b(absolutely|definitely|certainly|of course|exactly)\b`,
		`\b(i know|i'm sure|i believe|believe strongly|without doubt)\b`,
	)},
	{EmotionConfused, compileAll(
		`\b(confused|don't understand|what do you mean|huh)\b`,
		`\b(um|uh|er|well)\b.*\?`,
	)},
	{EmotionNervous, compileAll(
		`\b(um|uh|er|you know|i think maybe)\b`,
		`\b(not sure|might be|possibly|perhaps)\b`,
	)},
	{EmotionWhispering, compileAll(
		`\(whisper(s|ing)?\)`,
		`\b(whisper|quietly|softly|between us)\b`,
	)},
}

// DetectEmotion classifies one utterance. The style sets how many pattern
// hits an emotion needs; below that threshold the segment stays neutral.
func DetectEmotion(text string, style ConversationStyle) EmotionType {
	lower := strings.ToLower(text)
	minHits := emotionSensitivity(style)

	for _, rule := range emotionRules {
		hits := 0
		for _, p := range rule.patterns {
			hits += len(p.FindAllString(lower, -1))
		}
		if hits >= minHits {
			return rule.emotion
		}
	}
	return EmotionNeutral
}
