package conversation

import (
	"math"
	"testing"
)

func TestComputeMetadataCountsScriptSegmentsOnly(t *testing.T) {
	segments := []Segment{
		{Speaker: "Alice", Text: "Hi!", Emotion: EmotionNeutral},
		{Speaker: "Bob", Text: "Mm-hmm", Emotion: EmotionNeutral, IsInterjection: true},
		{Speaker: "Bob", Text: "Hello there.", Emotion: EmotionHappy},
	}
	meta := computeMetadata(segments, 4.5, 0)

	if meta.SpeakerCount != 2 {
		t.Fatalf("SpeakerCount = %d, want 2", meta.SpeakerCount)
	}
	if meta.WordCount != 3 {
		t.Fatalf("WordCount = %d, want 3", meta.WordCount)
	}
	if meta.DurationSeconds != 4.5 {
		t.Fatalf("DurationSeconds = %v, want 4.5", meta.DurationSeconds)
	}
	if got := meta.EmotionDistribution[EmotionNeutral]; got != 0.5 {
		t.Fatalf("neutral share = %v, want 0.5", got)
	}
	if got := meta.EmotionDistribution[EmotionHappy]; got != 0.5 {
		t.Fatalf("happy share = %v, want 0.5", got)
	}
}

func TestComputeMetadataEmotionDistributionSumsToOne(t *testing.T) {
	segments := []Segment{
		{Speaker: "A", Text: "one two three", Emotion: EmotionExcited},
		{Speaker: "B", Text: "four five", Emotion: EmotionNeutral},
		{Speaker: "A", Text: "six", Emotion: EmotionExcited},
		{Speaker: "C", Text: "seven eight nine ten", Emotion: EmotionSad},
	}
	meta := computeMetadata(segments, 10, 0)
	sum := 0.0
	for _, share := range meta.EmotionDistribution {
		sum += share
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Fatalf("emotion distribution sums to %v, want 1", sum)
	}
}

func TestInteractionComplexityBounds(t *testing.T) {
	cases := []struct {
		name     string
		segments []Segment
	}{
		{"empty", nil},
		{"single", []Segment{{Speaker: "A", Text: "Alone here."}}},
		{"monologue", []Segment{
			{Speaker: "A", Text: "A long uninterrupted first thought goes here today."},
			{Speaker: "A", Text: "Then another long uninterrupted thought follows it up."},
		}},
		{"rapid fire", []Segment{
			{Speaker: "A", Text: "Yes?", Emotion: EmotionConfused},
			{Speaker: "B", Text: "No!", Emotion: EmotionAngry},
			{Speaker: "A", Text: "Why?", Emotion: EmotionSurprised},
			{Speaker: "B", Text: "Because.", Emotion: EmotionConfident},
		}},
	}
	for _, tc := range cases {
		score := interactionComplexity(tc.segments)
		if score < 0 || score > 1 {
			t.Fatalf("%s: complexity %v outside [0,1]", tc.name, score)
		}
	}
}

func TestInteractionComplexitySingleSegmentIsZero(t *testing.T) {
	if got := interactionComplexity([]Segment{{Speaker: "A", Text: "Hello."}}); got != 0 {
		t.Fatalf("single segment complexity = %v, want 0", got)
	}
}

func TestInteractionComplexitySpeakerChangeSubScore(t *testing.T) {
	// Every boundary is a speaker change, so the change-rate term is 1.0
	// and the total must be at least 1/3.
	segments := []Segment{
		{Speaker: "Moderator", Text: "Opening question for the panel tonight everyone?"},
		{Speaker: "Sarah", Text: "I believe strongly in this position overall."},
		{Speaker: "Mike", Text: "Absolutely not, that reasoning cannot stand here!"},
	}
	score := interactionComplexity(segments)
	if score < 1.0/3-1e-9 {
		t.Fatalf("complexity %v below change-rate floor of 1/3", score)
	}
}

func TestInteractionComplexityRanksDynamicHigher(t *testing.T) {
	flat := []Segment{
		{Speaker: "A", Text: "A measured statement of considerable length here.", Emotion: EmotionNeutral},
		{Speaker: "A", Text: "Another measured statement of considerable length follows.", Emotion: EmotionNeutral},
	}
	lively := []Segment{
		{Speaker: "A", Text: "Really?", Emotion: EmotionSurprised},
		{Speaker: "B", Text: "Yes!", Emotion: EmotionExcited},
		{Speaker: "A", Text: "Wow.", Emotion: EmotionHappy, IsInterjection: true},
		{Speaker: "B", Text: "Told you.", Emotion: EmotionConfident},
	}
	if fs, ls := interactionComplexity(flat), interactionComplexity(lively); fs >= ls {
		t.Fatalf("flat conversation scored %v, lively %v; expected lively higher", fs, ls)
	}
}
