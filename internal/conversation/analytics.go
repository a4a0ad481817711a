package conversation

import "strings"

// shortResponseWords is the cutoff below which a segment reads as a
// reaction rather than a full thought.
const shortResponseWords = 5

// computeMetadata summarizes the finalized segment list. Word count,
// speaker count and emotion distribution cover script-derived segments
// only; interaction complexity considers the full timeline, interjections
// included.
func computeMetadata(segments []Segment, durationSeconds float64, segmentsFailed int) Metadata {
	meta := Metadata{
		DurationSeconds:     durationSeconds,
		EmotionDistribution: make(map[EmotionType]float64),
		SegmentsFailed:      segmentsFailed,
	}

	speakers := make(map[string]bool)
	emotionCounts := make(map[EmotionType]int)
	scriptSegments := 0
	for _, seg := range segments {
		if seg.IsInterjection {
			continue
		}
		scriptSegments++
		speakers[seg.Speaker] = true
		emotionCounts[seg.Emotion]++
		meta.WordCount += len(strings.Fields(seg.Text))
	}
	meta.SpeakerCount = len(speakers)

	for emotion, count := range emotionCounts {
		meta.EmotionDistribution[emotion] = float64(count) / float64(scriptSegments)
	}

	meta.InteractionComplexity = interactionComplexity(segments)
	return meta
}

// interactionComplexity scores how dynamic a conversation is: the average
// of speaker-change rate, emotion variety and interaction density, each
// clamped to [0,1]. Degenerate single-segment timelines score 0.
func interactionComplexity(segments []Segment) float64 {
	if len(segments) < 2 {
		return 0
	}

	speakerChanges := 0
	emotionsUsed := make(map[EmotionType]bool)
	interactions := 0
	previousSpeaker := ""

	for _, seg := range segments {
		if previousSpeaker != "" && seg.Speaker != previousSpeaker {
			speakerChanges++
		}
		previousSpeaker = seg.Speaker
		emotionsUsed[seg.Emotion] = true

		if strings.Contains(seg.Text, "?") {
			interactions++
		}
		if seg.IsInterjection || len(strings.Fields(seg.Text)) < shortResponseWords {
			interactions++
		}
	}

	changeRate := clamp01(float64(speakerChanges) / float64(len(segments)-1))
	emotionVariety := clamp01(float64(len(emotionsUsed)) / float64(len(Emotions())))
	interactionDensity := clamp01(float64(interactions) / float64(len(segments)))

	return clamp01((changeRate + emotionVariety + interactionDensity) / 3)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
