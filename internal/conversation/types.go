package conversation

// SpeakerProfile holds the stable performance parameters for one speaker,
// generated once per run and reused for every segment by that speaker.
type SpeakerProfile struct {
	Name                   string  `json:"name"`
	VoiceID                string  `json:"voice_id"`
	Personality            string  `json:"personality"`
	SpeechRate             float64 `json:"speech_rate"`             // 0.5-2.0
	InterruptionLikelihood float64 `json:"interruption_likelihood"` // 0-1
	PauseBias              float64 `json:"pause_bias"`              // multiplier for pause lengths
}

// Segment is one atomic unit of speech: a script utterance or an injected
// interjection. Immutable once synthesized.
type Segment struct {
	Speaker         string      `json:"speaker"`
	Text            string      `json:"text"`
	Emotion         EmotionType `json:"emotion"`
	PauseBefore     float64     `json:"pause_before"`
	PauseAfter      float64     `json:"pause_after"`
	RateModifier    float64     `json:"rate_modifier"`
	EmphasisWords   []string    `json:"emphasis_words,omitempty"`
	IsInterjection  bool        `json:"is_interjection"`
	BackgroundSound string      `json:"background_sound,omitempty"`
}

// Metadata summarizes a generated conversation.
type Metadata struct {
	DurationSeconds       float64                 `json:"duration_seconds"`
	SpeakerCount          int                     `json:"speaker_count"`
	WordCount             int                     `json:"word_count"`
	InteractionComplexity float64                 `json:"interaction_complexity"`
	EmotionDistribution   map[EmotionType]float64 `json:"emotion_distribution"`
	SegmentsFailed        int                     `json:"segments_failed"`
}

// Request describes one conversation generation run.
type Request struct {
	Script                 string            `json:"script"`
	SpeakerVoiceMap        map[string]string `json:"speaker_voice_map"`
	Style                  ConversationStyle `json:"style"`
	AddNaturalInteractions bool              `json:"add_natural_interactions"`
	IncludeBackgroundSound bool              `json:"include_background_sound"`
	BackgroundSoundVolume  int               `json:"background_sound_volume"` // 10-100, default 50
	EmotionalIntelligence  bool              `json:"emotional_intelligence"`
	// RandomSeed makes profile generation, pause jitter and interaction
	// draws reproducible. Nil seeds from entropy.
	RandomSeed *int64 `json:"random_seed,omitempty"`

	// OnProgress, when set, is invoked once per segment as synthesis
	// completes. Calls arrive from a single goroutine.
	OnProgress func(Progress) `json:"-"`
}

// Progress reports one synthesized (or failed) segment.
type Progress struct {
	SegmentIndex int         `json:"segment_index"`
	SegmentCount int         `json:"segment_count"`
	Speaker      string      `json:"speaker"`
	Emotion      EmotionType `json:"emotion"`
	Failed       bool        `json:"failed"`
}

// Result is the finished conversation: one WAV stream plus metadata.
type Result struct {
	ID       string
	WAV      []byte
	Metadata Metadata
	Segments []Segment
}
