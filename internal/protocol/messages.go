package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeGenerateRequest    MessageType = "generate_request"
	TypeClientControl      MessageType = "client_control"
	TypeSegmentProgress    MessageType = "segment_progress"
	TypeGenerationComplete MessageType = "generation_complete"
	TypeErrorEvent         MessageType = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// GenerateRequest asks the server to produce one conversation. The fields
// mirror the HTTP request body so clients can switch transports freely.
type GenerateRequest struct {
	Type                   MessageType       `json:"type"`
	RequestID              string            `json:"request_id"`
	Script                 string            `json:"script"`
	SpeakerVoiceMap        map[string]string `json:"speaker_voice_map"`
	Style                  string            `json:"style"`
	AddNaturalInteractions bool              `json:"add_natural_interactions"`
	IncludeBackgroundSound bool              `json:"include_background_sound"`
	BackgroundSoundVolume  int               `json:"background_sound_volume,omitempty"`
	EmotionalIntelligence  bool              `json:"emotional_intelligence"`
	RandomSeed             *int64            `json:"random_seed,omitempty"`
}

// ClientControl carries out-of-band client actions, currently only "cancel".
type ClientControl struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"request_id"`
	Action    string      `json:"action"`
}

// SegmentProgress streams per-segment completion while synthesis runs.
type SegmentProgress struct {
	Type         MessageType `json:"type"`
	RequestID    string      `json:"request_id"`
	SegmentIndex int         `json:"segment_index"`
	SegmentCount int         `json:"segment_count"`
	Speaker      string      `json:"speaker"`
	Emotion      string      `json:"emotion"`
	Failed       bool        `json:"failed"`
}

// GenerationComplete delivers the finished conversation. Audio travels
// base64-encoded inside the JSON frame, matching the chunk transport the
// realtime endpoints use.
type GenerationComplete struct {
	Type            MessageType              `json:"type"`
	RequestID       string                   `json:"request_id"`
	ConversationID  string                   `json:"conversation_id"`
	Format          string                   `json:"format"`
	AudioBase64     string                   `json:"audio_base64"`
	DurationSeconds float64                  `json:"duration_seconds"`
	SpeakerCount    int                      `json:"speaker_count"`
	WordCount       int                      `json:"word_count"`
	Complexity      float64                  `json:"interaction_complexity"`
	SegmentsFailed  int                      `json:"segments_failed"`
	Emotions        map[string]float64       `json:"emotion_distribution"`
	Segments        []GenerationSegmentBrief `json:"segments"`
}

// GenerationSegmentBrief is the per-segment slice of the final summary;
// clients use it to build transcripts aligned with the audio.
type GenerationSegmentBrief struct {
	Speaker        string  `json:"speaker"`
	Text           string  `json:"text"`
	Emotion        string  `json:"emotion"`
	PauseBefore    float64 `json:"pause_before"`
	PauseAfter     float64 `json:"pause_after"`
	IsInterjection bool    `json:"is_interjection,omitempty"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"request_id"`
	Code      string      `json:"code"`
	Retryable bool        `json:"retryable"`
	Detail    string      `json:"detail"`
}

func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeGenerateRequest:
		var msg GenerateRequest
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Script == "" || len(msg.SpeakerVoiceMap) == 0 {
			return nil, errors.New("invalid generate_request")
		}
		return msg, nil
	case TypeClientControl:
		var msg ClientControl
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Action == "" {
			return nil, errors.New("invalid client_control")
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
