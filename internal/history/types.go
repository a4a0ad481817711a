package history

import (
	"context"
	"time"
)

// RunRecord summarizes one completed conversation generation. The audio
// itself is returned to the caller, not persisted; the record keeps the
// analytics so past runs can be listed and compared.
type RunRecord struct {
	ID                    string    `json:"id"`
	Style                 string    `json:"style"`
	SpeakerCount          int       `json:"speaker_count"`
	WordCount             int       `json:"word_count"`
	DurationSeconds       float64   `json:"duration_seconds"`
	InteractionComplexity float64   `json:"interaction_complexity"`
	SegmentsFailed        int       `json:"segments_failed"`
	CreatedAt             time.Time `json:"created_at"`
}

// Store persists and retrieves generation run history.
type Store interface {
	SaveRun(ctx context.Context, record RunRecord) error
	Recent(ctx context.Context, limit int) ([]RunRecord, error)
	Close() error
}
