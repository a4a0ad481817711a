package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process run history for local/dev use.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs []RunRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) SaveRun(_ context.Context, record RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	s.runs = append(s.runs, record)
	return nil
}

func (s *InMemoryStore) Recent(_ context.Context, limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.runs) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(s.runs) {
		limit = len(s.runs)
	}

	// Newest first, like the postgres query orders them.
	out := make([]RunRecord, 0, limit)
	for i := len(s.runs) - 1; i >= len(s.runs)-limit; i-- {
		out = append(out, s.runs[i])
	}
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
