package storage

import (
	"context"
	"sync"

	"github.com/ozodf/news-verifier/internal/models"
)

// MemoryStore keeps feedback records in process memory. Used in tests
// and as the store for the in-memory run mode; records do not survive
// a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.FeedbackRecord

	// FailAppend and FailCount force errors for fallback-path tests.
	FailAppend error
	FailCount  error
	RemoteTier bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Name() string { return "memory" }
func (s *MemoryStore) Remote() bool { return s.RemoteTier }
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Append(ctx context.Context, rec models.FeedbackRecord) error {
	if s.FailAppend != nil {
		return s.FailAppend
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	if s.FailCount != nil {
		return 0, s.FailCount
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records), nil
}

// Records returns a copy of the stored records in insertion order.
func (s *MemoryStore) Records() []models.FeedbackRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.FeedbackRecord, len(s.records))
	copy(out, s.records)
	return out
}
