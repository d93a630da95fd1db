// Package memory provides in-memory implementations of driven stores.
package memory

import (
	"context"
	"sync"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
)

// Ensure FeedbackStore implements the interface.
var _ driven.FeedbackStore = (*FeedbackStore)(nil)

// FeedbackStore is an in-memory implementation of driven.FeedbackStore.
// Records are lost when the process exits.
type FeedbackStore struct {
	mu      sync.RWMutex
	records []domain.FeedbackRecord
}

// NewFeedbackStore creates a new in-memory feedback store.
func NewFeedbackStore() *FeedbackStore {
	return &FeedbackStore{}
}

// Append stores one record.
func (s *FeedbackStore) Append(_ context.Context, rec domain.FeedbackRecord) error {
	if rec.ID == "" || !rec.Label.IsValid() {
		return domain.ErrInvalidInput
	}
	rec.Sources = append([]string(nil), rec.Sources...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// Recent returns up to limit records, newest first.
func (s *FeedbackStore) Recent(_ context.Context, limit int) ([]domain.FeedbackRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]domain.FeedbackRecord, 0, max(limit, 0))
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// Counts returns the number of records per label.
func (s *FeedbackStore) Counts(_ context.Context) (map[domain.FeedbackLabel]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.FeedbackLabel]int)
	for _, r := range s.records {
		counts[r.Label]++
	}
	return counts, nil
}

// Close is a no-op for the memory store.
func (s *FeedbackStore) Close() error {
	return nil
}
