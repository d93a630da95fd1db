package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driving"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/metrics"
)

// Ensure FeedbackService implements the interface.
var _ driving.FeedbackService = (*FeedbackService)(nil)

// FeedbackService appends ratings of answers to a feedback store.
type FeedbackService struct {
	store   driven.FeedbackStore
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewFeedbackService creates a feedback service.
func NewFeedbackService(store driven.FeedbackStore, m *metrics.Metrics) *FeedbackService {
	return &FeedbackService{store: store, metrics: m, now: time.Now}
}

// Record rates the session's last successful interaction.
func (s *FeedbackService) Record(
	ctx context.Context,
	sess *session.Session,
	label domain.FeedbackLabel,
) (*domain.FeedbackRecord, error) {
	if !label.IsValid() {
		return nil, fmt.Errorf("%w: feedback label %q", domain.ErrInvalidInput, label)
	}
	in, ok := sess.LastInteraction()
	if !ok {
		return nil, domain.ErrNoInteraction
	}

	rec := domain.NewFeedbackRecord(uuid.NewString(), s.now().UTC(), label, in)
	if err := s.store.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("append feedback: %w", err)
	}
	s.metrics.FeedbackRecorded(string(label))
	return &rec, nil
}

// Stats returns the totals per label and the most recent records.
func (s *FeedbackService) Stats(ctx context.Context) (*domain.FeedbackStats, error) {
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count feedback: %w", err)
	}
	recent, err := s.store.Recent(ctx, domain.RecentFeedbackLimit)
	if err != nil {
		return nil, fmt.Errorf("recent feedback: %w", err)
	}

	stats := &domain.FeedbackStats{
		Ups:    counts[domain.FeedbackUp],
		Downs:  counts[domain.FeedbackDown],
		Recent: recent,
	}
	stats.Total = stats.Ups + stats.Downs
	return stats, nil
}
