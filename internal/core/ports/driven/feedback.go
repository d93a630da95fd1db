package driven

import (
	"context"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

// FeedbackStore is an append-only log of answer ratings.
type FeedbackStore interface {
	// Append stores one record.
	Append(ctx context.Context, rec domain.FeedbackRecord) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]domain.FeedbackRecord, error)

	// Counts returns the number of records per label.
	Counts(ctx context.Context) (map[domain.FeedbackLabel]int, error)

	// Close releases resources.
	Close() error
}
