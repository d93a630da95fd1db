package driving

import (
	"context"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
)

// FeedbackService records ratings of answers.
type FeedbackService interface {
	// Record rates the session's last successful interaction.
	Record(ctx context.Context, sess *session.Session, label domain.FeedbackLabel) (*domain.FeedbackRecord, error)

	// Stats returns aggregate feedback counts and the most recent records.
	Stats(ctx context.Context) (*domain.FeedbackStats, error)
}
