package driving

import (
	"context"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
)

// AnswerService answers questions against the session's knowledge base.
type AnswerService interface {
	// Answer generates an answer. Without an index the question is answered
	// without context and UsedRetrieval is false.
	Answer(ctx context.Context, sess *session.Session, question string) (*domain.Answer, error)

	// Retrieve returns the top-k chunks for a query without generating.
	Retrieve(ctx context.Context, sess *session.Session, query string, k int) ([]domain.ScoredChunk, error)
}
