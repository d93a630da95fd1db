package driving

import (
	"context"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
)

// KnowledgeBaseService builds the session's knowledge base.
type KnowledgeBaseService interface {
	// Build loads, chunks and embeds the requested sources and atomically
	// replaces the session index. Per-source failures are reported in the
	// returned report; the index is left untouched when the build fails.
	Build(ctx context.Context, sess *session.Session, req domain.BuildRequest) (*domain.BuildReport, error)

	// Sources returns the source stats of the session's current index.
	Sources(sess *session.Session) []domain.SourceStat
}
