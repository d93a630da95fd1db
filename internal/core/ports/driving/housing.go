package driving

import (
	"context"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
)

// HousingService produces housing recommendations from preferences.
type HousingService interface {
	// Plan generates a housing plan grounded on the session's knowledge base.
	Plan(ctx context.Context, sess *session.Session, prefs domain.HousingPreferences) (*domain.Answer, error)
}
