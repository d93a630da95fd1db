package services

import (
	"context"
	"time"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driving"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/metrics"
)

// Ensure HousingService implements the interface.
var _ driving.HousingService = (*HousingService)(nil)

// HousingService turns housing preferences into a grounded recommendation.
type HousingService struct {
	pipeline *Pipeline
	gen      Generation
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewHousingService creates a housing service.
func NewHousingService(pipeline *Pipeline, gen Generation, m *metrics.Metrics) *HousingService {
	return &HousingService{pipeline: pipeline, gen: gen, metrics: m, now: time.Now}
}

// Plan retrieves housing context for prefs and generates a plan with the
// housing prompt. It needs a knowledge base.
func (s *HousingService) Plan(
	ctx context.Context,
	sess *session.Session,
	prefs domain.HousingPreferences,
) (*domain.Answer, error) {
	query := prefs.Query()

	answer, err := s.plan(ctx, sess.Index(), prefs, query)
	if err != nil {
		sess.RecordFailure(query, err, s.now())
		return nil, err
	}

	sess.RecordAnswer(domain.Interaction{
		Question:      query,
		Answer:        answer.Text,
		UsedRetrieval: true,
		Sources:       answer.Sources,
		At:            s.now(),
	})
	s.metrics.Answered(true)
	return answer, nil
}

func (s *HousingService) plan(
	ctx context.Context,
	idx *session.KnowledgeIndex,
	prefs domain.HousingPreferences,
	query string,
) (*domain.Answer, error) {
	if idx == nil {
		return nil, domain.NewRetrievalError(domain.ErrIndexAbsent, nil)
	}

	rc, err := s.pipeline.Context(ctx, idx, query)
	if err != nil {
		return nil, err
	}

	prompt, err := renderPrompt(s.gen.Prompts, driven.PromptHousing, map[string]string{
		"preferences": prefs.Describe(),
		"context":     rc.Text,
		"input":       query,
	})
	if err != nil {
		return nil, err
	}

	text, err := generate(ctx, s.gen, prompt, s.metrics)
	if err != nil {
		return nil, err
	}
	return &domain.Answer{
		Text:          text,
		UsedRetrieval: true,
		Sources:       rc.Sources,
		Warnings:      rc.Warnings,
	}, nil
}
