package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driving"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/metrics"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService answers questions, grounded on the session index when present.
type AnswerService struct {
	pipeline *Pipeline
	gen      Generation
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewAnswerService creates an answer service.
func NewAnswerService(pipeline *Pipeline, gen Generation, m *metrics.Metrics) *AnswerService {
	return &AnswerService{
		pipeline: pipeline,
		gen:      gen,
		metrics:  m,
		now:      time.Now,
	}
}

// Answer generates an answer to question.
//
// Without an index the question goes to the LLM as is and UsedRetrieval is
// false. Otherwise the retrieved context is rendered into the chat prompt.
// Failures are recorded in the session history as failed turns.
func (s *AnswerService) Answer(ctx context.Context, sess *session.Session, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	answer, err := s.answer(ctx, sess.Index(), question)
	if err != nil {
		sess.RecordFailure(question, err, s.now())
		return nil, err
	}

	sess.RecordAnswer(domain.Interaction{
		Question:      question,
		Answer:        answer.Text,
		UsedRetrieval: answer.UsedRetrieval,
		Sources:       answer.Sources,
		At:            s.now(),
	})
	s.metrics.Answered(answer.UsedRetrieval)
	return answer, nil
}

func (s *AnswerService) answer(ctx context.Context, idx *session.KnowledgeIndex, question string) (*domain.Answer, error) {
	if idx == nil {
		text, err := generate(ctx, s.gen, question, s.metrics)
		if err != nil {
			return nil, err
		}
		return &domain.Answer{Text: text, Sources: []string{}}, nil
	}

	rc, err := s.pipeline.Context(ctx, idx, question)
	if err != nil {
		return nil, err
	}

	prompt, err := renderPrompt(s.gen.Prompts, driven.PromptChat, map[string]string{
		"context": rc.Text,
		"input":   question,
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

// Retrieve returns the top-k chunks for query without generating.
func (s *AnswerService) Retrieve(
	ctx context.Context,
	sess *session.Session,
	query string,
	k int,
) ([]domain.ScoredChunk, error) {
	return s.pipeline.Retriever().Retrieve(ctx, sess.Index(), query, k)
}
