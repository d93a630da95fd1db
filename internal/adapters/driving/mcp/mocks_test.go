package mcp

import (
	"context"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
)

// mockKnowledgeService is a mock implementation of driving.KnowledgeBaseService.
type mockKnowledgeService struct {
	report  *domain.BuildReport
	err     error
	sources []domain.SourceStat
	lastReq domain.BuildRequest
}

func (m *mockKnowledgeService) Build(
	_ context.Context,
	_ *session.Session,
	req domain.BuildRequest,
) (*domain.BuildReport, error) {
	m.lastReq = req
	return m.report, m.err
}

func (m *mockKnowledgeService) Sources(_ *session.Session) []domain.SourceStat {
	if m.sources == nil {
		return []domain.SourceStat{}
	}
	return m.sources
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer       *domain.Answer
	chunks       []domain.ScoredChunk
	err          error
	lastQuestion string
	lastK        int
}

func (m *mockAnswerService) Answer(_ context.Context, _ *session.Session, question string) (*domain.Answer, error) {
	m.lastQuestion = question
	return m.answer, m.err
}

func (m *mockAnswerService) Retrieve(
	_ context.Context,
	_ *session.Session,
	query string,
	k int,
) ([]domain.ScoredChunk, error) {
	m.lastQuestion = query
	m.lastK = k
	return m.chunks, m.err
}

// mockHousingService is a mock implementation of driving.HousingService.
type mockHousingService struct {
	plan      *domain.Answer
	err       error
	lastPrefs domain.HousingPreferences
}

func (m *mockHousingService) Plan(
	_ context.Context,
	_ *session.Session,
	prefs domain.HousingPreferences,
) (*domain.Answer, error) {
	m.lastPrefs = prefs
	return m.plan, m.err
}

// mockFeedbackService is a mock implementation of driving.FeedbackService.
type mockFeedbackService struct {
	record    *domain.FeedbackRecord
	stats     *domain.FeedbackStats
	err       error
	lastLabel domain.FeedbackLabel
}

func (m *mockFeedbackService) Record(
	_ context.Context,
	_ *session.Session,
	label domain.FeedbackLabel,
) (*domain.FeedbackRecord, error) {
	m.lastLabel = label
	return m.record, m.err
}

func (m *mockFeedbackService) Stats(_ context.Context) (*domain.FeedbackStats, error) {
	return m.stats, m.err
}
