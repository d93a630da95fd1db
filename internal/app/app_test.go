package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/ai"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/config/file"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/embedding/hashing"
	feedbackmemory "github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/storage/memory"
	vectormemory "github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/vector/memory"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
)

type echoLLM struct {
	lastPrompt string
}

func (l *echoLLM) Generate(_ context.Context, req driven.GenerateRequest) (string, error) {
	l.lastPrompt = req.Prompt
	return "answer", nil
}

func (l *echoLLM) ModelName() string            { return "echo" }
func (l *echoLLM) Ping(_ context.Context) error { return nil }
func (l *echoLLM) Close() error                 { return nil }

func testSettings() domain.Settings {
	s := domain.DefaultSettings()
	s.Feedback.Path = domain.FeedbackInMemory
	return s
}

func testPrompts(t *testing.T) driven.PromptStore {
	t.Helper()
	prompts, err := file.NewPromptStore(t.TempDir())
	require.NoError(t, err)
	return prompts
}

func TestNew_WiresServices(t *testing.T) {
	a, err := New(testSettings(), testPrompts(t))
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Session)
	assert.NotNil(t, a.Metrics)
	assert.NotNil(t, a.Services.Knowledge)
	assert.NotNil(t, a.Services.Answers)
	assert.NotNil(t, a.Services.Housing)
	assert.NotNil(t, a.Services.Feedback)
	// No DeepSeek key in the default settings.
	assert.NotEmpty(t, a.Warnings)
}

func TestNew_RejectsInvalidSettings(t *testing.T) {
	s := testSettings()
	s.RAG.ChunkOverlap = s.RAG.ChunkSize

	_, err := New(s, testPrompts(t))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNew_RequiresPrompts(t *testing.T) {
	_, err := New(testSettings(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNew_UnknownSplitter(t *testing.T) {
	s := testSettings()
	s.RAG.Splitter = "sentences"

	_, err := New(s, testPrompts(t))
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestNew_SQLiteFeedback(t *testing.T) {
	s := domain.DefaultSettings()
	s.Feedback.Path = filepath.Join(t.TempDir(), "feedback.db")

	a, err := New(s, testPrompts(t))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	_, err = os.Stat(s.Feedback.Path)
	assert.NoError(t, err)
}

func TestApp_BuildAskAndRate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "housing.txt")
	require.NoError(t, os.WriteFile(path,
		[]byte("Graduate Hall 1 single rooms cost $500 per month."), 0o600))

	llm := &echoLLM{}
	backends := &ai.InitResult{
		EmbeddingService: hashing.NewEmbeddingService(64),
		LLMService:       llm,
		VectorIndex:      vectormemory.Factory,
	}
	feedback := feedbackmemory.NewFeedbackStore()

	a, err := New(domain.DefaultSettings(), testPrompts(t),
		WithBackends(backends), WithFeedbackStore(feedback))
	require.NoError(t, err)
	defer a.Close()
	assert.Empty(t, a.Warnings)

	ctx := context.Background()
	report, err := a.Services.Knowledge.Build(ctx, a.Session, domain.BuildRequest{Files: []string{path}, ChunkOverlap: -1})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Chunks)
	assert.True(t, a.Session.HasIndex())

	answer, err := a.Services.Answers.Answer(ctx, a.Session, "How much is a single room?")
	require.NoError(t, err)
	assert.Equal(t, "answer", answer.Text)
	assert.True(t, answer.UsedRetrieval)
	assert.Equal(t, []string{path}, answer.Sources)
	assert.True(t, strings.Contains(llm.lastPrompt, "$500 per month"))

	rec, err := a.Services.Feedback.Record(ctx, a.Session, domain.FeedbackUp)
	require.NoError(t, err)
	assert.Equal(t, "How much is a single room?", rec.Question)

	stats, err := a.Services.Feedback.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Ups)
}

func TestApp_CloseDropsIndex(t *testing.T) {
	a, err := New(testSettings(), testPrompts(t))
	require.NoError(t, err)
	require.NoError(t, a.Close())
	assert.False(t, a.Session.HasIndex())
	assert.NoError(t, a.Close())
}
