package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/components/status"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/messages"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
)

type mockAnswers struct {
	answer    *domain.Answer
	err       error
	questions []string
}

func (m *mockAnswers) Answer(_ context.Context, sess *session.Session, question string) (*domain.Answer, error) {
	m.questions = append(m.questions, question)
	if m.err != nil {
		sess.RecordFailure(question, m.err, time.Now())
		return nil, m.err
	}
	sess.RecordAnswer(domain.Interaction{
		Question:      question,
		Answer:        m.answer.Text,
		UsedRetrieval: m.answer.UsedRetrieval,
		Sources:       m.answer.Sources,
	})
	return m.answer, nil
}

func (m *mockAnswers) Retrieve(context.Context, *session.Session, string, int) ([]domain.ScoredChunk, error) {
	return nil, nil
}

type mockFeedback struct {
	labels []domain.FeedbackLabel
}

func (m *mockFeedback) Record(_ context.Context, sess *session.Session, label domain.FeedbackLabel) (*domain.FeedbackRecord, error) {
	last, ok := sess.LastInteraction()
	if !ok {
		return nil, domain.ErrNoInteraction
	}
	m.labels = append(m.labels, label)
	return &domain.FeedbackRecord{Label: label, Question: last.Question}, nil
}

func (m *mockFeedback) Stats(context.Context) (*domain.FeedbackStats, error) {
	return &domain.FeedbackStats{}, nil
}

func newTestView(answers *mockAnswers) (*View, *mockFeedback, *session.Session) {
	sess := session.New()
	fb := &mockFeedback{}
	v := NewView(nil, nil, answers, fb, sess)
	v.SetDimensions(100, 40)
	return v, fb, sess
}

func typeText(v *View, text string) {
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// run executes cmd and feeds its message back into the view.
func run(t *testing.T, v *View, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	v.Update(msg)
	return msg
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil, nil, nil)

	require.NotNil(t, v)
	assert.False(t, v.Ready())
	assert.Equal(t, "Initialising...", v.View())
	assert.NotNil(t, v.Init())
}

func TestView_AskRecordsTurns(t *testing.T) {
	answers := &mockAnswers{answer: &domain.Answer{
		Text:          "Single rooms cost $500.",
		UsedRetrieval: true,
		Sources:       []string{"data/ntu_housing_extended.txt"},
	}}
	v, _, _ := newTestView(answers)

	typeText(v, "How much is a single room?")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, v.Pending())
	assert.Equal(t, status.StateThinking, v.Status())
	assert.Equal(t, "", v.Input())

	msg := run(t, v, cmd)
	received, ok := msg.(messages.AnswerReceived)
	require.True(t, ok)
	assert.Equal(t, "How much is a single room?", received.Question)

	assert.False(t, v.Pending())
	assert.Equal(t, status.StateAnswered, v.Status())
	require.Len(t, v.Turns(), 2)
	assert.Equal(t, []string{"How much is a single room?"}, answers.questions)

	view := v.View()
	assert.Contains(t, view, "Single rooms cost $500.")
	assert.Contains(t, view, "data/ntu_housing_extended.txt")
}

func TestView_EmptyQuestionIgnored(t *testing.T) {
	answers := &mockAnswers{answer: &domain.Answer{Text: "x"}}
	v, _, _ := newTestView(answers)

	typeText(v, "   ")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, v.Pending())
}

func TestView_EnterWhilePendingIgnored(t *testing.T) {
	answers := &mockAnswers{answer: &domain.Answer{Text: "x"}}
	v, _, _ := newTestView(answers)

	typeText(v, "first")
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typeText(v, "second")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, "second", v.Input())
}

func TestView_AnswerErrorShowsFailedTurn(t *testing.T) {
	answers := &mockAnswers{err: &domain.GenerationError{Reason: domain.ErrBackendFailure, Err: errors.New("503")}}
	v, _, _ := newTestView(answers)

	typeText(v, "Hi")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, v, cmd)

	assert.Equal(t, status.StateError, v.Status())
	require.Error(t, v.Err())
	require.Len(t, v.Turns(), 2)
	assert.True(t, v.Turns()[1].Failed)
}

func TestView_AnswerWarningShown(t *testing.T) {
	answers := &mockAnswers{answer: &domain.Answer{Text: "ok", Warnings: []string{"rerank unavailable"}}}
	v, _, _ := newTestView(answers)

	typeText(v, "q")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, v, cmd)

	assert.Equal(t, "rerank unavailable", v.StatusMessage())
}

func TestView_RateWithoutAnswer(t *testing.T) {
	v, fb, _ := newTestView(&mockAnswers{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	run(t, v, cmd)

	assert.Empty(t, fb.labels)
	assert.Contains(t, v.StatusMessage(), "Nothing to rate")
	assert.NoError(t, v.Err())
}

func TestView_RateKeysAndCommands(t *testing.T) {
	answers := &mockAnswers{answer: &domain.Answer{Text: "ok"}}
	v, fb, _ := newTestView(answers)

	typeText(v, "q")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, v, cmd)

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	run(t, v, cmd)
	assert.Contains(t, v.StatusMessage(), "helpful")

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	run(t, v, cmd)
	assert.Contains(t, v.StatusMessage(), "not helpful")

	typeText(v, "/up")
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, v, cmd)

	typeText(v, "/down")
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, v, cmd)

	assert.Equal(t, []domain.FeedbackLabel{
		domain.FeedbackUp, domain.FeedbackDown, domain.FeedbackUp, domain.FeedbackDown,
	}, fb.labels)
}

func TestView_ClearCommand(t *testing.T) {
	answers := &mockAnswers{answer: &domain.Answer{Text: "ok"}}
	v, _, sess := newTestView(answers)

	typeText(v, "q")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, v, cmd)
	require.Len(t, v.Turns(), 2)

	typeText(v, "/clear")
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Empty(t, v.Turns())
	assert.Empty(t, sess.History())
	_, ok := sess.LastInteraction()
	assert.False(t, ok)
}

func TestView_ExamplesAndUnknownCommand(t *testing.T) {
	answers := &mockAnswers{answer: &domain.Answer{Text: "ok"}}
	v, _, _ := newTestView(answers)

	assert.Contains(t, v.View(), domain.ExampleQuestions()[0])

	typeText(v, "q")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, v, cmd)
	assert.NotContains(t, v.View(), "Try asking:")

	typeText(v, "/examples")
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, v.View(), "Try asking:")

	typeText(v, "/bogus")
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, v.StatusMessage(), "Unknown command /bogus")
}

func TestView_EscReturnsToMenu(t *testing.T) {
	v, _, _ := newTestView(&mockAnswers{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_NoAnswerService(t *testing.T) {
	v := NewView(nil, nil, nil, nil, session.New())
	v.SetDimensions(80, 24)

	typeText(v, "q")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, v, cmd)

	assert.ErrorIs(t, v.Err(), ErrNoAnswerService)
	assert.False(t, v.Pending())
}

func TestView_NoFeedbackService(t *testing.T) {
	v := NewView(nil, nil, &mockAnswers{}, nil, session.New())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	run(t, v, cmd)

	assert.ErrorIs(t, v.Err(), ErrNoFeedbackService)
}
