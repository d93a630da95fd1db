package housing

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/messages"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
)

type mockHousing struct {
	prefs domain.HousingPreferences
	plan  *domain.Answer
	err   error
}

func (m *mockHousing) Plan(_ context.Context, _ *session.Session, prefs domain.HousingPreferences) (*domain.Answer, error) {
	m.prefs = prefs
	return m.plan, m.err
}

func typeText(v *View, text string) {
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func fill(v *View, budget, privacy, stay string) tea.Cmd {
	typeText(v, budget)
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typeText(v, privacy)
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typeText(v, stay)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil)

	require.NotNil(t, v)
	assert.Equal(t, 0, v.Focus())
	assert.Equal(t, "Initialising...", v.View())
	assert.NotNil(t, v.Init())
}

func TestView_FocusCycles(t *testing.T) {
	v := NewView(nil, nil, nil)

	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, v.Focus())
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, v.Focus())
	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, v.Focus())
	v.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 2, v.Focus())
}

func TestView_SubmitPlansFromPreferences(t *testing.T) {
	svc := &mockHousing{plan: &domain.Answer{
		Text:          "Pick Graduate Hall 1.",
		UsedRetrieval: true,
		Sources:       []string{"data/ntu_housing_extended.txt"},
	}}
	v := NewView(nil, svc, session.New())
	v.SetDimensions(100, 40)

	cmd := fill(v, "lowest cost", " single room ", "one semester")
	require.NotNil(t, cmd)
	assert.True(t, v.Pending())
	assert.Contains(t, v.View(), "Planning...")

	msg := cmd()
	v.Update(msg)

	assert.Equal(t, domain.HousingPreferences{
		Budget: "lowest cost", Privacy: "single room", StayTerm: "one semester",
	}, svc.prefs)
	assert.False(t, v.Pending())
	require.NotNil(t, v.Plan())

	view := v.View()
	assert.Contains(t, view, "Pick Graduate Hall 1.")
	assert.Contains(t, view, "data/ntu_housing_extended.txt")
}

func TestView_BlankPreferencesStillSubmit(t *testing.T) {
	svc := &mockHousing{plan: &domain.Answer{Text: "Any hall works."}}
	v := NewView(nil, svc, session.New())
	v.SetDimensions(100, 40)

	cmd := fill(v, "", "", "")
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.Equal(t, domain.HousingPreferences{}, svc.prefs)
	assert.Contains(t, v.View(), "answered without a knowledge base")
}

func TestView_PlanError(t *testing.T) {
	svc := &mockHousing{err: errors.New("llm down")}
	v := NewView(nil, svc, session.New())
	v.SetDimensions(100, 40)

	cmd := fill(v, "a", "b", "c")
	v.Update(cmd())

	require.Error(t, v.Err())
	assert.Contains(t, v.View(), "Error: llm down")
}

func TestView_NoService(t *testing.T) {
	v := NewView(nil, nil, session.New())

	cmd := fill(v, "a", "b", "c")
	msg := cmd()

	assert.Equal(t, messages.PlanReceived{Err: ErrNoHousingService}, msg)
}

func TestView_ResetClearsForm(t *testing.T) {
	svc := &mockHousing{plan: &domain.Answer{Text: "ok"}}
	v := NewView(nil, svc, session.New())

	cmd := fill(v, "a", "b", "c")
	v.Update(cmd())
	require.NotNil(t, v.Plan())

	v.Reset()

	assert.Nil(t, v.Plan())
	assert.Equal(t, 0, v.Focus())
	assert.Equal(t, domain.HousingPreferences{}, v.Preferences())
}

func TestView_EscReturnsToMenu(t *testing.T) {
	v := NewView(nil, nil, nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}
