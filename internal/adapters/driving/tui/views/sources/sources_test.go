package sources

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

type mockKnowledge struct {
	stats   []domain.SourceStat
	report  *domain.BuildReport
	err     error
	lastReq *domain.BuildRequest
}

func (m *mockKnowledge) Build(_ context.Context, _ *session.Session, req domain.BuildRequest) (*domain.BuildReport, error) {
	m.lastReq = &req
	if m.err == nil && m.report != nil {
		m.stats = m.report.Stats
	}
	return m.report, m.err
}

func (m *mockKnowledge) Sources(*session.Session) []domain.SourceStat {
	return m.stats
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func housingReport() *domain.BuildReport {
	return &domain.BuildReport{
		Stats: []domain.SourceStat{
			{Identifier: "data/ntu_housing_extended.txt", KindLabel: "File", CharCount: 1200, Chunks: 3},
			{Identifier: "https://www.ntu.edu.sg/life-at-ntu/accommodation", KindLabel: "Web page", CharCount: 800, Chunks: 2},
		},
		Diagnostics: []domain.Diagnostic{
			{Source: "data/ntu_visa.txt", Reason: "UNREADABLE", Message: "no such file"},
		},
		Documents: 2,
		Chunks:    5,
	}
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil)

	require.NotNil(t, v)
	assert.Nil(t, v.Init())
	assert.Empty(t, v.Stats())
	assert.Contains(t, v.View(), "No knowledge base yet")
}

func TestView_InitLoadsStats(t *testing.T) {
	kb := &mockKnowledge{stats: housingReport().Stats}
	v := NewView(nil, kb, session.New())
	v.SetDimensions(120, 40)

	v.Init()

	assert.Len(t, v.Stats(), 2)
	view := v.View()
	assert.Contains(t, view, "data/ntu_housing_extended.txt")
	assert.Contains(t, view, "1200 chars, 3 chunks")
}

func TestView_Navigation(t *testing.T) {
	kb := &mockKnowledge{stats: housingReport().Stats}
	v := NewView(nil, kb, session.New())
	v.Init()

	v.Update(runes("j"))
	assert.Equal(t, 1, v.SelectedIndex())
	v.Update(runes("j"))
	assert.Equal(t, 1, v.SelectedIndex())
	v.Update(runes("k"))
	assert.Equal(t, 0, v.SelectedIndex())
}

func TestView_RebuildUsesDefaults(t *testing.T) {
	kb := &mockKnowledge{report: housingReport()}
	v := NewView(nil, kb, session.New())
	v.SetDimensions(120, 40)

	_, cmd := v.Update(runes("r"))
	require.NotNil(t, cmd)
	assert.True(t, v.Building())
	assert.Contains(t, v.View(), "Building knowledge base...")

	_, again := v.Update(runes("r"))
	assert.Nil(t, again)

	v.Update(cmd())

	require.NotNil(t, kb.lastReq)
	assert.True(t, kb.lastReq.UseDefaults)
	assert.Equal(t, -1, kb.lastReq.ChunkOverlap)
	assert.False(t, v.Building())
	assert.Len(t, v.Stats(), 2)

	view := v.View()
	assert.Contains(t, view, "Built 5 chunks from 2 documents")
	assert.Contains(t, view, "data/ntu_visa.txt: no such file")
}

func TestView_AddSourceRebuildsWithExtras(t *testing.T) {
	kb := &mockKnowledge{report: housingReport()}
	v := NewView(nil, kb, session.New())
	v.SetDimensions(120, 40)

	v.Update(runes("a"))
	require.True(t, v.Adding())
	v.Update(runes("notes/hall.md"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v.Update(cmd())

	v.Update(runes("a"))
	v.Update(runes("https://example.edu/hostel"))
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(cmd())

	assert.False(t, v.Adding())
	assert.Equal(t, []string{"notes/hall.md"}, kb.lastReq.Files)
	assert.Equal(t, []string{"https://example.edu/hostel"}, kb.lastReq.URLs)
	assert.Contains(t, v.View(), "Added here:")
}

func TestView_AddCancelled(t *testing.T) {
	kb := &mockKnowledge{}
	v := NewView(nil, kb, session.New())

	v.Update(runes("a"))
	v.Update(runes("x"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
	assert.False(t, v.Adding())
	assert.Nil(t, kb.lastReq)
}

func TestView_BuildError(t *testing.T) {
	kb := &mockKnowledge{err: domain.ErrNoValidSources}
	v := NewView(nil, kb, session.New())

	_, cmd := v.Update(runes("r"))
	v.Update(cmd())

	assert.True(t, errors.Is(v.Err(), domain.ErrNoValidSources))
	assert.Contains(t, v.View(), "Error: no valid sources")
}

func TestView_NoKnowledgeService(t *testing.T) {
	v := NewView(nil, nil, session.New())

	_, cmd := v.Update(runes("r"))

	assert.Equal(t, messages.BuildCompleted{Err: ErrNoKnowledgeService}, cmd())
}

func TestView_EscReturnsToMenu(t *testing.T) {
	v := NewView(nil, nil, nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}
