// Package list provides list display components for the TUI.
package list

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/styles"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

// Transcript displays chat turns, newest at the bottom.
// Scrolling moves the window up from the newest line.
type Transcript struct {
	turns  []domain.ChatTurn
	offset int
	styles *styles.Styles
	width  int
	height int
}

// NewTranscript creates an empty transcript.
func NewTranscript(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Transcript{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the transcript.
func (t *Transcript) Init() tea.Cmd {
	return nil
}

// Update scrolls on page keys.
func (t *Transcript) Update(msg tea.Msg) (*Transcript, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyPgUp:
			t.ScrollUp(t.height / 2)
		case tea.KeyPgDown:
			t.ScrollDown(t.height / 2)
		}
	}
	return t, nil
}

// View renders the visible window of the transcript.
func (t *Transcript) View() string {
	if len(t.turns) == 0 {
		return t.styles.Muted.Render("Ask a question to get started.")
	}

	lines := t.lines()
	end := len(lines) - t.offset
	start := end - t.height
	if start < 0 {
		start = 0
	}
	return strings.Join(lines[start:end], "\n")
}

// lines renders every turn and splits the result into terminal lines.
func (t *Transcript) lines() []string {
	body := lipgloss.NewStyle().Width(t.bodyWidth())

	rendered := make([]string, 0, len(t.turns)*3)
	for _, turn := range t.turns {
		switch {
		case turn.Role == domain.RoleUser:
			rendered = append(rendered, t.styles.UserTurn.Render("You: ")+
				body.Render(turn.Content))
		case turn.Failed:
			rendered = append(rendered, t.styles.AssistantTurn.Render("Genie: ")+
				t.styles.Error.Render(body.Render(turn.Content)))
		default:
			rendered = append(rendered, t.styles.AssistantTurn.Render("Genie: ")+
				body.Render(turn.Content))
			if !turn.UsedRetrieval {
				rendered = append(rendered, t.styles.Muted.Render("  (answered without a knowledge base)"))
			}
			for _, src := range turn.Sources {
				rendered = append(rendered, t.styles.Source.Render("  - "+src))
			}
		}
		rendered = append(rendered, "")
	}
	return strings.Split(strings.TrimRight(strings.Join(rendered, "\n"), "\n"), "\n")
}

func (t *Transcript) bodyWidth() int {
	w := t.width - len("Genie: ")
	if w < 20 {
		w = 20
	}
	return w
}

// SetTurns replaces the turns and scrolls to the newest.
func (t *Transcript) SetTurns(turns []domain.ChatTurn) {
	t.turns = turns
	t.offset = 0
}

// Turns returns the displayed turns.
func (t *Transcript) Turns() []domain.ChatTurn {
	return t.turns
}

// ScrollUp moves the window n lines towards older turns.
func (t *Transcript) ScrollUp(n int) {
	if n < 1 {
		n = 1
	}
	maxOffset := len(t.lines()) - t.height
	if maxOffset < 0 {
		maxOffset = 0
	}
	t.offset += n
	if t.offset > maxOffset {
		t.offset = maxOffset
	}
}

// ScrollDown moves the window n lines towards newer turns.
func (t *Transcript) ScrollDown(n int) {
	if n < 1 {
		n = 1
	}
	t.offset -= n
	if t.offset < 0 {
		t.offset = 0
	}
}

// Offset returns how many lines the window is scrolled up.
func (t *Transcript) Offset() int {
	return t.offset
}

// SetDimensions sets the component dimensions.
func (t *Transcript) SetDimensions(width, height int) {
	t.width = width
	if height < 1 {
		height = 1
	}
	t.height = height
}

// Count returns the number of turns.
func (t *Transcript) Count() int {
	return len(t.turns)
}

// IsEmpty returns whether the transcript has no turns.
func (t *Transcript) IsEmpty() bool {
	return len(t.turns) == 0
}
