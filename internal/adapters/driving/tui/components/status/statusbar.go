// Package status renders the one-line bar under the chat transcript.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/keymap"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/styles"
)

// State is what the chat is doing right now.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateBuilding State = "building"
	StateAnswered State = "answered"
	StateError    State = "error"
)

// busyText is shown while a long call runs.
var busyText = map[State]string{
	StateThinking: "Thinking...",
	StateBuilding: "Building knowledge base...",
}

// Bar shows the state or a message on the left and key hints on the right.
// The hints are dropped first when the width is too small for both.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	chunks  int
	width   int
}

// NewBar returns a ready bar. Nil arguments select the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update ignores every message; the owning view drives the bar.
func (s *Bar) Update(tea.Msg) (*Bar, tea.Cmd) {
	return s, nil
}

func (s *Bar) View() string {
	left := s.status()
	right := s.hints()

	inner := s.width - s.styles.StatusBar.GetHorizontalFrameSize()
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	line := left
	if gap >= 1 {
		line = lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", gap), right)
	}
	return s.styles.StatusBar.Width(s.width).Render(line)
}

func (s *Bar) status() string {
	if text, busy := busyText[s.state]; busy {
		return s.styles.Muted.Render(text)
	}
	if s.state == StateError {
		text := "Error"
		if s.message != "" {
			text = fmt.Sprintf("Error: %s", s.message)
		}
		return s.styles.Error.Render(text)
	}

	switch {
	case s.message != "":
		return s.styles.Normal.Render(s.message)
	case s.chunks > 0:
		return s.styles.Normal.Render(fmt.Sprintf("%d chunks indexed", s.chunks))
	default:
		return s.styles.Muted.Render("No knowledge base")
	}
}

func (s *Bar) hints() string {
	bindings := s.keymap.ShortHelp()
	if s.state == StateAnswered {
		bindings = s.keymap.ChatHelp()
	}
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = hint(b)
	}
	return s.styles.Muted.Render(strings.Join(parts, " | "))
}

func hint(b key.Binding) string {
	h := b.Help()
	return h.Key + ": " + h.Desc
}

func (s *Bar) SetState(state State) {
	s.state = state
}

func (s *Bar) State() State {
	return s.state
}

// SetMessage replaces the idle text, or the detail of an error.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

func (s *Bar) Message() string {
	return s.message
}

// SetChunkCount records the size of the current index.
func (s *Bar) SetChunkCount(n int) {
	s.chunks = n
}

func (s *Bar) ChunkCount() int {
	return s.chunks
}

func (s *Bar) SetWidth(width int) {
	s.width = width
}

func (s *Bar) Width() int {
	return s.width
}

// Clear resets the state and message. The chunk count is kept.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
}
