// Package menu is the TUI landing screen.
package menu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/keymap"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/messages"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. An item with Quit set ends the program.
type Item struct {
	Label       string
	Description string
	View        messages.ViewType
	Quit        bool

	// Disabled, when set, is shown instead of opening the view.
	Disabled string
}

func defaultItems() []Item {
	return []Item{
		{Label: "Ask", Description: "chat about housing, visas and campus life", View: messages.ViewChat},
		{Label: "Housing plan", Description: "get a recommendation from your preferences", View: messages.ViewHousing},
		{Label: "Sources", Description: "see and rebuild the knowledge base", View: messages.ViewSources},
		{Label: "Settings", Description: "models, retrieval and API keys", View: messages.ViewSettings},
		{Label: "Help", Description: "key bindings", View: messages.ViewHelp},
		{Label: "Quit", Quit: true},
	}
}

// View lists the items with a cursor. Digits 1 to 9 jump straight to an item.
type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	items   []Item
	cursor  int
	summary string
	notice  string
	width   int
	height  int
	ready   bool
}

// NewView builds the menu. Nil arguments select the defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{styles: s, keys: km, items: defaultItems(), width: 80, height: 24}
}

func (v *View) Init() tea.Cmd {
	return nil
}

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) tea.Cmd {
	v.notice = ""
	switch {
	case key.Matches(msg, v.keys.Up):
		v.move(-1)
	case key.Matches(msg, v.keys.Down):
		v.move(1)
	case key.Matches(msg, v.keys.Select):
		return v.activate(v.cursor)
	case key.Matches(msg, v.keys.Help):
		return changeView(messages.ViewHelp)
	case key.Matches(msg, v.keys.Quit):
		return tea.Quit
	default:
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(v.items) {
			v.cursor = n - 1
			return v.activate(v.cursor)
		}
	}
	return nil
}

// move shifts the cursor by delta, wrapping at both ends.
func (v *View) move(delta int) {
	n := len(v.items)
	v.cursor = ((v.cursor+delta)%n + n) % n
}

func (v *View) activate(i int) tea.Cmd {
	item := v.items[i]
	switch {
	case item.Quit:
		return tea.Quit
	case item.Disabled != "":
		v.notice = fmt.Sprintf("%s: %s", item.Label, item.Disabled)
		return nil
	}
	return changeView(item.View)
}

func changeView(view messages.ViewType) tea.Cmd {
	return func() tea.Msg { return messages.ViewChanged{View: view} }
}

// Disable greys out the item that opens view and shows reason when chosen.
func (v *View) Disable(view messages.ViewType, reason string) {
	for i := range v.items {
		if !v.items[i].Quit && v.items[i].View == view {
			v.items[i].Disabled = reason
		}
	}
}

func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	lines := []string{
		v.styles.Title.Render("Campus Genie"),
		"",
		v.styles.Muted.Render("NTU housing, visa and campus life assistant"),
	}
	if v.summary != "" {
		lines = append(lines, v.styles.Subtitle.Render(v.summary))
	}
	lines = append(lines, "")

	for i, item := range v.items {
		label := fmt.Sprintf("%d. %s", i+1, item.Label)
		var line string
		switch {
		case i == v.cursor:
			line = "> " + v.styles.Selected.Render(label)
			if item.Description != "" {
				line += v.styles.Muted.Render("  " + item.Description)
			}
		case item.Disabled != "":
			line = "  " + v.styles.Muted.Render(label)
		default:
			line = "  " + v.styles.Normal.Render(label)
		}
		lines = append(lines, line)
	}

	lines = append(lines, "")
	if v.notice != "" {
		lines = append(lines, v.styles.Error.Render(v.notice))
	}
	lines = append(lines, v.styles.Help.Render("[j/k] Navigate  [1-6/Enter] Select  [?] Help  [q] Quit"))
	return strings.Join(lines, "\n")
}

// SetSummary sets the knowledge base line under the title.
func (v *View) SetSummary(summary string) {
	v.summary = summary
}

func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the cursor position.
func (v *View) Selected() int {
	return v.cursor
}

func (v *View) Items() []Item {
	return v.items
}

// Notice returns the message left by choosing a disabled item.
func (v *View) Notice() string {
	return v.notice
}
