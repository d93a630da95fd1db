// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/messages"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/styles"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driving"
)

// ErrNoSettingsService indicates that settings cannot be read.
var ErrNoSettingsService = errors.New("settings service not available")

// View lists configuration keys and edits them one at a time.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	entries  []driving.SettingEntry
	selected int
	editing  bool
	editor   textinput.Model
	saved    string
	err      error

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	editor := textinput.New()
	editor.CharLimit = 512

	return &View{
		styles:          s,
		settingsService: settingsService,
		editor:          editor,
	}
}

// Init loads the settings listing.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

// Reset leaves edit mode and clears messages.
func (v *View) Reset() {
	v.editing = false
	v.editor.Blur()
	v.editor.Reset()
	v.saved = ""
	v.err = nil
}

func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		entries, err := v.settingsService.Entries()
		return messages.SettingsLoaded{Entries: entries, Err: err}
	}
}

func (v *View) save(key, value string) tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingSaved{Key: key, Err: ErrNoSettingsService}
		}
		return messages.SettingSaved{Key: key, Err: v.settingsService.Set(key, value)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case messages.SettingsLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.entries = msg.Entries
			if v.selected >= len(v.entries) {
				v.selected = 0
			}
		}
		return v, nil

	case messages.SettingSaved:
		if msg.Err != nil {
			v.err = msg.Err
			v.saved = ""
			return v, nil
		}
		v.err = nil
		v.saved = msg.Key
		return v, v.loadSettings()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKey(msg)
		}
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.entries)-1 {
			v.selected++
		}
	case "enter", "e":
		if len(v.entries) == 0 {
			return v, nil
		}
		return v, v.startEdit(v.entries[v.selected])
	}
	return v, nil
}

func (v *View) startEdit(entry driving.SettingEntry) tea.Cmd {
	v.editing = true
	v.saved = ""
	v.err = nil
	v.editor.Reset()
	if isSecret(entry.Key) {
		v.editor.EchoMode = textinput.EchoPassword
		v.editor.Placeholder = "Enter API key"
	} else {
		v.editor.EchoMode = textinput.EchoNormal
		v.editor.Placeholder = entry.Value
		v.editor.SetValue(entry.Value)
	}
	return v.editor.Focus()
}

func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		v.editing = false
		v.editor.Blur()
		return v, nil
	case tea.KeyEnter:
		v.editing = false
		v.editor.Blur()
		key := v.entries[v.selected].Key
		return v, v.save(key, strings.TrimSpace(v.editor.Value()))
	}
	var cmd tea.Cmd
	v.editor, cmd = v.editor.Update(msg)
	return v, cmd
}

func isSecret(key string) bool {
	return strings.HasSuffix(key, "api_key")
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Changes are saved to the config file and apply the next time genie starts."))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	} else if v.saved != "" {
		b.WriteString(v.styles.Success.Render(fmt.Sprintf("Saved %s", v.saved)))
		b.WriteString("\n\n")
	}

	keyWidth := 0
	for _, e := range v.entries {
		if len(e.Key) > keyWidth {
			keyWidth = len(e.Key)
		}
	}
	for i, e := range v.entries {
		line := fmt.Sprintf("%-*s  %s", keyWidth, e.Key, e.Value)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if len(v.entries) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(v.entries[v.selected].Help))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.editing {
		b.WriteString(v.styles.Subtitle.Render(v.entries[v.selected].Key + ": "))
		b.WriteString(v.styles.InputField.Render(v.editor.View()))
		b.WriteString("\n")
		b.WriteString(v.styles.Help.Render("[enter] save  [esc] cancel"))
		return b.String()
	}
	b.WriteString(v.styles.Help.Render("[j/k] navigate  [enter] edit  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.editor.Width = width - 30
	if v.editor.Width < 20 {
		v.editor.Width = 20
	}
}

// Entries returns the displayed settings.
func (v *View) Entries() []driving.SettingEntry {
	return v.entries
}

// Selected returns the selected entry index.
func (v *View) Selected() int {
	return v.selected
}

// Editing reports whether an entry is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
