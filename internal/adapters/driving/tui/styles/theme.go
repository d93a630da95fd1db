// Package styles holds the TUI palette and the lipgloss styles built on it.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is a palette. Primary is NTU red and Secondary NTU blue, each tuned
// for legibility on the terminal background.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color

	// User colours the student's side of the chat.
	User lipgloss.Color

	// Bar is the status bar background.
	Bar lipgloss.Color
}

// DarkTheme suits dark terminals.
func DarkTheme() *Theme {
	return &Theme{
		Primary:    "#E8385A",
		Secondary:  "#5B8DEF",
		Background: "#1E1E2E",
		Foreground: "#CDD6F4",
		Muted:      "#6C7086",
		Success:    "#A6E3A1",
		Warning:    "#F9E2AF",
		Error:      "#F38BA8",
		Border:     "#45475A",
		User:       "#94E2D5",
		Bar:        "#181825",
	}
}

// LightTheme suits light terminals.
func LightTheme() *Theme {
	return &Theme{
		Primary:    "#D71440",
		Secondary:  "#181C62",
		Background: "#FFFFFF",
		Foreground: "#2E3440",
		Muted:      "#8C8FA1",
		Success:    "#2E7D32",
		Warning:    "#B26A00",
		Error:      "#B00020",
		Border:     "#BCC0CC",
		User:       "#00796B",
		Bar:        "#E6E9EF",
	}
}

// DefaultTheme picks the dark or light palette from the terminal background.
func DefaultTheme() *Theme {
	if lipgloss.HasDarkBackground() {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles are the rendered styles shared by every view.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// UserTurn and AssistantTurn prefix chat turns.
	UserTurn      lipgloss.Style
	AssistantTurn lipgloss.Style

	// Source renders the attributions under an answer.
	Source lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style
}

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func boxed(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(border)
}

// NewStyles renders theme, or DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &Styles{
		theme:         theme,
		Title:         fg(theme.Primary).Bold(true),
		Subtitle:      fg(theme.Secondary).Bold(true),
		Normal:        fg(theme.Foreground),
		Muted:         fg(theme.Muted),
		Selected:      fg(theme.Background).Background(theme.Primary).Bold(true),
		Error:         fg(theme.Error),
		Success:       fg(theme.Success),
		Warning:       fg(theme.Warning),
		UserTurn:      fg(theme.User).Bold(true),
		AssistantTurn: fg(theme.Primary).Bold(true),
		Source:        fg(theme.Secondary).Italic(true),
		InputField:    boxed(theme.Border).Padding(0, 1),
		StatusBar:     fg(theme.Muted).Background(theme.Bar).Padding(0, 1),
		Help:          fg(theme.Muted),
		Border:        boxed(theme.Border),
	}
}

// DefaultStyles renders DefaultTheme.
func DefaultStyles() *Styles {
	return NewStyles(nil)
}

func (s *Styles) Theme() *Theme {
	return s.theme
}
