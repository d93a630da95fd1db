package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/keymap"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/messages"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/styles"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/views/chat"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/views/housing"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/views/menu"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/views/settings"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/views/sources"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView     *menu.View
	chatView     *chat.View
	housingView  *housing.View
	sourcesView  *sources.View
	settingsView *settings.View

	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		menuView:     menu.NewView(s, km),
		chatView:     chat.NewView(s, km, ports.Answers, ports.Feedback, ports.Session),
		housingView:  housing.NewView(s, ports.Housing, ports.Session),
		sourcesView:  sources.NewView(s, ports.Knowledge, ports.Session),
		settingsView: settings.NewView(s, ports.Settings),
		currentView:  messages.ViewMenu,
	}
	if ports.Housing == nil {
		a.menuView.Disable(messages.ViewHousing, "needs an LLM backend, see Settings")
	}
	a.refreshSummary()
	return a, nil
}

// WithContext sets the context used by every service call.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.housingView.WithContext(ctx)
	a.sourcesView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("genie - Campus Genie")
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.updateCurrent(msg)

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.AnswerReceived, messages.FeedbackRecorded:
		a.chatView, cmd = a.chatView.Update(msg)
		a.err = a.chatView.Err()
		return a, cmd

	case messages.PlanReceived:
		a.housingView, cmd = a.housingView.Update(msg)
		a.err = msg.Err
		return a, cmd

	case messages.BuildCompleted:
		a.sourcesView, cmd = a.sourcesView.Update(msg)
		a.err = msg.Err
		a.chatView.Refresh()
		a.refreshSummary()
		return a, cmd

	case messages.SettingsLoaded, messages.SettingSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewChat {
			a.chatView, cmd = a.chatView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.updateCurrent(msg)
}

// updateCurrent forwards msg to the active view.
func (a *App) updateCurrent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewHousing:
		a.housingView, cmd = a.housingView.Update(msg)
	case messages.ViewSources:
		a.sourcesView, cmd = a.sourcesView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		if key, ok := msg.(tea.KeyMsg); ok && (key.Type == tea.KeyEsc || key.String() == "q") {
			a.currentView = messages.ViewMenu
		}
	}
	return cmd
}

func (a *App) switchView(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewChat:
		return a.chatView.Init()
	case messages.ViewHousing:
		a.housingView.Reset()
		return a.housingView.Init()
	case messages.ViewSources:
		return a.sourcesView.Init()
	case messages.ViewSettings:
		a.settingsView.Reset()
		return a.settingsView.Init()
	case messages.ViewMenu:
		a.refreshSummary()
	case messages.ViewHelp:
	}
	return nil
}

// refreshSummary shows the size of the current index on the menu.
func (a *App) refreshSummary() {
	stats := a.ports.Knowledge.Sources(a.ports.Session)
	if len(stats) == 0 {
		a.menuView.SetSummary("No knowledge base yet: open Sources and press r to build one")
		return
	}
	chunks := 0
	for _, s := range stats {
		chunks += s.Chunks
	}
	a.menuView.SetSummary(fmt.Sprintf("%d chunks from %d sources", chunks, len(stats)))
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewHousing:
		return a.housingView.View()
	case messages.ViewSources:
		return a.sourcesView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
	}
	return a.menuView.View()
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Navigation:
  esc         Back to menu
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Ask:
  enter       Ask the typed question
  ctrl+u      Rate the last answer helpful (or type /up)
  ctrl+d      Rate the last answer not helpful (or type /down)
  pgup/pgdn   Scroll the conversation
  /clear      Clear the conversation
  /examples   Show example questions

Housing plan:
  tab         Next field
  enter       Next field, or plan from the last one

Sources:
  r           Rebuild from the default sources
  a           Add a file or URL and rebuild

Settings:
  enter       Edit the selected key

` + a.styles.Help.Render("[esc] back to menu")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been sized.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
	a.housingView.SetDimensions(width, height)
	a.sourcesView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
