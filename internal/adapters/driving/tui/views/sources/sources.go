// Package sources provides the knowledge base sources view for the TUI.
package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/components/input"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/messages"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/styles"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driving"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
)

// ErrNoKnowledgeService indicates that builds are not available.
var ErrNoKnowledgeService = errors.New("knowledge base service is required")

// View lists the indexed sources and rebuilds the knowledge base.
type View struct {
	styles    *styles.Styles
	knowledge driving.KnowledgeBaseService
	sess      *session.Session
	ctx       context.Context

	stats    []domain.SourceStat
	report   *domain.BuildReport
	extra    domain.BuildRequest
	adding   bool
	addField *input.Field

	selected int
	building bool
	err      error
	width    int
	height   int
	ready    bool
}

// NewView creates a new sources view.
func NewView(s *styles.Styles, knowledge driving.KnowledgeBaseService, sess *session.Session) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:    s,
		knowledge: knowledge,
		sess:      sess,
		ctx:       context.Background(),
		addField:  input.NewField(s, "Add", "file path or https:// URL"),
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init reloads the source stats from the session.
func (v *View) Init() tea.Cmd {
	v.Refresh()
	return nil
}

// Refresh reloads the source stats from the session.
func (v *View) Refresh() {
	if v.knowledge == nil || v.sess == nil {
		v.stats = nil
		return
	}
	v.stats = v.knowledge.Sources(v.sess)
	if v.selected >= len(v.stats) {
		v.selected = 0
	}
}

// Update handles messages for the sources view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.adding {
			return v.handleAddKey(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.BuildCompleted:
		v.building = false
		v.report = msg.Report
		v.err = msg.Err
		v.Refresh()
		return v, nil
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
		if v.selected < len(v.stats)-1 {
			v.selected++
		}
	case "a":
		v.adding = true
		v.addField.Reset()
		return v, v.addField.Focus()
	case "r":
		return v, v.rebuild()
	}
	return v, nil
}

func (v *View) handleAddKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		v.adding = false
		v.addField.Blur()
		return v, nil
	case tea.KeyEnter:
		v.adding = false
		v.addField.Blur()
		v.addExtra(v.addField.Value())
		return v, v.rebuild()
	}
	var cmd tea.Cmd
	v.addField, cmd = v.addField.Update(msg)
	return v, cmd
}

// addExtra remembers a source added in this view so later rebuilds keep it.
func (v *View) addExtra(value string) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
	case strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://"):
		v.extra.URLs = append(v.extra.URLs, value)
	default:
		v.extra.Files = append(v.extra.Files, value)
	}
}

// rebuild returns a command that rebuilds the index from the default
// sources plus those added in this view.
func (v *View) rebuild() tea.Cmd {
	if v.building {
		return nil
	}
	v.building = true
	v.err = nil
	req := domain.BuildRequest{
		Files:        append([]string(nil), v.extra.Files...),
		URLs:         append([]string(nil), v.extra.URLs...),
		UseDefaults:  true,
		ChunkOverlap: -1,
	}
	return func() tea.Msg {
		if v.knowledge == nil {
			return messages.BuildCompleted{Err: ErrNoKnowledgeService}
		}
		report, err := v.knowledge.Build(v.ctx, v.sess, req)
		return messages.BuildCompleted{Report: report, Err: err}
	}
}

// View renders the sources view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Knowledge base"))
	b.WriteString("\n\n")

	switch {
	case v.building:
		b.WriteString(v.styles.Muted.Render("Building knowledge base..."))
		b.WriteString("\n\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	case v.report != nil:
		b.WriteString(v.styles.Success.Render(fmt.Sprintf("Built %d chunks from %d documents in %s",
			v.report.Chunks, v.report.Documents, v.report.Duration.Round(time.Millisecond))))
		b.WriteString("\n\n")
	}

	if v.report != nil {
		for _, d := range v.report.Diagnostics {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("%s: %s", d.Source, d.Message)))
			b.WriteString("\n")
		}
	}

	if len(v.stats) == 0 {
		b.WriteString(v.styles.Muted.Render("No knowledge base yet. Press r to build from the default sources."))
		b.WriteString("\n")
	}
	for i := range v.stats {
		b.WriteString(v.renderStat(i, &v.stats[i]))
		b.WriteString("\n")
	}

	if len(v.extra.Files)+len(v.extra.URLs) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Added here:"))
		b.WriteString("\n")
		for _, s := range append(append([]string(nil), v.extra.Files...), v.extra.URLs...) {
			b.WriteString(v.styles.Muted.Render("  " + s))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if v.adding {
		b.WriteString(v.addField.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Help.Render("[enter] add and rebuild  [esc] cancel"))
		return b.String()
	}
	b.WriteString(v.styles.Help.Render("[r] rebuild  [a] add source  [j/k] navigate  [esc] back"))
	return b.String()
}

func (v *View) renderStat(index int, stat *domain.SourceStat) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	kind := fmt.Sprintf("[%s]", stat.KindLabel)
	name := stat.Identifier
	maxNameLen := v.width - len(kind) - 30
	if maxNameLen < 10 {
		maxNameLen = 10
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}
	detail := fmt.Sprintf("%d chars, %d chunks", stat.CharCount, stat.Chunks)

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%-8s %s  %s", indicator, kind, name, detail))
	}
	return v.styles.Normal.Render(indicator) +
		v.styles.Subtitle.Render(fmt.Sprintf("%-8s ", kind)) +
		v.styles.Normal.Render(name+"  ") +
		v.styles.Muted.Render(detail)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.addField.SetWidth(width)
}

// Stats returns the displayed source stats.
func (v *View) Stats() []domain.SourceStat {
	return v.stats
}

// SelectedIndex returns the currently selected source index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Building reports whether a build is running.
func (v *View) Building() bool {
	return v.building
}

// Adding reports whether the add source field is open.
func (v *View) Adding() bool {
	return v.adding
}

// Err returns the last build error.
func (v *View) Err() error {
	return v.err
}
