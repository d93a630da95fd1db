// Package housing provides the housing plan form for the TUI.
package housing

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/components/input"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/messages"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/styles"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driving"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
)

// ErrNoHousingService indicates that housing plans are not available.
var ErrNoHousingService = errors.New("housing service is required")

const (
	fieldBudget = iota
	fieldPrivacy
	fieldStay
)

// View collects housing preferences and shows the recommendation.
type View struct {
	styles  *styles.Styles
	fields  []*input.Field
	focus   int
	service driving.HousingService
	sess    *session.Session
	ctx     context.Context

	plan    *domain.Answer
	err     error
	pending bool
	width   int
	height  int
	ready   bool
}

// NewView creates a new housing view.
func NewView(s *styles.Styles, service driving.HousingService, sess *session.Session) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	v := &View{
		styles: s,
		fields: []*input.Field{
			fieldBudget:  input.NewField(s, "Budget", "e.g. lowest cost, mid-range"),
			fieldPrivacy: input.NewField(s, "Privacy", "e.g. single room, private bathroom"),
			fieldStay:    input.NewField(s, "Stay", "e.g. one semester, two years"),
		},
		service: service,
		sess:    sess,
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
	v.fields[fieldBudget].Focus()
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the current field.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.fields[v.focus].Focus(), v.fields[v.focus].Init())
}

// Reset clears the form and the last plan.
func (v *View) Reset() {
	for _, f := range v.fields {
		f.Reset()
		f.Blur()
	}
	v.focus = fieldBudget
	v.fields[v.focus].Focus()
	v.plan = nil
	v.err = nil
	v.pending = false
}

// Update handles messages for the housing view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.PlanReceived:
		v.pending = false
		v.plan = msg.Answer
		v.err = msg.Err
		return v, nil
	}

	var cmd tea.Cmd
	v.fields[v.focus], cmd = v.fields[v.focus].Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case tea.KeyTab, tea.KeyDown:
		return v, v.moveFocus(1)
	case tea.KeyShiftTab, tea.KeyUp:
		return v, v.moveFocus(-1)
	case tea.KeyEnter:
		if v.focus < fieldStay {
			return v, v.moveFocus(1)
		}
		return v, v.submit()
	}

	var cmd tea.Cmd
	v.fields[v.focus], cmd = v.fields[v.focus].Update(msg)
	return v, cmd
}

func (v *View) moveFocus(delta int) tea.Cmd {
	v.fields[v.focus].Blur()
	v.focus = (v.focus + delta + len(v.fields)) % len(v.fields)
	return v.fields[v.focus].Focus()
}

// Preferences returns the preferences typed into the form.
func (v *View) Preferences() domain.HousingPreferences {
	return domain.HousingPreferences{
		Budget:   strings.TrimSpace(v.fields[fieldBudget].Value()),
		Privacy:  strings.TrimSpace(v.fields[fieldPrivacy].Value()),
		StayTerm: strings.TrimSpace(v.fields[fieldStay].Value()),
	}
}

func (v *View) submit() tea.Cmd {
	if v.pending {
		return nil
	}
	v.pending = true
	v.err = nil
	prefs := v.Preferences()
	return func() tea.Msg {
		if v.service == nil {
			return messages.PlanReceived{Err: ErrNoHousingService}
		}
		plan, err := v.service.Plan(v.ctx, v.sess, prefs)
		return messages.PlanReceived{Answer: plan, Err: err}
	}
}

// View renders the housing form and plan.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("Housing plan"),
		v.styles.Muted.Render("Describe what you need; blank fields are left unspecified."),
		"",
	}
	for _, f := range v.fields {
		sections = append(sections, f.View())
	}
	sections = append(sections, "")

	switch {
	case v.pending:
		sections = append(sections, v.styles.Muted.Render("Planning..."))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case v.plan != nil:
		sections = append(sections, v.renderPlan())
	}

	sections = append(sections, "", v.styles.Help.Render("[tab] Next field  [enter] Plan  [esc] Back"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderPlan() string {
	body := lipgloss.NewStyle().Width(v.width - 2).Render(v.plan.Text)
	lines := []string{v.styles.Subtitle.Render("Recommendation"), body}
	if !v.plan.UsedRetrieval {
		lines = append(lines, v.styles.Muted.Render("(answered without a knowledge base)"))
	}
	for _, src := range v.plan.Sources {
		lines = append(lines, v.styles.Source.Render("  - "+src))
	}
	for _, w := range v.plan.Warnings {
		lines = append(lines, v.styles.Warning.Render("warning: "+w))
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	for _, f := range v.fields {
		f.SetWidth(width)
	}
}

// Focus returns the index of the focused field.
func (v *View) Focus() int {
	return v.focus
}

// Plan returns the last recommendation.
func (v *View) Plan() *domain.Answer {
	return v.plan
}

// Pending reports whether a plan is being generated.
func (v *View) Pending() bool {
	return v.pending
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
