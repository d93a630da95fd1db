// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/components/input"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/components/list"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/components/status"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/keymap"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/messages"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driving/tui/styles"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driving"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
)

// View is the chat view: transcript, question input and status bar.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.Field
	transcript *list.Transcript
	statusbar  *status.Bar

	answers  driving.AnswerService
	feedback driving.FeedbackService
	sess     *session.Session
	ctx      context.Context

	width        int
	height       int
	ready        bool
	pending      bool
	showExamples bool
	err          error
}

// NewView creates a new chat view. feedback may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	answers driving.AnswerService,
	feedback driving.FeedbackService,
	sess *session.Session,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewField(s, "Ask", "Ask about housing, visas or campus life..."),
		transcript: list.NewTranscript(s),
		statusbar:  status.NewBar(s, km),
		answers:    answers,
		feedback:   feedback,
		sess:       sess,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
	v.input.Focus()
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the input and syncs the transcript with the session.
func (v *View) Init() tea.Cmd {
	v.Refresh()
	return tea.Batch(v.input.Focus(), v.input.Init())
}

// Refresh reloads the transcript and index size from the session.
func (v *View) Refresh() {
	if v.sess == nil {
		return
	}
	v.transcript.SetTurns(v.sess.History())
	if idx := v.sess.Index(); idx != nil {
		v.statusbar.SetChunkCount(idx.Len())
	} else {
		v.statusbar.SetChunkCount(0)
	}
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.FeedbackRecorded:
		v.handleFeedback(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.pending = false
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case msg.Type == tea.KeyPgUp || msg.Type == tea.KeyPgDown:
		v.transcript, _ = v.transcript.Update(msg)
		return v, nil
	case keymap.Matches(msg.String(), v.keymap.RateUp):
		return v, v.rate(domain.FeedbackUp)
	case keymap.Matches(msg.String(), v.keymap.RateDown):
		return v, v.rate(domain.FeedbackDown)
	case msg.Type == tea.KeyEnter:
		return v.submit()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit asks the typed question or runs a slash command.
func (v *View) submit() (*View, tea.Cmd) {
	text := strings.TrimSpace(v.input.Value())
	if text == "" || v.pending {
		return v, nil
	}
	v.input.Reset()

	if strings.HasPrefix(text, "/") {
		return v, v.command(text)
	}

	v.pending = true
	v.showExamples = false
	v.err = nil
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateThinking)
	return v, v.ask(text)
}

func (v *View) command(text string) tea.Cmd {
	switch strings.ToLower(strings.Fields(text)[0]) {
	case "/up":
		return v.rate(domain.FeedbackUp)
	case "/down":
		return v.rate(domain.FeedbackDown)
	case "/clear":
		if v.sess != nil {
			v.sess.ClearHistory()
		}
		v.Refresh()
		v.statusbar.Clear()
		v.statusbar.SetMessage("History cleared")
	case "/examples":
		v.showExamples = !v.showExamples
	default:
		v.statusbar.SetMessage(fmt.Sprintf("Unknown command %s (try /up, /down, /clear, /examples)", text))
	}
	return nil
}

// ask returns a command that answers question against the session.
func (v *View) ask(question string) tea.Cmd {
	return func() tea.Msg {
		if v.answers == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		answer, err := v.answers.Answer(v.ctx, v.sess, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

// rate returns a command that records feedback for the last answer.
func (v *View) rate(label domain.FeedbackLabel) tea.Cmd {
	return func() tea.Msg {
		if v.feedback == nil {
			return messages.FeedbackRecorded{Err: ErrNoFeedbackService}
		}
		rec, err := v.feedback.Record(v.ctx, v.sess, label)
		return messages.FeedbackRecorded{Record: rec, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.pending = false
	v.Refresh()
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.err = nil
	v.statusbar.SetState(status.StateAnswered)
	if msg.Answer != nil && len(msg.Answer.Warnings) > 0 {
		v.statusbar.SetMessage(msg.Answer.Warnings[0])
	}
}

func (v *View) handleFeedback(msg messages.FeedbackRecorded) {
	if msg.Err != nil {
		if errors.Is(msg.Err, domain.ErrNoInteraction) {
			v.statusbar.SetMessage("Nothing to rate yet: ask a question first")
			return
		}
		v.setError(msg.Err)
		return
	}
	if msg.Record != nil && msg.Record.Label == domain.FeedbackUp {
		v.statusbar.SetMessage("Thanks! Marked as helpful")
	} else {
		v.statusbar.SetMessage("Thanks! Marked as not helpful")
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("Campus Genie"), "")

	if v.showExamples || v.transcript.IsEmpty() {
		sections = append(sections, v.renderExamples(), "")
	}
	sections = append(sections, v.transcript.View(), "", v.input.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderExamples() string {
	lines := []string{v.styles.Subtitle.Render("Try asking:")}
	for _, q := range domain.ExampleQuestions() {
		lines = append(lines, v.styles.Muted.Render("  - "+q))
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.transcript.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Pending reports whether a question is being answered.
func (v *View) Pending() bool {
	return v.pending
}

// Input returns the current question text.
func (v *View) Input() string {
	return v.input.Value()
}

// SetInput sets the question text.
func (v *View) SetInput(text string) {
	v.input.SetValue(text)
}

// Turns returns the displayed chat turns.
func (v *View) Turns() []domain.ChatTurn {
	return v.transcript.Turns()
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}

// StatusMessage returns the status bar message.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}
