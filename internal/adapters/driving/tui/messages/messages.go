// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driving"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the question and answer view.
	ViewChat
	// ViewHousing is the housing plan form.
	ViewHousing
	// ViewSources lists the indexed sources.
	ViewSources
	// ViewSettings lists and edits configuration.
	ViewSettings
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewHousing:
		return "housing"
	case ViewSources:
		return "sources"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// AnswerReceived carries the answer to a chat question.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// PlanReceived carries a housing recommendation.
type PlanReceived struct {
	Answer *domain.Answer
	Err    error
}

// FeedbackRecorded signals that the last answer was rated.
type FeedbackRecorded struct {
	Record *domain.FeedbackRecord
	Err    error
}

// BuildStarted signals a knowledge base build has begun.
type BuildStarted struct{}

// BuildCompleted carries the outcome of a knowledge base build.
type BuildCompleted struct {
	Report *domain.BuildReport
	Err    error
}

// SettingsLoaded carries the resolved settings listing.
type SettingsLoaded struct {
	Entries []driving.SettingEntry
	Err     error
}

// SettingSaved signals a setting was persisted.
type SettingSaved struct {
	Key string
	Err error
}
