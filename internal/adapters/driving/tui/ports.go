// Package tui provides an interactive terminal user interface for genie.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driving"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Knowledge builds the session's knowledge base.
	Knowledge driving.KnowledgeBaseService

	// Answers answers chat questions.
	Answers driving.AnswerService

	// Housing produces housing plans. Optional; the view reports it missing.
	Housing driving.HousingService

	// Feedback rates answers. Optional.
	Feedback driving.FeedbackService

	// Settings lists and edits configuration. Optional.
	Settings driving.SettingsService

	// Session is the conversation all views share.
	Session *session.Session
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Knowledge == nil {
		return ErrMissingKnowledgeService
	}
	if p.Answers == nil {
		return ErrMissingAnswerService
	}
	if p.Session == nil {
		return ErrMissingSession
	}
	return nil
}
