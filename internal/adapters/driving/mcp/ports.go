package mcp

import (
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driving"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
)

// Ports holds the services behind the MCP tools.
type Ports struct {
	// Knowledge builds the knowledge base.
	Knowledge driving.KnowledgeBaseService

	// Answers answers questions and retrieves chunks.
	Answers driving.AnswerService

	// Housing plans housing. Optional; the housing_plan tool is only
	// registered when set.
	Housing driving.HousingService

	// Session holds the knowledge base shared by all tool calls.
	Session *session.Session
}

// Validate reports the first required port that is missing.
func (p *Ports) Validate() error {
	if p == nil || p.Knowledge == nil {
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
