// Package mcp provides an MCP (Model Context Protocol) server adapter for Campus Genie.
// It lets AI assistants build a knowledge base and ask grounded questions.
package mcp

import "errors"

// Errors returned when a required port is missing.
var (
	ErrMissingKnowledgeService = errors.New("mcp: knowledge service is required")
	ErrMissingAnswerService    = errors.New("mcp: answer service is required")
	ErrMissingSession          = errors.New("mcp: session is required")
)
