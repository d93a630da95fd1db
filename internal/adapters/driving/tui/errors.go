package tui

import "errors"

// ErrMissingKnowledgeService is returned when the knowledge base service is not provided.
var ErrMissingKnowledgeService = errors.New("tui: knowledge base service is required")

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("tui: answer service is required")

// ErrMissingSession is returned when no session is provided.
var ErrMissingSession = errors.New("tui: session is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
