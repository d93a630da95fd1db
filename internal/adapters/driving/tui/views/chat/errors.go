package chat

import "errors"

// Error definitions for the chat view.
var (
	// ErrNoAnswerService indicates that no answer service was provided.
	ErrNoAnswerService = errors.New("answer service is required")

	// ErrNoFeedbackService indicates that feedback is not available.
	ErrNoFeedbackService = errors.New("feedback is not available")
)
