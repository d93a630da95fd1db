package domain

import "time"

// Answer is the result of a question.
type Answer struct {
	// Text is the generated answer.
	Text string

	// UsedRetrieval is true when the answer was grounded on the knowledge base.
	UsedRetrieval bool

	// Sources lists the attributed sources, deduplicated, in context order.
	Sources []string

	// Warnings carries non-fatal problems (e.g. rerank fallback).
	Warnings []string
}

// Interaction is a completed question/answer pair, the unit of feedback.
type Interaction struct {
	Question      string
	Answer        string
	UsedRetrieval bool
	Sources       []string
	At            time.Time
}

// Role identifies the author of a chat turn.
type Role string

// Chat roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one message of the session's chat history.
type ChatTurn struct {
	Role    Role
	Content string

	// Failed marks an assistant turn whose generation failed.
	// Content then holds the error shown to the user.
	Failed bool

	UsedRetrieval bool
	Sources       []string
	At            time.Time
}

// ExampleQuestions are suggested starter questions.
func ExampleQuestions() []string {
	return []string{
		"What are the monthly prices for single and twin rooms in graduate housing?",
		"How do I apply for graduate housing? What are the detailed steps?",
		"How do I get from NTU to Orchard? How much for MRT and taxi?",
		"What documents do I need to apply for Student's Pass?",
	}
}
