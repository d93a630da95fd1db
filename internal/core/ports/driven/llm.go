package driven

import "context"

// LLMService writes the answer text for a rendered prompt.
// Adapters wrap rejected credentials (HTTP 401/403) with domain.ErrAuthFailure;
// every other failure is a backend failure to the caller.
type LLMService interface {
	// Generate runs one single-turn completion.
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// ModelName returns the model answers are generated with.
	ModelName() string

	// Ping checks the backend accepts the configured credentials.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateRequest is a single-turn completion request.
type GenerateRequest struct {
	// System sets the assistant persona. Empty means none.
	System string

	// Prompt is the rendered user prompt, context included.
	Prompt string

	Options GenerateOptions
}

// GenerateOptions are the sampling settings from llm.* configuration.
type GenerateOptions struct {
	// MaxTokens caps the answer length. Zero uses the backend default.
	MaxTokens int

	// Temperature is passed through when positive.
	Temperature float64
}

// Messages returns the request as system and user chat messages.
func (r GenerateRequest) Messages() []ChatMessage {
	msgs := make([]ChatMessage, 0, 2)
	if r.System != "" {
		msgs = append(msgs, ChatMessage{Role: RoleSystem, Content: r.System})
	}
	return append(msgs, ChatMessage{Role: RoleUser, Content: r.Prompt})
}

// Chat roles understood by every backend.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is one message of a chat completion.
type ChatMessage struct {
	Role    string
	Content string
}
