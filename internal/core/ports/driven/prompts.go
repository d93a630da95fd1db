package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// Templates use {context}, {input} and {preferences} placeholders.
const (
	// PromptSystem is the assistant persona sent with every generation.
	// It has no placeholders.
	PromptSystem = "system"

	// PromptChat answers a question from retrieved context.
	// Placeholders: {context}, {input}.
	PromptChat = "chat"

	// PromptHousing builds a housing plan from preferences and context.
	// Placeholders: {preferences}, {context}, {input}.
	PromptHousing = "housing"
)
