// Package file stores settings and prompt templates under ~/.genie:
// config.toml through ConfigStore, and prompts/*.txt through PromptStore,
// which seeds the directory from templates built into the binary.
package file
