package driven

// ConfigStore is the persisted layer of settings, addressed by dotted keys
// such as "rag.chunk_size" or "llm.api_key".
//
// The typed getters return the zero value when the key is missing or holds
// another type; callers that must tell the two apart use Get.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// All is a snapshot copy of every key.
	All() map[string]any

	// Set writes through to storage. A failed write leaves the old value.
	Set(key string, value any) error

	Save() error

	// Load discards in-memory values and rereads storage.
	Load() error

	// Path locates the backing file, for messages shown to users.
	Path() string
}
