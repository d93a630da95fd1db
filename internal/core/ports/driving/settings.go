package driving

import "github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"

// SettingsService reads and updates persisted settings.
type SettingsService interface {
	// Get resolves the current settings over the defaults and validates them.
	Get() (*domain.Settings, error)

	// Set parses value for the type of key and persists it.
	// Unknown keys and values that make the settings invalid are rejected.
	Set(key, value string) error

	// Entries lists every known key with its resolved value.
	// Secrets are masked.
	Entries() ([]SettingEntry, error)
}

// SettingEntry is one key in a settings listing.
type SettingEntry struct {
	Key   string
	Value string
	Help  string
}
