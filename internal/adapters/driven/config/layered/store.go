// Package layered resolves configuration from the TOML file store,
// GENIE_* environment variables and command-line flags, in increasing
// order of precedence.
package layered

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ConfigStore = (*Store)(nil)

// EnvPrefix is the prefix of environment overrides (GENIE_RAG_CHUNK_SIZE).
const EnvPrefix = "GENIE"

// envAliases binds well-known provider variables to their keys.
//
//nolint:gosec // G101: These are variable names, not credentials.
var envAliases = map[string][]string{
	"llm.api_key":       {"GENIE_LLM_API_KEY", "DEEPSEEK_API_KEY"},
	"embedding.api_key": {"GENIE_EMBEDDING_API_KEY", "OPENAI_API_KEY"},
	"rerank.api_key":    {"GENIE_RERANK_API_KEY", "JINA_API_KEY"},
}

// Store reads through viper and writes through the wrapped file store.
type Store struct {
	mu   sync.RWMutex
	v    *viper.Viper
	file driven.ConfigStore
}

// New layers environment variables over file. Keys listed in keys are
// registered so that environment-only values show up in All.
func New(file driven.ConfigStore, keys []string) (*Store, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	for _, key := range keys {
		if _, aliased := envAliases[key]; aliased {
			continue
		}
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	s := &Store{v: v, file: file}
	if err := s.merge(); err != nil {
		return nil, err
	}
	return s, nil
}

// BindFlag makes a command-line flag override key when the flag is set.
func (s *Store) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("bind flag for %s: flag not defined", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.BindPFlag(key, flag)
}

// merge loads the file store values as viper's config layer.
func (s *Store) merge() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.MergeConfigMap(nest(s.file.All()))
}

// Get retrieves a configuration value by key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.v.IsSet(key) {
		return nil, false
	}
	return s.v.Get(key), true
}

// GetString retrieves a string configuration value.
func (s *Store) GetString(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetString(key)
}

// GetInt retrieves an integer configuration value.
func (s *Store) GetInt(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetInt(key)
}

// GetBool retrieves a boolean configuration value.
func (s *Store) GetBool(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetBool(key)
}

// GetStringSlice retrieves a string slice configuration value.
// Environment values are split on commas.
func (s *Store) GetStringSlice(key string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.v.IsSet(key) {
		return nil
	}
	if raw, ok := s.v.Get(key).(string); ok {
		return splitList(raw)
	}
	return s.v.GetStringSlice(key)
}

// All returns every resolved key with its value.
func (s *Store) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := s.v.AllKeys()
	sort.Strings(keys)
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if s.v.IsSet(k) {
			out[k] = s.v.Get(k)
		}
	}
	return out
}

// Set persists value in the file store and refreshes the config layer.
// Environment and flag overrides still take precedence.
func (s *Store) Set(key string, value any) error {
	if err := s.file.Set(key, value); err != nil {
		return err
	}
	return s.merge()
}

// Save persists the file store.
func (s *Store) Save() error {
	return s.file.Save()
}

// Load re-reads the file store.
func (s *Store) Load() error {
	if err := s.file.Load(); err != nil {
		return err
	}
	return s.merge()
}

// Path returns the configuration file path.
func (s *Store) Path() string {
	return s.file.Path()
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// nest turns dotted keys into nested maps for viper's config layer.
func nest(flat map[string]any) map[string]any {
	result := make(map[string]any)
	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := result
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return result
}
