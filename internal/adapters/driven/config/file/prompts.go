package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
)

//go:embed defaults/*.txt defaults/README.md
var defaults embed.FS

var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves prompt templates from <dir>/<name>.txt, falling back
// to the built-in template when the file is missing or unreadable.
//
// The directory is seeded with the built-in templates on first Load, so
// creating a store does no I/O.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore creates a store over dir, or ~/.genie/prompts when dir is empty.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named template with surrounding whitespace trimmed.
// Unknown names fail with domain.ErrNotFound.
func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(s.seed)

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	tmpl, err := s.read(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = tmpl
	return tmpl, nil
}

// read prefers the user's file and falls back to the built-in template.
func (s *PromptStore) read(name string) (string, error) {
	if s.seedErr == nil {
		data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
		if err == nil {
			return strings.TrimSpace(string(data)), nil
		}
	}
	data, err := defaults.ReadFile("defaults/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
	}
	return strings.TrimSpace(string(data)), nil
}

// Reload drops cached templates so edited files are read again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// seed copies every built-in file the user does not already have.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}
	s.seedErr = fs.WalkDir(defaults, "defaults", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		target := filepath.Join(s.dir, d.Name())
		if _, err := os.Stat(target); !errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		data, err := defaults.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o600)
	})
}
