package postprocessors

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
)

// DefaultSplitter is used when no strategy is configured.
const DefaultSplitter = "recursive"

// Options are the chunking parameters shared by every strategy. Zero Size
// keeps the strategy default; negative Overlap does the same for overlap.
type Options struct {
	Size    int
	Overlap int
}

// BuilderFunc constructs a splitter for opts.
type BuilderFunc func(opts Options) (driven.Splitter, error)

// Registry maps strategy names to builders. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]BuilderFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]BuilderFunc)}
}

// Register adds builder under name, replacing any earlier one. Names are
// case-insensitive.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[strings.ToLower(name)] = builder
}

// Build returns the splitter registered under name. An empty name selects
// DefaultSplitter.
func (r *Registry) Build(name string, opts Options) (driven.Splitter, error) {
	if name == "" {
		name = DefaultSplitter
	}
	r.mu.RLock()
	builder, ok := r.builders[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: splitter %q (have %s)",
			domain.ErrUnsupportedType, name, strings.Join(r.Names(), ", "))
	}
	if opts.Size < 0 {
		return nil, fmt.Errorf("%w: chunk size %d", domain.ErrInvalidInput, opts.Size)
	}
	return builder(opts)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[strings.ToLower(name)]
	return ok
}

// Names returns the registered names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return slices.Clip(names)
}
