package postprocessors

import (
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/postprocessors/chunker"
)

// RegisterDefaults adds the built-in strategies: "recursive" splits on
// paragraph, line, sentence and word boundaries; "fixed" cuts every Size runes.
func RegisterDefaults(r *Registry) {
	r.Register("recursive", func(opts Options) (driven.Splitter, error) {
		return chunker.NewRecursive(chunkerOptions(opts)...), nil
	})
	r.Register("fixed", func(opts Options) (driven.Splitter, error) {
		return chunker.NewFixed(chunkerOptions(opts)...), nil
	})
}

// Default returns a registry holding the built-in strategies.
func Default() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

func chunkerOptions(opts Options) []chunker.Option {
	var out []chunker.Option
	if opts.Size > 0 {
		out = append(out, chunker.WithChunkSize(opts.Size))
	}
	if opts.Overlap >= 0 {
		out = append(out, chunker.WithOverlap(opts.Overlap))
	}
	return out
}
