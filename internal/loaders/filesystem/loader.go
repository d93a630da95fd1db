// Package filesystem loads local files and watches them for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/normalisers"
)

// Ensure Loader implements the interface.
var _ driven.SourceLoader = (*Loader)(nil)

// DefaultMaxFileSize bounds how much of a file is read.
const DefaultMaxFileSize = 50 << 20

// Loader reads FILE and DEFAULT sources from disk.
type Loader struct {
	baseDir     string
	maxFileSize int64
}

// Option configures the loader.
type Option func(*Loader)

// WithBaseDir resolves relative paths against dir instead of the working directory.
func WithBaseDir(dir string) Option {
	return func(l *Loader) {
		l.baseDir = dir
	}
}

// WithMaxFileSize sets the largest file the loader accepts.
func WithMaxFileSize(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxFileSize = n
		}
	}
}

// New creates a filesystem loader.
func New(opts ...Option) *Loader {
	l := &Loader{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Kinds returns the source kinds this loader handles.
func (l *Loader) Kinds() []domain.SourceKind {
	return []domain.SourceKind{domain.SourceKindFile, domain.SourceKindDefault}
}

// Load reads the file named by ref.Location.
// Missing, unreadable or oversized files fail with UNREADABLE and
// unknown extensions with UNSUPPORTED_FORMAT.
func (l *Loader) Load(ctx context.Context, ref domain.SourceRef) ([]domain.RawDocument, error) {
	origin := ref.Origin()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ref.Location == "" {
		return nil, domain.NewLoadError(origin, domain.ErrUnreadable, errors.New("empty path"))
	}

	mime := normalisers.MIMEForPath(ref.Location)
	if mime == normalisers.MIMEUnknown {
		return nil, domain.NewLoadError(origin, domain.ErrUnsupportedFormat,
			fmt.Errorf("unsupported file type %q", filepath.Ext(ref.Location)))
	}

	path := l.resolve(ref.Location)
	info, err := os.Stat(path)
	if err != nil {
		return nil, domain.NewLoadError(origin, domain.ErrUnreadable, err)
	}
	if info.IsDir() {
		return nil, domain.NewLoadError(origin, domain.ErrUnreadable, fmt.Errorf("%s is a directory", path))
	}
	if info.Size() > l.maxFileSize {
		return nil, domain.NewLoadError(origin, domain.ErrUnreadable,
			fmt.Errorf("file is %d bytes, limit is %d", info.Size(), l.maxFileSize))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewLoadError(origin, domain.ErrUnreadable, err)
	}

	return []domain.RawDocument{{
		Origin:   origin,
		URI:      path,
		MIMEType: mime,
		Content:  content,
		Metadata: map[string]string{
			domain.MetaSource:   ref.Location,
			domain.MetaFilePath: ref.Location,
		},
	}}, nil
}

func (l *Loader) resolve(path string) string {
	if l.baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.baseDir, path)
}
