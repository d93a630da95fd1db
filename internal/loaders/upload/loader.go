// Package upload loads files submitted in memory by a user interface.
package upload

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/normalisers"
)

// Ensure Loader implements the interface.
var _ driven.SourceLoader = (*Loader)(nil)

// Loader turns UPLOAD references into raw documents.
type Loader struct{}

// New creates an upload loader.
func New() *Loader {
	return &Loader{}
}

// Kinds returns the source kinds this loader handles.
func (l *Loader) Kinds() []domain.SourceKind {
	return []domain.SourceKind{domain.SourceKindUpload}
}

// Load wraps the uploaded bytes. The file name selects the format.
func (l *Loader) Load(ctx context.Context, ref domain.SourceRef) ([]domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	origin := ref.Origin()
	if ref.Location == "" {
		return nil, domain.NewLoadError(origin, domain.ErrUnreadable, errors.New("upload has no file name"))
	}

	mime := normalisers.MIMEForPath(ref.Location)
	if mime == normalisers.MIMEUnknown {
		return nil, domain.NewLoadError(origin, domain.ErrUnsupportedFormat,
			fmt.Errorf("unsupported file type %q", filepath.Ext(ref.Location)))
	}

	return []domain.RawDocument{{
		Origin:   origin,
		URI:      ref.Location,
		MIMEType: mime,
		Content:  ref.Content,
		Metadata: map[string]string{
			domain.MetaSource:   ref.Location,
			domain.MetaFilePath: ref.Location,
		},
	}}, nil
}
