package upload

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

func TestLoader_Load(t *testing.T) {
	ref := domain.SourceRef{Kind: domain.SourceKindUpload, Location: "Hall_Guide.PDF", Content: []byte("%PDF")}

	docs, err := New().Load(context.Background(), ref)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "application/pdf", docs[0].MIMEType)
	assert.Equal(t, []byte("%PDF"), docs[0].Content)
	assert.Equal(t, "Hall_Guide.PDF", docs[0].Metadata[domain.MetaSource])
	assert.Equal(t, domain.SourceKindUpload, docs[0].Origin.Kind)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name   string
		ref    domain.SourceRef
		reason error
	}{
		{"no name", domain.SourceRef{Kind: domain.SourceKindUpload}, domain.ErrUnreadable},
		{"unsupported", domain.SourceRef{Kind: domain.SourceKindUpload, Location: "notes.docx"}, domain.ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Load(context.Background(), tt.ref)
			assert.ErrorIs(t, err, tt.reason)
		})
	}
}
