package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

func TestPriority(t *testing.T) {
	n := New()
	assert.Equal(t, 50, n.Priority())
	assert.Len(t, n.SupportedMIMETypes(), 2)
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		Origin:   domain.Origin{Kind: domain.SourceKindUpload, Identifier: "guide.md"},
		URI:      "guide.md",
		MIMEType: "text/markdown",
		Content: []byte("# Hall Guide\n\n**Room B** costs `$700`.\n\n" +
			"- See [the portal](https://example.com)\n\n```\ncode\n```\n"),
	}

	docs, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "Hall Guide", docs[0].Title)
	assert.Contains(t, docs[0].Text, "Room B costs $700.")
	assert.Contains(t, docs[0].Text, "See the portal")
	assert.NotContains(t, docs[0].Text, "https://example.com")
	assert.NotContains(t, docs[0].Text, "code")
}

func TestNormalise_TitleFallback(t *testing.T) {
	raw := &domain.RawDocument{
		Origin:  domain.Origin{Kind: domain.SourceKindFile, Identifier: "data/campus_life.md"},
		URI:     "data/campus_life.md",
		Content: []byte("No heading here."),
	}
	docs, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "campus life", docs[0].Title)
}

func TestNormalise_Errors(t *testing.T) {
	origin := domain.Origin{Kind: domain.SourceKindFile, Identifier: "x.md"}

	_, err := New().Normalise(context.Background(), &domain.RawDocument{Origin: origin, Content: []byte{0xc3, 0x28}})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = New().Normalise(context.Background(), &domain.RawDocument{Origin: origin, Content: []byte("```\nonly code\n```")})
	assert.ErrorIs(t, err, domain.ErrEmpty)

	_, err = New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"heading", "## Fees", "Fees"},
		{"emphasis", "*very* __important__", "very important"},
		{"image", "before ![alt](img.png) after", "before  after"},
		{"numbered list", "1. apply\n2. pay", "apply\npay"},
		{"blockquote", "> quoted", "quoted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMarkdown(tt.input))
		})
	}
}
