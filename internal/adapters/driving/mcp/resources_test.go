package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

func TestExtractSourcePosition(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected int
	}{
		{
			name:     "valid source URI",
			uri:      "genie://sources/2",
			expected: 2,
		},
		{
			name:     "invalid prefix",
			uri:      "file://sources/2",
			expected: 0,
		},
		{
			name:     "not a number",
			uri:      "genie://sources/visa",
			expected: 0,
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractSourcePosition(tt.uri))
		})
	}
}

func newReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleSourcesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns empty list without an index", func(t *testing.T) {
		server, err := NewServer(validPorts())
		require.NoError(t, err)

		result, err := server.handleSourcesResource(ctx, newReadResourceRequest("genie://sources"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})

	t.Run("lists indexed sources", func(t *testing.T) {
		ports := validPorts()
		ports.Knowledge = &mockKnowledgeService{sources: []domain.SourceStat{
			{Identifier: "data/ntu_visa.txt", Kind: domain.SourceKindDefault, KindLabel: "File", CharCount: 300},
		}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		result, err := server.handleSourcesResource(ctx, newReadResourceRequest("genie://sources"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, "data/ntu_visa.txt")
		assert.Contains(t, result.Contents[0].Text, `"char_count": 300`)
	})
}

func TestServer_handleSourceResource(t *testing.T) {
	ctx := context.Background()
	ports := validPorts()
	ports.Knowledge = &mockKnowledgeService{sources: []domain.SourceStat{
		{Identifier: "a.txt"},
		{Identifier: "https://b.example", Kind: domain.SourceKindURL},
	}}
	server, err := NewServer(ports)
	require.NoError(t, err)

	t.Run("returns the source at a position", func(t *testing.T) {
		result, err := server.handleSourceResource(ctx, newReadResourceRequest("genie://sources/2"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, "https://b.example")
	})

	t.Run("out of range is not found", func(t *testing.T) {
		_, err := server.handleSourceResource(ctx, newReadResourceRequest("genie://sources/3"))
		assert.Error(t, err)
	})
}

func TestServer_handleExamplesResource(t *testing.T) {
	server, err := NewServer(validPorts())
	require.NoError(t, err)

	result, err := server.handleExamplesResource(context.Background(), newReadResourceRequest("genie://examples"))

	require.NoError(t, err)
	assert.Contains(t, result.Contents[0].Text, domain.ExampleQuestions()[0])
}
