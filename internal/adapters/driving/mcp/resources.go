package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for Campus Genie resources.
	uriScheme = "genie://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing indexed sources.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "Sources in the current knowledge base",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "examples",
		Name:        "examples",
		Description: "Example questions",
		MIMEType:    "text/plain",
	}, s.handleExamplesResource)

	// Template for a single source, addressed by its 1-based position.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sources/{position}",
		Name:        "source",
		Description: "One source of the current knowledge base",
		MIMEType:    "application/json",
	}, s.handleSourceResource)
}

// handleSourcesResource returns the stats of every indexed source.
func (s *Server) handleSourcesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Knowledge.Sources(s.ports.Session))
}

// handleSourceResource returns one source by position.
func (s *Server) handleSourceResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	pos := extractSourcePosition(req.Params.URI)
	stats := s.ports.Knowledge.Sources(s.ports.Session)
	if pos < 1 || pos > len(stats) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, stats[pos-1])
}

// handleExamplesResource returns the example questions, one per line.
func (s *Server) handleExamplesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     strings.Join(domain.ExampleQuestions(), "\n"),
		}},
	}, nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSourcePosition extracts the position from a URI like genie://sources/{position}.
// It returns 0 when the URI does not name a position.
func extractSourcePosition(uri string) int {
	const prefix = uriScheme + "sources/"

	if !strings.HasPrefix(uri, prefix) {
		return 0
	}

	n, err := strconv.Atoi(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return 0
	}
	return n
}
