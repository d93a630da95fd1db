package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

// BuildInput is the input schema for the build_knowledge_base tool.
type BuildInput struct {
	Files        []string `json:"files,omitempty" jsonschema:"local file paths to index (pdf, txt, md, html)"`
	URLs         []string `json:"urls,omitempty" jsonschema:"web pages to fetch and index"`
	UseDefaults  bool     `json:"use_defaults,omitempty" jsonschema:"include the configured NTU default sources"`
	ChunkSize    int      `json:"chunk_size,omitempty" jsonschema:"chunk size in characters (default 500)"`
	ChunkOverlap *int     `json:"chunk_overlap,omitempty" jsonschema:"chunk overlap in characters (default 100)"`
}

// BuildOutput is the output schema for the build_knowledge_base tool.
type BuildOutput struct {
	Documents   int                 `json:"documents"`
	Chunks      int                 `json:"chunks"`
	Characters  int                 `json:"characters"`
	Sources     []domain.SourceStat `json:"sources"`
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question about NTU campus life, housing or visas"`
}

// AnswerOutput is the output schema for the ask and housing_plan tools.
type AnswerOutput struct {
	Answer        string   `json:"answer"`
	UsedRetrieval bool     `json:"used_retrieval"`
	Sources       []string `json:"sources"`
	Warnings      []string `json:"warnings,omitempty"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the text to find relevant chunks for"`
	K     int    `json:"k,omitempty" jsonschema:"number of chunks to return (default 10)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
}

// ChunkOutput represents a single retrieved chunk.
type ChunkOutput struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
	Text   string  `json:"text"`
}

// HousingInput is the input schema for the housing_plan tool.
type HousingInput struct {
	Budget   string `json:"budget,omitempty" jsonschema:"budget leaning, e.g. lowest cost"`
	Privacy  string `json:"privacy,omitempty" jsonschema:"room and bathroom preference"`
	StayTerm string `json:"stay_term,omitempty" jsonschema:"expected length of stay"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "build_knowledge_base",
		Description: "Load, chunk and embed files and web pages into the knowledge base, replacing the current one",
	}, s.handleBuild)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question grounded on the knowledge base",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the knowledge base chunks most similar to a query",
	}, s.handleRetrieve)

	if s.ports.Housing != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "housing_plan",
			Description: "Recommend NTU housing and an application checklist from preferences",
		}, s.handleHousing)
	}
}

// handleBuild handles the build_knowledge_base tool invocation.
func (s *Server) handleBuild(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildInput,
) (*mcp.CallToolResult, BuildOutput, error) {
	req := domain.BuildRequest{
		Files:        input.Files,
		URLs:         input.URLs,
		UseDefaults:  input.UseDefaults,
		ChunkSize:    input.ChunkSize,
		ChunkOverlap: -1,
	}
	if input.ChunkOverlap != nil {
		req.ChunkOverlap = *input.ChunkOverlap
	}

	report, err := s.ports.Knowledge.Build(ctx, s.ports.Session, req)
	if err != nil {
		return nil, BuildOutput{}, err
	}

	return nil, BuildOutput{
		Documents:   report.Documents,
		Chunks:      report.Chunks,
		Characters:  report.TotalChars(),
		Sources:     report.Stats,
		Diagnostics: report.Diagnostics,
	}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	answer, err := s.ports.Answers.Answer(ctx, s.ports.Session, input.Question)
	if err != nil {
		return nil, AnswerOutput{}, err
	}
	return nil, answerOutput(answer), nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	k := input.K
	if k <= 0 {
		k = domain.DefaultRetrievalK
	}

	results, err := s.ports.Answers.Retrieve(ctx, s.ports.Session, input.Query, k)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Chunks: make([]ChunkOutput, len(results)),
		Count:  len(results),
	}
	for i := range results {
		output.Chunks[i] = ChunkOutput{
			ID:     results[i].Chunk.ID,
			Source: results[i].Chunk.SourceLabel(),
			Score:  results[i].Score,
			Text:   results[i].Chunk.Text,
		}
	}

	return nil, output, nil
}

// handleHousing handles the housing_plan tool invocation.
func (s *Server) handleHousing(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HousingInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	plan, err := s.ports.Housing.Plan(ctx, s.ports.Session, domain.HousingPreferences{
		Budget:   input.Budget,
		Privacy:  input.Privacy,
		StayTerm: input.StayTerm,
	})
	if err != nil {
		return nil, AnswerOutput{}, err
	}
	return nil, answerOutput(plan), nil
}

func answerOutput(a *domain.Answer) AnswerOutput {
	sources := a.Sources
	if sources == nil {
		sources = []string{}
	}
	return AnswerOutput{
		Answer:        a.Text,
		UsedRetrieval: a.UsedRetrieval,
		Sources:       sources,
		Warnings:      a.Warnings,
	}
}
