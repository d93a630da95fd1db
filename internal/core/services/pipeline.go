package services

import (
	"context"
	"errors"
	"time"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/logger"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/metrics"
)

// RetrievedContext is the assembled input for a grounded generation.
type RetrievedContext struct {
	Text     string
	Sources  []string
	Chunks   []domain.ScoredChunk
	Warnings []string
}

// Generation carries the LLM and its sampling options.
type Generation struct {
	LLM     driven.LLMService
	Prompts driven.PromptStore
	Options driven.GenerateOptions
}

// Pipeline runs retrieve, rerank and assemble for one query.
// It is shared by the answer and housing services.
type Pipeline struct {
	retriever *Retriever
	rerank    *RerankStage
	settings  domain.RAGSettings
}

// NewPipeline creates a retrieval pipeline. The reranker is used only when
// settings.RerankEnabled is set; it may be nil otherwise.
func NewPipeline(reranker driven.Reranker, settings domain.RAGSettings, m *metrics.Metrics) *Pipeline {
	if !settings.RerankEnabled {
		reranker = nil
	} else if reranker == nil {
		logger.Warn("rerank enabled without a reranker, keeping retrieval order")
	}
	return &Pipeline{
		retriever: NewRetriever(settings.RetrievalK, m),
		rerank:    NewRerankStage(reranker, m),
		settings:  settings,
	}
}

// Retriever returns the pipeline's retriever.
func (p *Pipeline) Retriever() *Retriever {
	return p.retriever
}

// Context retrieves, reranks and assembles the context for query.
func (p *Pipeline) Context(ctx context.Context, idx *session.KnowledgeIndex, query string) (*RetrievedContext, error) {
	candidates, err := p.retriever.Retrieve(ctx, idx, query, p.settings.RetrievalK)
	if err != nil {
		return nil, err
	}

	ranked, rerr := p.rerank.Rerank(ctx, query, candidates, p.settings.RerankTopK)
	var warnings []string
	if rerr != nil {
		warnings = append(warnings, rerr.Error())
	}

	text, sources := AssembleContext(domain.ChunksOf(ranked), p.settings.MaxContextChars)
	return &RetrievedContext{
		Text:     text,
		Sources:  sources,
		Chunks:   ranked,
		Warnings: warnings,
	}, nil
}

// generate runs the prompt through the LLM and classifies failures.
// A missing LLM is an AUTH_FAILURE: no credentials were configured.
func generate(ctx context.Context, gen Generation, prompt string, m *metrics.Metrics) (string, error) {
	if gen.LLM == nil {
		err := domain.NewGenerationError(domain.ErrAuthFailure, domain.ErrNotConfigured)
		m.GenerationFailed(domain.ReasonCode(err))
		return "", err
	}

	start := time.Now()
	text, err := gen.LLM.Generate(ctx, driven.GenerateRequest{
		System:  persona(gen.Prompts),
		Prompt:  prompt,
		Options: gen.Options,
	})
	if err != nil {
		reason := domain.ErrBackendFailure
		if errors.Is(err, domain.ErrAuthFailure) {
			reason = domain.ErrAuthFailure
		}
		gerr := domain.NewGenerationError(reason, err)
		m.GenerationFailed(domain.ReasonCode(gerr))
		return "", gerr
	}
	logger.Debug("generated %d bytes with %s in %s", len(text), gen.LLM.ModelName(), time.Since(start))
	return text, nil
}

// persona returns the system prompt, or "" when none can be loaded.
func persona(store driven.PromptStore) string {
	if store == nil {
		return ""
	}
	system, err := store.Load(driven.PromptSystem)
	if err != nil {
		logger.Debug("no system prompt: %v", err)
		return ""
	}
	return system
}
