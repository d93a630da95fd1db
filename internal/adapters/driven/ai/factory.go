// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/llm/ollama"
	openaillm "github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/llm/openai"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/rerank/crossencoder"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/rerank/lexical"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/vector/memory"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService // Nil when no LLM is configured.
	Reranker         driven.Reranker   // Nil when reranking is disabled.
	VectorIndex      driven.VectorIndexFactory
	Warnings         []string // Non-fatal issues that caused fallback.
	FellBack         bool     // True if embeddings fell back to feature hashing.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates every AI backend from settings without network access.
// An embedding provider that cannot be created falls back to the offline
// hashing embedder; a missing LLM or reranker is reported as a warning.
func Init(settings domain.Settings) *InitResult {
	result := &InitResult{VectorIndex: memory.Factory}

	embedder, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("embedding provider %s unavailable (%v), using offline feature hashing",
				settings.Embedding.Provider, err))
		result.FellBack = true
		embedder = hashing.NewEmbeddingService(domain.DefaultHashDimensions)
	}
	result.EmbeddingService = embedder

	llm, err := CreateLLMService(&settings.LLM)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("llm unavailable: %v", err))
	case llm == nil:
		result.Warnings = append(result.Warnings,
			"llm not configured: set DEEPSEEK_API_KEY or run 'genie settings set-key'")
	default:
		result.LLMService = llm
	}

	if settings.RAG.RerankEnabled {
		reranker, err := CreateReranker(&settings.Rerank)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("reranker unavailable (%v), using retriever order", err))
		} else {
			result.Reranker = reranker
		}
	}

	return result
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'genie settings show' to check", domain.ErrNotConfigured, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, domain.NewEmbeddingError(domain.ErrBackendUnreachable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig creates an embedding service and pings it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateAndValidateEmbeddingService(settings)
	if err != nil {
		return err
	}
	return svc.Close()
}

// ValidateLLMConfig creates an LLM service and pings it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return fmt.Errorf("%w: llm provider %s", domain.ErrNotConfigured, settings.Provider)
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Nil settings select the offline hashing embedder.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return hashing.NewEmbeddingService(domain.DefaultHashDimensions), nil
	}

	switch settings.Provider {
	case domain.AIProviderHashing:
		return hashing.NewEmbeddingService(settings.Dimensions), nil

	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		if settings.APIKey == "" {
			return nil, fmt.Errorf("%w: openai embeddings need an API key (OPENAI_API_KEY)", domain.ErrNotConfigured)
		}
		return createOpenAIEmbedding(settings)

	case domain.AIProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("%w: anthropic does not support embeddings, use hashing, ollama or openai",
			domain.ErrUnsupportedType)

	default:
		return nil, fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("%w: llm provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateReranker creates the reranker selected by settings.
func CreateReranker(settings *domain.RerankSettings) (driven.Reranker, error) {
	if settings == nil {
		return lexical.New(), nil
	}

	switch settings.Provider {
	case domain.RerankProviderLexical, "":
		return lexical.New(), nil

	case domain.RerankProviderCrossEncoder:
		return crossencoder.New(crossencoder.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			APIKey:  settings.APIKey,
			Timeout: settings.Timeout,
		})

	default:
		return nil, fmt.Errorf("%w: rerank provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    settings.Timeout,
		Dimensions: settings.Dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI-compatible embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    settings.Timeout,
		Dimensions: settings.Dimensions,
	})
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: settings.Timeout,
	})
}

// createOpenAILLM creates an OpenAI-compatible LLM service (DeepSeek by default).
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: settings.Timeout,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: settings.Timeout,
	})
}
