package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// Pipeline defaults.
const (
	DefaultChunkSize       = 500
	DefaultChunkOverlap    = 100
	DefaultRetrievalK      = 10
	DefaultRerankTopK      = 10
	DefaultMaxContextChars = 12000
	DefaultEmbedBatchSize  = 32
	DefaultWorkers         = 4
)

// Backend defaults.
const (
	DefaultLLMModel       = "deepseek-chat"
	DefaultLLMBaseURL     = "https://api.deepseek.com/v1"
	DefaultEmbeddingModel = "sentence-transformers/paraphrase-multilingual-MiniLM-L12-v2"
	DefaultHashDimensions = 384
	DefaultBrowserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/102.0.0.0 Safari/537.36"
	DefaultFetchTimeout      = 20 * time.Second
	DefaultBackendTimeout    = 60 * time.Second
	DefaultRequestsPerSecond = 2.0
	DefaultServerAddr        = "127.0.0.1:8080"
)

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is any OpenAI-compatible API (OpenAI, DeepSeek).
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderHashing is the built-in offline embedder.
	AIProviderHashing AIProvider = "hashing"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI-compatible (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderHashing:
		return "Feature hashing (offline)"
	default:
		return unknownDescription
	}
}

// RerankProvider identifies the relevance model used by the reranker.
type RerankProvider string

// Available rerank providers.
const (
	// RerankProviderLexical scores candidates with an in-memory full-text index.
	RerankProviderLexical RerankProvider = "lexical"

	// RerankProviderCrossEncoder calls a cross-encoder /rerank endpoint.
	RerankProviderCrossEncoder RerankProvider = "crossencoder"
)

// IsValid returns true if the rerank provider is recognised.
func (p RerankProvider) IsValid() bool {
	return p == RerankProviderLexical || p == RerankProviderCrossEncoder
}

// FetcherMode selects how web pages are fetched.
type FetcherMode string

// Available fetcher modes.
const (
	// FetcherHTTP uses a plain HTTP GET.
	FetcherHTTP FetcherMode = "http"

	// FetcherBrowser renders the page in headless Chrome.
	FetcherBrowser FetcherMode = "browser"
)

// IsValid returns true if the fetcher mode is recognised.
func (m FetcherMode) IsValid() bool {
	return m == FetcherHTTP || m == FetcherBrowser
}

// RAGSettings holds the retrieval pipeline configuration.
type RAGSettings struct {
	ChunkSize       int
	ChunkOverlap    int
	RetrievalK      int
	RerankEnabled   bool
	RerankTopK      int
	MaxContextChars int

	// Splitter names the chunking strategy ("recursive" or "fixed").
	Splitter string

	// EmbedBatchSize is the number of chunks per embedding request.
	EmbedBatchSize int

	// Workers bounds parallel source loading and embedding.
	Workers int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI-compatible APIs).
	APIKey string

	// Dimensions is the vector size; 0 lets the backend decide.
	Dimensions int

	// Timeout bounds each embedding request.
	Timeout time.Duration
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI-compatible/Anthropic).
	APIKey string

	Temperature float64
	MaxTokens   int

	// Timeout bounds each generation request.
	Timeout time.Duration
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHashing {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RerankSettings holds reranker backend configuration.
type RerankSettings struct {
	Provider RerankProvider
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// SourceSettings holds defaults and fetch behaviour for sources.
type SourceSettings struct {
	DefaultFiles      []string
	DefaultURLs       []string
	Fetcher           FetcherMode
	FetchTimeout      time.Duration
	RequestsPerSecond float64
	UserAgent         string
}

// FeedbackInMemory is the feedback path that keeps ratings in memory only.
const FeedbackInMemory = "memory"

// FeedbackSettings configures the feedback log.
type FeedbackSettings struct {
	// Path is the SQLite database path. Empty uses ~/.genie/feedback.db and
	// FeedbackInMemory keeps feedback for the life of the process.
	Path string
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr string
}

// Settings holds all application settings.
type Settings struct {
	RAG       RAGSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Rerank    RerankSettings
	Sources   SourceSettings
	Feedback  FeedbackSettings
	Server    ServerSettings
}

// DefaultSettings returns settings with sensible defaults.
// The LLM targets DeepSeek and still needs an API key.
func DefaultSettings() Settings {
	return Settings{
		RAG: RAGSettings{
			ChunkSize:       DefaultChunkSize,
			ChunkOverlap:    DefaultChunkOverlap,
			RetrievalK:      DefaultRetrievalK,
			RerankEnabled:   false,
			RerankTopK:      DefaultRerankTopK,
			MaxContextChars: DefaultMaxContextChars,
			Splitter:        "recursive",
			EmbedBatchSize:  DefaultEmbedBatchSize,
			Workers:         DefaultWorkers,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderHashing,
			Model:      DefaultEmbeddingModel,
			Dimensions: DefaultHashDimensions,
			Timeout:    DefaultBackendTimeout,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOpenAI,
			Model:       DefaultLLMModel,
			BaseURL:     DefaultLLMBaseURL,
			Temperature: 0.2,
			MaxTokens:   1024,
			Timeout:     DefaultBackendTimeout,
		},
		Rerank: RerankSettings{
			Provider: RerankProviderLexical,
			Timeout:  DefaultBackendTimeout,
		},
		Sources: SourceSettings{
			DefaultFiles: []string{
				"data/ntu_housing_extended.txt",
				"data/ntu_visa.txt",
				"data/ntu_campus_life.txt",
				"data/ntu_academic_guide.txt",
			},
			DefaultURLs: []string{
				"https://www.ntu.edu.sg/about-us/ntu2025",
				"https://www.ntu.edu.sg/life-at-ntu/accommodation",
			},
			Fetcher:           FetcherHTTP,
			FetchTimeout:      DefaultFetchTimeout,
			RequestsPerSecond: DefaultRequestsPerSecond,
			UserAgent:         DefaultBrowserAgent,
		},
		Server: ServerSettings{
			Addr: DefaultServerAddr,
		},
	}
}

// Validate checks settings for values the pipeline cannot run with.
func (s Settings) Validate() error {
	if s.RAG.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk size must be at least 1, got %d", ErrInvalidInput, s.RAG.ChunkSize)
	}
	if s.RAG.ChunkOverlap < 0 || s.RAG.ChunkOverlap >= s.RAG.ChunkSize {
		return fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d",
			ErrInvalidInput, s.RAG.ChunkSize, s.RAG.ChunkOverlap)
	}
	if s.RAG.RetrievalK < 1 {
		return fmt.Errorf("%w: retrieval k must be positive, got %d", ErrInvalidInput, s.RAG.RetrievalK)
	}
	if s.RAG.RerankTopK < 1 {
		return fmt.Errorf("%w: rerank top k must be positive, got %d", ErrInvalidInput, s.RAG.RerankTopK)
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidInput, s.Embedding.Provider)
	}
	if !s.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: unknown llm provider %q", ErrInvalidInput, s.LLM.Provider)
	}
	if !s.Rerank.Provider.IsValid() {
		return fmt.Errorf("%w: unknown rerank provider %q", ErrInvalidInput, s.Rerank.Provider)
	}
	if !s.Sources.Fetcher.IsValid() {
		return fmt.Errorf("%w: unknown fetcher %q", ErrInvalidInput, s.Sources.Fetcher)
	}
	return nil
}
