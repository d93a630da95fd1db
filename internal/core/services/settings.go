package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyChunkSize       = "rag.chunk_size"
	KeyChunkOverlap    = "rag.chunk_overlap"
	KeyRetrievalK      = "rag.retrieval_k"
	KeyRerank          = "rag.rerank"
	KeyRerankTopK      = "rag.rerank_top_k"
	KeyMaxContextChars = "rag.max_context_chars"
	KeySplitter        = "rag.splitter"
	KeyEmbedBatchSize  = "rag.embed_batch_size"
	KeyWorkers         = "rag.workers"

	KeyEmbedProvider   = "embedding.provider"
	KeyEmbedModel      = "embedding.model"
	KeyEmbedBaseURL    = "embedding.base_url"
	KeyEmbedAPIKey     = "embedding.api_key"
	KeyEmbedDimensions = "embedding.dimensions"
	KeyEmbedTimeout    = "embedding.timeout"

	KeyLLMProvider    = "llm.provider"
	KeyLLMModel       = "llm.model"
	KeyLLMBaseURL     = "llm.base_url"
	KeyLLMAPIKey      = "llm.api_key"
	KeyLLMTemperature = "llm.temperature"
	KeyLLMMaxTokens   = "llm.max_tokens"
	KeyLLMTimeout     = "llm.timeout"

	KeyRerankProvider = "rerank.provider"
	KeyRerankModel    = "rerank.model"
	KeyRerankBaseURL  = "rerank.base_url"
	KeyRerankAPIKey   = "rerank.api_key"
	KeyRerankTimeout  = "rerank.timeout"

	KeySourceFiles  = "sources.files"
	KeySourceURLs   = "sources.urls"
	KeyFetcher      = "sources.fetcher"
	KeyFetchTimeout = "sources.fetch_timeout"
	KeyFetchRate    = "sources.requests_per_second"
	KeyUserAgent    = "sources.user_agent"

	KeyFeedbackPath = "feedback.path"
	KeyServerAddr   = "server.addr"
)

type valueKind int

const (
	kindString valueKind = iota
	kindSecret
	kindInt
	kindFloat
	kindBool
	kindList
	kindDuration
)

type settingKey struct {
	key  string
	kind valueKind
	help string
}

var settingKeys = []settingKey{
	{KeyChunkSize, kindInt, "characters per chunk"},
	{KeyChunkOverlap, kindInt, "characters shared by adjacent chunks"},
	{KeyRetrievalK, kindInt, "chunks retrieved per question"},
	{KeyRerank, kindBool, "rerank retrieved chunks"},
	{KeyRerankTopK, kindInt, "chunks kept after reranking"},
	{KeyMaxContextChars, kindInt, "context budget in characters"},
	{KeySplitter, kindString, "chunking strategy: recursive or fixed"},
	{KeyEmbedBatchSize, kindInt, "chunks per embedding request"},
	{KeyWorkers, kindInt, "parallel source loads and embedding batches"},
	{KeyEmbedProvider, kindString, "hashing, openai or ollama"},
	{KeyEmbedModel, kindString, "embedding model name"},
	{KeyEmbedBaseURL, kindString, "embedding API endpoint"},
	{KeyEmbedAPIKey, kindSecret, "embedding API key (OPENAI_API_KEY)"},
	{KeyEmbedDimensions, kindInt, "embedding vector size, 0 for the model default"},
	{KeyEmbedTimeout, kindDuration, "embedding request timeout"},
	{KeyLLMProvider, kindString, "openai, anthropic or ollama"},
	{KeyLLMModel, kindString, "chat model name"},
	{KeyLLMBaseURL, kindString, "chat API endpoint"},
	{KeyLLMAPIKey, kindSecret, "chat API key (DEEPSEEK_API_KEY)"},
	{KeyLLMTemperature, kindFloat, "sampling temperature"},
	{KeyLLMMaxTokens, kindInt, "maximum answer tokens"},
	{KeyLLMTimeout, kindDuration, "generation request timeout"},
	{KeyRerankProvider, kindString, "lexical or crossencoder"},
	{KeyRerankModel, kindString, "cross-encoder model name"},
	{KeyRerankBaseURL, kindString, "cross-encoder endpoint"},
	{KeyRerankAPIKey, kindSecret, "cross-encoder API key"},
	{KeyRerankTimeout, kindDuration, "rerank request timeout"},
	{KeySourceFiles, kindList, "default knowledge files"},
	{KeySourceURLs, kindList, "default knowledge URLs"},
	{KeyFetcher, kindString, "web fetcher: http or browser"},
	{KeyFetchTimeout, kindDuration, "web fetch timeout"},
	{KeyFetchRate, kindFloat, "web fetches per second"},
	{KeyUserAgent, kindString, "User-Agent sent with web fetches"},
	{KeyFeedbackPath, kindString, "feedback database path, \"memory\" to keep it in memory"},
	{KeyServerAddr, kindString, "HTTP API listen address"},
}

// SettingKeys returns every known settings key in display order.
func SettingKeys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

func lookupKey(key string) (settingKey, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k, true
		}
	}
	return settingKey{}, false
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := &domain.Settings{
		RAG: domain.RAGSettings{
			ChunkSize:       s.getInt(KeyChunkSize, d.RAG.ChunkSize),
			ChunkOverlap:    s.getInt(KeyChunkOverlap, d.RAG.ChunkOverlap),
			RetrievalK:      s.getInt(KeyRetrievalK, d.RAG.RetrievalK),
			RerankEnabled:   s.getBool(KeyRerank, d.RAG.RerankEnabled),
			RerankTopK:      s.getInt(KeyRerankTopK, d.RAG.RerankTopK),
			MaxContextChars: s.getInt(KeyMaxContextChars, d.RAG.MaxContextChars),
			Splitter:        s.getString(KeySplitter, d.RAG.Splitter),
			EmbedBatchSize:  s.getInt(KeyEmbedBatchSize, d.RAG.EmbedBatchSize),
			Workers:         s.getInt(KeyWorkers, d.RAG.Workers),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   domain.AIProvider(s.getString(KeyEmbedProvider, string(d.Embedding.Provider))),
			Model:      s.getString(KeyEmbedModel, d.Embedding.Model),
			BaseURL:    s.getString(KeyEmbedBaseURL, d.Embedding.BaseURL),
			APIKey:     s.configStore.GetString(KeyEmbedAPIKey),
			Dimensions: s.getInt(KeyEmbedDimensions, d.Embedding.Dimensions),
			Timeout:    s.getDuration(KeyEmbedTimeout, d.Embedding.Timeout),
		},
		LLM: domain.LLMSettings{
			Provider:    domain.AIProvider(s.getString(KeyLLMProvider, string(d.LLM.Provider))),
			Model:       s.getString(KeyLLMModel, d.LLM.Model),
			BaseURL:     s.getString(KeyLLMBaseURL, d.LLM.BaseURL),
			APIKey:      s.configStore.GetString(KeyLLMAPIKey),
			Temperature: s.getFloat(KeyLLMTemperature, d.LLM.Temperature),
			MaxTokens:   s.getInt(KeyLLMMaxTokens, d.LLM.MaxTokens),
			Timeout:     s.getDuration(KeyLLMTimeout, d.LLM.Timeout),
		},
		Rerank: domain.RerankSettings{
			Provider: domain.RerankProvider(s.getString(KeyRerankProvider, string(d.Rerank.Provider))),
			Model:    s.getString(KeyRerankModel, d.Rerank.Model),
			BaseURL:  s.getString(KeyRerankBaseURL, d.Rerank.BaseURL),
			APIKey:   s.configStore.GetString(KeyRerankAPIKey),
			Timeout:  s.getDuration(KeyRerankTimeout, d.Rerank.Timeout),
		},
		Sources: domain.SourceSettings{
			DefaultFiles:      s.getList(KeySourceFiles, d.Sources.DefaultFiles),
			DefaultURLs:       s.getList(KeySourceURLs, d.Sources.DefaultURLs),
			Fetcher:           domain.FetcherMode(s.getString(KeyFetcher, string(d.Sources.Fetcher))),
			FetchTimeout:      s.getDuration(KeyFetchTimeout, d.Sources.FetchTimeout),
			RequestsPerSecond: s.getFloat(KeyFetchRate, d.Sources.RequestsPerSecond),
			UserAgent:         s.getString(KeyUserAgent, d.Sources.UserAgent),
		},
		Feedback: domain.FeedbackSettings{
			Path: s.getString(KeyFeedbackPath, d.Feedback.Path),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(KeyServerAddr, d.Server.Addr),
		},
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Set parses value for key and persists it. The previous value is
// restored if the result does not validate.
func (s *SettingsService) Set(key, value string) error {
	k, ok := lookupKey(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	typed, err := parseValue(k.kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	previous, hadPrevious := s.configStore.Get(key)
	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	if _, err := s.Get(); err != nil {
		restore := previous
		if !hadPrevious {
			restore = s.defaultValue(k)
		}
		if rerr := s.configStore.Set(key, restore); rerr != nil {
			return fmt.Errorf("%w (restore failed: %v)", err, rerr)
		}
		return err
	}
	return nil
}

// Entries lists every key with its resolved value; secrets are masked.
func (s *SettingsService) Entries() ([]driving.SettingEntry, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}
	values := flattenSettings(settings)

	entries := make([]driving.SettingEntry, 0, len(settingKeys))
	for _, k := range settingKeys {
		v := values[k.key]
		if k.kind == kindSecret {
			v = MaskSecret(v)
		}
		entries = append(entries, driving.SettingEntry{Key: k.key, Value: v, Help: k.help})
	}
	return entries, nil
}

// defaultValue returns the typed default for k, used to undo a rejected Set.
func (s *SettingsService) defaultValue(k settingKey) any {
	d := domain.DefaultSettings()
	raw := flattenSettings(&d)[k.key]
	typed, err := parseValue(k.kind, raw)
	if err != nil {
		return raw
	}
	return typed
}

// MaskSecret hides all but the last four characters of a key.
func MaskSecret(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}

func flattenSettings(st *domain.Settings) map[string]string {
	return map[string]string{
		KeyChunkSize:       strconv.Itoa(st.RAG.ChunkSize),
		KeyChunkOverlap:    strconv.Itoa(st.RAG.ChunkOverlap),
		KeyRetrievalK:      strconv.Itoa(st.RAG.RetrievalK),
		KeyRerank:          strconv.FormatBool(st.RAG.RerankEnabled),
		KeyRerankTopK:      strconv.Itoa(st.RAG.RerankTopK),
		KeyMaxContextChars: strconv.Itoa(st.RAG.MaxContextChars),
		KeySplitter:        st.RAG.Splitter,
		KeyEmbedBatchSize:  strconv.Itoa(st.RAG.EmbedBatchSize),
		KeyWorkers:         strconv.Itoa(st.RAG.Workers),
		KeyEmbedProvider:   st.Embedding.Provider.String(),
		KeyEmbedModel:      st.Embedding.Model,
		KeyEmbedBaseURL:    st.Embedding.BaseURL,
		KeyEmbedAPIKey:     st.Embedding.APIKey,
		KeyEmbedDimensions: strconv.Itoa(st.Embedding.Dimensions),
		KeyEmbedTimeout:    st.Embedding.Timeout.String(),
		KeyLLMProvider:     st.LLM.Provider.String(),
		KeyLLMModel:        st.LLM.Model,
		KeyLLMBaseURL:      st.LLM.BaseURL,
		KeyLLMAPIKey:       st.LLM.APIKey,
		KeyLLMTemperature:  strconv.FormatFloat(st.LLM.Temperature, 'g', -1, 64),
		KeyLLMMaxTokens:    strconv.Itoa(st.LLM.MaxTokens),
		KeyLLMTimeout:      st.LLM.Timeout.String(),
		KeyRerankProvider:  string(st.Rerank.Provider),
		KeyRerankModel:     st.Rerank.Model,
		KeyRerankBaseURL:   st.Rerank.BaseURL,
		KeyRerankAPIKey:    st.Rerank.APIKey,
		KeyRerankTimeout:   st.Rerank.Timeout.String(),
		KeySourceFiles:     strings.Join(st.Sources.DefaultFiles, ","),
		KeySourceURLs:      strings.Join(st.Sources.DefaultURLs, ","),
		KeyFetcher:         string(st.Sources.Fetcher),
		KeyFetchTimeout:    st.Sources.FetchTimeout.String(),
		KeyFetchRate:       strconv.FormatFloat(st.Sources.RequestsPerSecond, 'g', -1, 64),
		KeyUserAgent:       st.Sources.UserAgent,
		KeyFeedbackPath:    st.Feedback.Path,
		KeyServerAddr:      st.Server.Addr,
	}
}

func parseValue(kind valueKind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case kindInt:
		return strconv.Atoi(raw)
	case kindFloat:
		return strconv.ParseFloat(raw, 64)
	case kindBool:
		return strconv.ParseBool(raw)
	case kindDuration:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, err
		}
		return d.String(), nil
	case kindList:
		var out []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	default:
		return raw, nil
	}
}

// Helper methods for reading config values with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetString(key)
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getList(key string, defaultVal []string) []string {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}

// getFloat accepts TOML floats and integers and environment strings.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// getDuration accepts "20s" style strings or a number of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case int64:
		return time.Duration(v) * time.Second
	case int:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	case string:
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return defaultVal
}
