// Package openai embeds text through any OpenAI-compatible /embeddings API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second
)

// knownSizes holds the native vector size of hosted models. Only the
// text-embedding-3 family accepts a dimensions parameter.
var knownSizes = map[string]struct {
	dims      int
	shortable bool
}{
	"text-embedding-3-small": {1536, true},
	"text-embedding-3-large": {3072, true},
	"text-embedding-ada-002": {1536, false},
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// Dimensions shortens text-embedding-3 vectors. For other models it only
	// declares the expected size.
	Dimensions int
}

// EmbeddingService wraps the openai-go Embeddings client.
type EmbeddingService struct {
	client    openai.Client
	model     string
	dims      atomic.Int64
	shortened bool
}

// NewEmbeddingService fails with domain.ErrNotConfigured without an API key.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai embeddings: api key: %w", domain.ErrNotConfigured)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	s := &EmbeddingService{
		client: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.BaseURL),
			option.WithRequestTimeout(cfg.Timeout),
			option.WithMaxRetries(2),
		),
		model: cfg.Model,
	}

	known := knownSizes[cfg.Model]
	switch {
	case cfg.Dimensions > 0:
		s.dims.Store(int64(cfg.Dimensions))
		s.shortened = known.shortable
	default:
		s.dims.Store(int64(known.dims))
	}
	return s, nil
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch sends every text in one request and places each vector by the
// index the API reports.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(s.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	}
	if s.shortened {
		params.Dimensions = openai.Int(s.dims.Load())
	}

	resp, err := s.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, classify(err)
	}

	vecs := make([][]float32, len(texts))
	for _, item := range resp.Data {
		i := int(item.Index)
		if i < 0 || i >= len(vecs) {
			return nil, fmt.Errorf("%w: vector index %d for %d inputs", domain.ErrDimensionMismatch, i, len(texts))
		}
		vec := make([]float32, len(item.Embedding))
		for j, v := range item.Embedding {
			vec[j] = float32(v)
		}
		vecs[i] = vec
	}
	for i := range vecs {
		if vecs[i] == nil {
			return nil, fmt.Errorf("%w: no vector for input %d", domain.ErrDimensionMismatch, i)
		}
	}
	s.dims.CompareAndSwap(0, int64(len(vecs[0])))
	return vecs, nil
}

// classify marks rejected keys with domain.ErrAuthFailure.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
		return fmt.Errorf("%w: openai embeddings: %w", domain.ErrAuthFailure, err)
	}
	return fmt.Errorf("openai embeddings: %w", err)
}

// Dimensions returns the vector size, or 0 until an unknown model has
// answered once.
func (s *EmbeddingService) Dimensions() int {
	return int(s.dims.Load())
}

func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping lists models, which checks both reachability and the key.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.client.Models.List(ctx); err != nil {
		return classify(err)
	}
	return nil
}

func (s *EmbeddingService) Close() error {
	return nil
}
