// Package crossencoder calls a cross-encoder rerank endpoint.
//
// The request and response follow the /rerank shape shared by Jina,
// Cohere and Hugging Face text-embeddings-inference servers.
package crossencoder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// Default configuration values.
const (
	DefaultModel   = "BAAI/bge-reranker-v2-m3"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the cross-encoder reranker.
type Config struct {
	// BaseURL is the server root; requests go to BaseURL + "/rerank".
	BaseURL string

	// Model is sent as the "model" field.
	Model string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Reranker scores passages with a remote cross-encoder.
type Reranker struct {
	client  *http.Client
	baseURL string
	model   string
	apiKey  string
}

type rerankRequest struct {
	Model           string   `json:"model,omitempty"`
	Query           string   `json:"query"`
	Documents       []string `json:"documents"`
	Texts           []string `json:"texts"`
	TopN            int      `json:"top_n"`
	ReturnDocuments bool     `json:"return_documents"`
}

type rerankResult struct {
	Index          int      `json:"index"`
	RelevanceScore *float64 `json:"relevance_score"`
	Score          *float64 `json:"score"`
}

type rerankResponse struct {
	Results []rerankResult `json:"results"`
}

// New creates a cross-encoder reranker.
func New(cfg Config) (*Reranker, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("crossencoder: base URL is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Reranker{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
	}, nil
}

// Score sends all passages in one request and aligns the returned scores
// with the input order.
func (r *Reranker) Score(ctx context.Context, query string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return []float64{}, nil
	}

	jsonBody, err := json.Marshal(rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: passages,
		Texts:     passages,
		TopN:      len(passages),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/rerank", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank error (status %d): %s", resp.StatusCode, string(body))
	}

	results, err := decodeResults(body)
	if err != nil {
		return nil, err
	}
	return alignScores(results, len(passages))
}

// decodeResults accepts {"results": [...]} (Jina, Cohere) or a bare
// array (text-embeddings-inference).
func decodeResults(body []byte) ([]rerankResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var results []rerankResult
		if err := json.Unmarshal(trimmed, &results); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return results, nil
	}
	var wrapped rerankResponse
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return wrapped.Results, nil
}

func alignScores(results []rerankResult, n int) ([]float64, error) {
	if len(results) != n {
		return nil, fmt.Errorf("rerank returned %d scores for %d passages", len(results), n)
	}
	scores := make([]float64, n)
	seen := make([]bool, n)
	for _, res := range results {
		if res.Index < 0 || res.Index >= n || seen[res.Index] {
			return nil, fmt.Errorf("rerank returned invalid index %d", res.Index)
		}
		seen[res.Index] = true
		switch {
		case res.RelevanceScore != nil:
			scores[res.Index] = *res.RelevanceScore
		case res.Score != nil:
			scores[res.Index] = *res.Score
		default:
			return nil, fmt.Errorf("rerank result %d has no score", res.Index)
		}
	}
	return scores, nil
}

// Name returns the reranker name for logging.
func (r *Reranker) Name() string {
	return "crossencoder:" + r.model
}
