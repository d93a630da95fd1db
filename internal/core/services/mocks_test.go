package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	vectormemory "github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/vector/memory"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/loaders/filesystem"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/loaders/upload"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/normalisers"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/normalisers/plaintext"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/postprocessors/chunker"
)

const rooms = "Room A costs $500/month. Room B costs $700/month."

// conceptEmbedder stands in for a semantic model. Each dimension is a
// concept activated by keywords: the price facts of room A and room B, and
// a price-amount concept shared by questions and quoted prices.
type conceptEmbedder struct {
	mu    sync.Mutex
	calls int
}

var concepts = [][]string{
	{"room a", "$500"},
	{"room b", "$700"},
	{"how much", "$"},
}

func (e *conceptEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	lower := strings.ToLower(text)
	vec := make([]float32, len(concepts))
	for i, keywords := range concepts {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				vec[i] = 1
				break
			}
		}
	}
	return vec, nil
}

func (e *conceptEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *conceptEmbedder) Dimensions() int            { return len(concepts) }
func (e *conceptEmbedder) ModelName() string          { return "concepts" }
func (e *conceptEmbedder) Ping(context.Context) error { return nil }
func (e *conceptEmbedder) Close() error               { return nil }

// scriptedEmbedder returns canned vectors or errors.
type scriptedEmbedder struct {
	dims    int
	vectors func(texts []string) ([][]float32, error)
}

func (e *scriptedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (e *scriptedEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	return e.vectors(texts)
}

func (e *scriptedEmbedder) Dimensions() int            { return e.dims }
func (e *scriptedEmbedder) ModelName() string          { return "scripted" }
func (e *scriptedEmbedder) Ping(context.Context) error { return nil }
func (e *scriptedEmbedder) Close() error               { return nil }

// mockLLM records prompts and answers with a fixed reply or error.
type mockLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	systems []string
}

func (m *mockLLM) Generate(_ context.Context, req driven.GenerateRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, req.Prompt)
	m.systems = append(m.systems, req.System)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

func (m *mockLLM) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// mockReranker returns scores from a function.
type mockReranker struct {
	score func(query string, passages []string) ([]float64, error)
}

func (m *mockReranker) Score(_ context.Context, query string, passages []string) ([]float64, error) {
	return m.score(query, passages)
}

func (m *mockReranker) Name() string { return "mock" }

// staticPrompts serves fixed templates.
type staticPrompts map[string]string

func (p staticPrompts) Load(name string) (string, error) {
	tmpl, ok := p[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return tmpl, nil
}

func (p staticPrompts) Reload() {}

var testPrompts = staticPrompts{
	driven.PromptSystem:  "You are Campus Genie.",
	driven.PromptChat:    "CONTEXT:\n{context}\nQUESTION: {input}",
	driven.PromptHousing: "PREFS:\n{preferences}CONTEXT:\n{context}\nTASK: {input}",
}

// failingLoader fails every source it is asked for.
type failingLoader struct {
	kind   domain.SourceKind
	reason error
}

func (l *failingLoader) Kinds() []domain.SourceKind { return []domain.SourceKind{l.kind} }

func (l *failingLoader) Load(_ context.Context, ref domain.SourceRef) ([]domain.RawDocument, error) {
	return nil, domain.NewLoadError(ref.Origin(), l.reason, errors.New("simulated"))
}

// pageFetcher returns the same page for every URL.
type pageFetcher struct {
	page driven.FetchedPage
}

func (f *pageFetcher) Fetch(_ context.Context, url string) (*driven.FetchedPage, error) {
	p := f.page
	p.URL = url
	return &p, nil
}

func (f *pageFetcher) Close() error { return nil }

func newTestKnowledge(embedder driven.EmbeddingService, extra ...driven.SourceLoader) *KnowledgeService {
	loaders := append([]driven.SourceLoader{upload.New(), filesystem.New()}, extra...)
	return NewKnowledgeService(
		loaders,
		normalisers.NewRegistry(plaintext.New()),
		chunker.NewRecursive(),
		NewIndexer(embedder, vectormemory.Factory, 2, 2),
		domain.DefaultSettings().RAG,
		domain.SourceSettings{},
		nil,
	)
}

// buildRooms builds the two-room knowledge base with chunk size 20, overlap 5.
func buildRooms(t *testing.T, embedder driven.EmbeddingService) *session.Session {
	t.Helper()
	sess := session.New()
	_, err := newTestKnowledge(embedder).Build(context.Background(), sess, domain.BuildRequest{
		Uploads:      []domain.Upload{{Name: "rooms.txt", Content: []byte(rooms)}},
		ChunkSize:    20,
		ChunkOverlap: 5,
	})
	require.NoError(t, err)
	return sess
}

func textChunk(id, text, source string) domain.Chunk {
	return domain.Chunk{
		ID:       id,
		Text:     text,
		Origin:   domain.Origin{Kind: domain.SourceKindFile, Identifier: source},
		Metadata: map[string]string{},
	}
}

func scoredOf(chunks ...domain.Chunk) []domain.ScoredChunk {
	out := make([]domain.ScoredChunk, len(chunks))
	for i, c := range chunks {
		out[i] = domain.ScoredChunk{Chunk: c, Score: float64(len(chunks) - i)}
	}
	return out
}
