// Package app wires the driven adapters into the core services.
// Every driving adapter (CLI, HTTP, MCP, TUI) starts from an App.
package app

import (
	"errors"
	"fmt"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/ai"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/storage/memory"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/storage/sqlite"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/services"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/loaders/filesystem"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/loaders/upload"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/loaders/web"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/logger"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/metrics"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/normalisers"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/normalisers/html"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/normalisers/markdown"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/normalisers/pdf"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/normalisers/plaintext"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/postprocessors"
)

// Services groups the core services exposed to driving adapters.
type Services struct {
	Knowledge *services.KnowledgeService
	Answers   *services.AnswerService
	Housing   *services.HousingService
	Feedback  *services.FeedbackService
}

// App is a fully wired Campus Genie instance.
type App struct {
	Settings domain.Settings
	Session  *session.Session
	Metrics  *metrics.Metrics
	Services Services

	// Warnings lists backends that were unavailable at start-up.
	Warnings []string

	closers []func() error
}

type options struct {
	feedback driven.FeedbackStore
	fetcher  driven.PageFetcher
	backends *ai.InitResult
}

// Option customises New.
type Option func(*options)

// WithFeedbackStore replaces the store selected by settings.
func WithFeedbackStore(store driven.FeedbackStore) Option {
	return func(o *options) { o.feedback = store }
}

// WithPageFetcher replaces the fetcher selected by settings.
func WithPageFetcher(f driven.PageFetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithBackends replaces the AI backends created from settings.
func WithBackends(b *ai.InitResult) Option {
	return func(o *options) { o.backends = b }
}

// New builds an App from validated settings.
func New(settings domain.Settings, prompts driven.PromptStore, opts ...Option) (*App, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if prompts == nil {
		return nil, fmt.Errorf("%w: prompt store is required", domain.ErrInvalidInput)
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	a := &App{
		Settings: settings,
		Session:  session.New(),
		Metrics:  metrics.New(),
	}

	backends := o.backends
	if backends == nil {
		backends = ai.Init(settings)
		a.closers = append(a.closers, func() error { backends.Close(); return nil })
	}
	a.Warnings = append(a.Warnings, backends.Warnings...)

	splitter, err := newSplitter(settings.RAG)
	if err != nil {
		a.Close()
		return nil, err
	}

	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = web.NewFetcher(settings.Sources)
	}
	webLoader := web.New(fetcher, web.WithRateLimit(settings.Sources.RequestsPerSecond))
	a.closers = append(a.closers, webLoader.Close)

	feedback := o.feedback
	if feedback == nil {
		feedback, err = openFeedbackStore(settings.Feedback)
		if err != nil {
			a.Close()
			return nil, err
		}
	}
	a.closers = append(a.closers, feedback.Close)

	loaders := []driven.SourceLoader{filesystem.New(), upload.New(), webLoader}
	indexer := services.NewIndexer(backends.EmbeddingService, backends.VectorIndex,
		settings.RAG.EmbedBatchSize, settings.RAG.Workers)
	pipeline := services.NewPipeline(backends.Reranker, settings.RAG, a.Metrics)
	gen := services.Generation{
		LLM:     backends.LLMService,
		Prompts: prompts,
		Options: driven.GenerateOptions{
			MaxTokens:   settings.LLM.MaxTokens,
			Temperature: settings.LLM.Temperature,
		},
	}

	a.Services = Services{
		Knowledge: services.NewKnowledgeService(loaders, newNormalisers(), splitter, indexer,
			settings.RAG, settings.Sources, a.Metrics),
		Answers:  services.NewAnswerService(pipeline, gen, a.Metrics),
		Housing:  services.NewHousingService(pipeline, gen, a.Metrics),
		Feedback: services.NewFeedbackService(feedback, a.Metrics),
	}

	for _, w := range a.Warnings {
		logger.Warn("%s", w)
	}
	return a, nil
}

// Close releases backends, fetchers and the feedback store.
// The session index is dropped as well.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if a.Session != nil {
		a.Session.SwapIndex(nil)
	}
	return errors.Join(errs...)
}

func newNormalisers() *normalisers.Registry {
	return normalisers.NewRegistry(
		plaintext.New(),
		markdown.New(),
		html.New(),
		pdf.New(),
	)
}

func newSplitter(rag domain.RAGSettings) (driven.Splitter, error) {
	splitter, err := postprocessors.Default().Build(rag.Splitter, postprocessors.Options{
		Size:    rag.ChunkSize,
		Overlap: rag.ChunkOverlap,
	})
	if err != nil {
		return nil, fmt.Errorf("splitter: %w", err)
	}
	return splitter, nil
}

func openFeedbackStore(cfg domain.FeedbackSettings) (driven.FeedbackStore, error) {
	if cfg.Path == domain.FeedbackInMemory {
		return memory.NewFeedbackStore(), nil
	}
	store, err := sqlite.NewStore(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open feedback store: %w", err)
	}
	return store, nil
}
