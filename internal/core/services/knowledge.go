package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driving"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/logger"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/metrics"
)

// Ensure KnowledgeService implements the interface.
var _ driving.KnowledgeBaseService = (*KnowledgeService)(nil)

// KnowledgeService builds session knowledge bases: load, normalise,
// chunk, embed, then swap the new index in.
type KnowledgeService struct {
	loaders     map[domain.SourceKind]driven.SourceLoader
	normalisers driven.NormaliserRegistry
	splitter    driven.Splitter
	indexer     *Indexer
	rag         domain.RAGSettings
	sources     domain.SourceSettings
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewKnowledgeService creates a knowledge base service. Each loader is
// registered for the kinds it reports.
func NewKnowledgeService(
	loaders []driven.SourceLoader,
	normalisers driven.NormaliserRegistry,
	splitter driven.Splitter,
	indexer *Indexer,
	rag domain.RAGSettings,
	sources domain.SourceSettings,
	m *metrics.Metrics,
) *KnowledgeService {
	byKind := make(map[domain.SourceKind]driven.SourceLoader)
	for _, l := range loaders {
		for _, kind := range l.Kinds() {
			byKind[kind] = l
		}
	}
	return &KnowledgeService{
		loaders:     byKind,
		normalisers: normalisers,
		splitter:    splitter,
		indexer:     indexer,
		rag:         rag,
		sources:     sources,
		metrics:     m,
		now:         time.Now,
	}
}

// loadResult is the outcome of one source, kept at its request position.
type loadResult struct {
	ref  domain.SourceRef
	docs []domain.SourceDocument
	err  error
}

// Build loads every requested source, chunks and embeds the documents and
// atomically replaces the session index.
//
// Per-source failures become diagnostics. The index is left untouched when
// there are no sources, no source yields a document, or embedding fails.
func (s *KnowledgeService) Build(
	ctx context.Context,
	sess *session.Session,
	req domain.BuildRequest,
) (*domain.BuildReport, error) {
	start := s.now()
	req.Progress = serialise(req.Progress)
	report := &domain.BuildReport{Stats: []domain.SourceStat{}, Diagnostics: []domain.Diagnostic{}}

	refs, dupes := s.refs(req)
	for _, d := range dupes {
		report.Diagnostics = append(report.Diagnostics, domain.Diagnostic{
			Source:   d.Location,
			Kind:     d.Kind,
			Message:  "duplicate source ignored",
			Severity: domain.SeverityWarning,
		})
	}
	if len(refs) == 0 {
		report.Diagnostics = append(report.Diagnostics, domain.Diagnostic{
			Message:  "no sources given",
			Severity: domain.SeverityError,
		})
		s.fail(req, report, start, domain.ErrNoSources)
		return report, domain.ErrNoSources
	}

	release := sess.LockBuild()
	defer release()

	logger.Section("Knowledge base build")
	results, err := s.loadAll(ctx, refs, req.Progress)
	if err != nil {
		s.fail(req, report, start, err)
		return report, err
	}

	docs := s.merge(results, report)
	report.Documents = len(docs)
	if len(docs) == 0 {
		report.Diagnostics = append(report.Diagnostics, domain.Diagnostic{
			Message:  "no source produced any text",
			Severity: domain.SeverityError,
		})
		s.fail(req, report, start, domain.ErrNoValidSources)
		return report, domain.ErrNoValidSources
	}

	size, overlap := s.chunkParams(req)
	emit(req.Progress, domain.BuildProgress{
		Stage:   domain.StageChunk,
		Message: fmt.Sprintf("splitting %d documents (size %d, overlap %d)", len(docs), size, overlap),
	})
	chunks := s.splitter.Split(docs, size, overlap)
	countChunks(report.Stats, chunks)

	emit(req.Progress, domain.BuildProgress{
		Stage:   domain.StageEmbed,
		Message: fmt.Sprintf("embedding %d chunks", len(chunks)),
		Total:   len(chunks),
	})
	vectors, err := s.indexer.Index(ctx, chunks, func(done, total int) {
		emit(req.Progress, domain.BuildProgress{
			Stage:   domain.StageEmbed,
			Message: fmt.Sprintf("embedded %d/%d chunks", done, total),
			Current: done,
			Total:   total,
		})
	})
	if err != nil {
		report.Diagnostics = append(report.Diagnostics, domain.Diagnostic{
			Reason:   domain.ReasonCode(err),
			Message:  err.Error(),
			Severity: domain.SeverityError,
		})
		s.fail(req, report, start, err)
		return report, err
	}

	idx := session.NewKnowledgeIndex(vectors, s.indexer.Embedder(), chunks, report.Stats, s.now())
	emit(req.Progress, domain.BuildProgress{Stage: domain.StageSwap, Message: "activating new index"})
	sess.SwapIndex(idx)

	report.Chunks = len(chunks)
	report.Duration = s.now().Sub(start)
	s.metrics.BuildFinished(report.Duration, report.Chunks, nil)
	emit(req.Progress, domain.BuildProgress{
		Stage: domain.StageDone,
		Message: fmt.Sprintf("indexed %d chunks from %d sources in %s",
			report.Chunks, len(report.Stats), report.Duration.Round(time.Millisecond)),
	})
	return report, nil
}

// Sources returns the source stats of the session's current index.
func (s *KnowledgeService) Sources(sess *session.Session) []domain.SourceStat {
	stats := sess.Sources()
	if stats == nil {
		return []domain.SourceStat{}
	}
	return stats
}

// refs lists the sources of a request in request order: uploads, files,
// URLs, then the configured defaults. Repeated origins are dropped.
func (s *KnowledgeService) refs(req domain.BuildRequest) (refs, dupes []domain.SourceRef) {
	all := domain.UploadRefs(req.Uploads)
	for _, f := range req.Files {
		all = append(all, domain.SourceRef{Kind: domain.SourceKindFile, Location: f})
	}
	for _, u := range req.URLs {
		all = append(all, domain.SourceRef{Kind: domain.SourceKindURL, Location: u})
	}
	if req.UseDefaults {
		for _, f := range s.sources.DefaultFiles {
			all = append(all, domain.SourceRef{Kind: domain.SourceKindDefault, Location: f})
		}
		for _, u := range s.sources.DefaultURLs {
			all = append(all, domain.SourceRef{Kind: domain.SourceKindURL, Location: u})
		}
	}

	seen := make(map[domain.Origin]bool, len(all))
	for _, ref := range all {
		if ref.Location == "" {
			continue
		}
		if seen[ref.Origin()] {
			dupes = append(dupes, ref)
			continue
		}
		seen[ref.Origin()] = true
		refs = append(refs, ref)
	}
	return refs, dupes
}

// loadAll loads and normalises sources in parallel. Only cancellation of
// ctx is returned as an error; source failures are kept in the results.
func (s *KnowledgeService) loadAll(
	ctx context.Context,
	refs []domain.SourceRef,
	progress func(domain.BuildProgress),
) ([]loadResult, error) {
	results := make([]loadResult, len(refs))
	workers := s.rag.Workers
	if workers <= 0 {
		workers = domain.DefaultWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, ref := range refs {
		g.Go(func() error {
			emit(progress, domain.BuildProgress{
				Stage:   domain.StageLoad,
				Source:  ref.Location,
				Message: "loading " + ref.Location,
				Current: i + 1,
				Total:   len(refs),
			})
			docs, err := s.load(gctx, ref)
			if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) && ctx.Err() != nil {
				return ctx.Err()
			}
			results[i] = loadResult{ref: ref, docs: docs, err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	return results, nil
}

// load reads one source and normalises its raw documents.
// Every failure is returned as a *domain.LoadError.
func (s *KnowledgeService) load(ctx context.Context, ref domain.SourceRef) ([]domain.SourceDocument, error) {
	origin := ref.Origin()
	loader, ok := s.loaders[ref.Kind]
	if !ok {
		return nil, domain.NewLoadError(origin, domain.ErrUnsupportedFormat,
			fmt.Errorf("no loader for %s sources", ref.Kind))
	}

	raws, err := loader.Load(ctx, ref)
	if err != nil {
		return nil, asLoadError(origin, domain.ErrUnreadable, err)
	}

	var docs []domain.SourceDocument
	var lastErr error
	for i := range raws {
		out, err := s.normalisers.Normalise(ctx, &raws[i])
		if err != nil {
			lastErr = err
			continue
		}
		docs = append(docs, out...)
	}
	if len(docs) == 0 {
		if lastErr != nil {
			return nil, asLoadError(origin, domain.ErrUnsupportedFormat, lastErr)
		}
		return nil, domain.NewLoadError(origin, domain.ErrEmpty, errors.New("no text extracted"))
	}
	return docs, nil
}

// merge folds the results into the report in request order and returns
// the documents to chunk.
func (s *KnowledgeService) merge(results []loadResult, report *domain.BuildReport) []domain.SourceDocument {
	var docs []domain.SourceDocument
	for _, res := range results {
		kind := string(res.ref.Kind)
		if res.err != nil {
			reason := domain.ReasonCode(res.err)
			logger.Warn("skipping %s: %v", res.ref.Location, res.err)
			s.metrics.SourceFailed(kind, reason)
			report.Diagnostics = append(report.Diagnostics, domain.Diagnostic{
				Source:   res.ref.Location,
				Kind:     res.ref.Kind,
				Reason:   reason,
				Message:  res.err.Error(),
				Severity: domain.SeverityWarning,
			})
			continue
		}

		stat := domain.SourceStat{
			Identifier: res.ref.Location,
			Kind:       res.ref.Kind,
			KindLabel:  res.ref.Kind.Label(),
			Documents:  len(res.docs),
		}
		for _, d := range res.docs {
			stat.CharCount += d.CharCount
		}
		if truncated(res.docs) {
			report.Diagnostics = append(report.Diagnostics, domain.Diagnostic{
				Source:   res.ref.Location,
				Kind:     res.ref.Kind,
				Message:  "content truncated at the size limit; only the first part is indexed",
				Severity: domain.SeverityWarning,
			})
		}
		logger.Info("loaded %s: %d documents, %d chars", res.ref.Location, stat.Documents, stat.CharCount)
		s.metrics.SourceLoaded(kind)
		report.Stats = append(report.Stats, stat)
		docs = append(docs, res.docs...)
	}
	return docs
}

// chunkParams resolves the request's chunking parameters over the settings.
func (s *KnowledgeService) chunkParams(req domain.BuildRequest) (size, overlap int) {
	size, overlap = s.rag.ChunkSize, s.rag.ChunkOverlap
	if req.ChunkSize > 0 {
		size = req.ChunkSize
	}
	if req.ChunkOverlap >= 0 {
		overlap = req.ChunkOverlap
	}
	return size, overlap
}

func (s *KnowledgeService) fail(req domain.BuildRequest, report *domain.BuildReport, start time.Time, err error) {
	report.Duration = s.now().Sub(start)
	s.metrics.BuildFinished(report.Duration, 0, err)
	logger.Error("knowledge base build failed: %v", err)
	emit(req.Progress, domain.BuildProgress{Stage: domain.StageFailed, Message: err.Error()})
}

func truncated(docs []domain.SourceDocument) bool {
	for _, d := range docs {
		if d.Metadata[domain.MetaTruncated] == "true" {
			return true
		}
	}
	return false
}

func countChunks(stats []domain.SourceStat, chunks []domain.Chunk) {
	pos := make(map[domain.Origin]int, len(stats))
	for i, st := range stats {
		pos[domain.Origin{Kind: st.Kind, Identifier: st.Identifier}] = i
	}
	for _, c := range chunks {
		if i, ok := pos[c.Origin]; ok {
			stats[i].Chunks++
		}
	}
}

func asLoadError(origin domain.Origin, reason, err error) error {
	var lerr *domain.LoadError
	if errors.As(err, &lerr) {
		return err
	}
	return domain.NewLoadError(origin, reason, err)
}

// serialise guards progress so parallel loads never call it concurrently.
func serialise(progress func(domain.BuildProgress)) func(domain.BuildProgress) {
	if progress == nil {
		return nil
	}
	var mu sync.Mutex
	return func(p domain.BuildProgress) {
		mu.Lock()
		defer mu.Unlock()
		progress(p)
	}
}

func emit(progress func(domain.BuildProgress), p domain.BuildProgress) {
	if p.Source != "" {
		logger.Debug("[%s] %s", p.Stage, p.Message)
	} else {
		logger.Info("[%s] %s", p.Stage, p.Message)
	}
	if progress != nil {
		progress(p)
	}
}
