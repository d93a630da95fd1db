package domain

import "time"

// Upload is a file submitted by a user interface.
type Upload struct {
	Name    string
	Content []byte
}

// BuildStage names a step of a knowledge base build.
type BuildStage string

// Build stages in execution order.
const (
	StageLoad   BuildStage = "load"
	StageChunk  BuildStage = "chunk"
	StageEmbed  BuildStage = "embed"
	StageSwap   BuildStage = "swap"
	StageDone   BuildStage = "done"
	StageFailed BuildStage = "failed"
)

// BuildProgress is emitted while a build runs.
type BuildProgress struct {
	Stage   BuildStage
	Source  string
	Message string
	Current int
	Total   int
}

// BuildRequest describes one knowledge base build.
type BuildRequest struct {
	// Uploads are in-memory files (UPLOAD kind).
	Uploads []Upload

	// URLs are web pages to fetch.
	URLs []string

	// Files are local paths named by the user (FILE kind).
	Files []string

	// ChunkSize is the maximum chunk length; <= 0 uses the configured default.
	ChunkSize int

	// ChunkOverlap is the overlap between adjacent chunks. A negative value
	// uses the configured default; zero means no overlap.
	ChunkOverlap int

	// UseDefaults adds the configured default files and URLs.
	UseDefaults bool

	// Progress receives status updates. May be nil. Calls are serialised.
	Progress func(BuildProgress)
}

// Severity grades a diagnostic.
type Severity string

// Diagnostic severities.
const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic records a non-fatal problem found during a build.
type Diagnostic struct {
	// Source is the origin identifier the problem relates to (may be empty).
	Source string `json:"source,omitempty"`

	// Kind is the source kind, when known.
	Kind SourceKind `json:"kind,omitempty"`

	// Reason is the upper-case reason code (e.g. "FETCH_FAILED").
	Reason string `json:"reason,omitempty"`

	// Message is a human-readable explanation.
	Message string `json:"message"`

	Severity Severity `json:"severity"`
}

// BuildReport summarises a knowledge base build.
type BuildReport struct {
	// Stats lists the sources that contributed documents, in request order.
	Stats []SourceStat

	// Diagnostics lists per-source problems.
	Diagnostics []Diagnostic

	// Documents is the number of source documents chunked.
	Documents int

	// Chunks is the number of chunks indexed.
	Chunks int

	// Duration is the wall time of the build.
	Duration time.Duration
}

// TotalChars returns the sum of characters across all sources.
func (r BuildReport) TotalChars() int {
	total := 0
	for _, s := range r.Stats {
		total += s.CharCount
	}
	return total
}
