package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or normaliser type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNotConfigured indicates a required backend has no configuration.
	ErrNotConfigured = errors.New("not configured")

	// ErrNoSources indicates a build was requested without any source.
	ErrNoSources = errors.New("no sources to build from")

	// ErrNoValidSources indicates every source of a build failed to load.
	ErrNoValidSources = errors.New("no valid sources")

	// ErrNoInteraction indicates feedback was given before any answer.
	ErrNoInteraction = errors.New("no answered question to rate")
)

// Reason sentinels. Every stage error unwraps to one of these so callers
// can match with errors.Is without knowing the concrete error type.
var (
	// Load reasons.
	ErrUnreadable        = errors.New("unreadable")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrFetchFailed       = errors.New("fetch failed")
	ErrEmpty             = errors.New("empty")

	// Embedding reasons.
	ErrBackendUnreachable = errors.New("backend unreachable")
	ErrDimensionMismatch  = errors.New("dimension mismatch")

	// Retrieval reasons.
	ErrIndexAbsent  = errors.New("index absent")
	ErrIndexCorrupt = errors.New("index corrupt")

	// Rerank and generation reasons.
	ErrBackendFailure = errors.New("backend failure")
	ErrAuthFailure    = errors.New("authentication failure")
)

// LoadError reports why one source could not be loaded.
// It never aborts a build on its own.
type LoadError struct {
	Origin Origin
	Reason error
	Err    error
}

// NewLoadError creates a LoadError.
func NewLoadError(origin Origin, reason, err error) *LoadError {
	return &LoadError{Origin: origin, Reason: reason, Err: err}
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load %s: %v", e.Origin.Identifier, e.Reason)
	}
	return fmt.Sprintf("load %s: %v: %v", e.Origin.Identifier, e.Reason, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return unwrapPair(e.Reason, e.Err)
}

// EmbeddingError rejects an index build.
type EmbeddingError struct {
	Reason error
	Err    error
}

// NewEmbeddingError creates an EmbeddingError.
func NewEmbeddingError(reason, err error) *EmbeddingError {
	return &EmbeddingError{Reason: reason, Err: err}
}

func (e *EmbeddingError) Error() string {
	return stageMessage("embedding", e.Reason, e.Err)
}

func (e *EmbeddingError) Unwrap() []error {
	return unwrapPair(e.Reason, e.Err)
}

// RetrievalError reports a missing or inconsistent index.
type RetrievalError struct {
	Reason error
	Err    error
}

// NewRetrievalError creates a RetrievalError.
func NewRetrievalError(reason, err error) *RetrievalError {
	return &RetrievalError{Reason: reason, Err: err}
}

func (e *RetrievalError) Error() string {
	return stageMessage("retrieval", e.Reason, e.Err)
}

func (e *RetrievalError) Unwrap() []error {
	return unwrapPair(e.Reason, e.Err)
}

// RerankError is surfaced as a warning only; the pipeline continues
// with the retriever order.
type RerankError struct {
	Err error
}

// NewRerankError creates a RerankError with reason BACKEND_FAILURE.
func NewRerankError(err error) *RerankError {
	return &RerankError{Err: err}
}

func (e *RerankError) Error() string {
	return stageMessage("rerank", ErrBackendFailure, e.Err)
}

func (e *RerankError) Unwrap() []error {
	return unwrapPair(ErrBackendFailure, e.Err)
}

// GenerationError reports a failed answer generation.
type GenerationError struct {
	Reason error
	Err    error
}

// NewGenerationError creates a GenerationError.
func NewGenerationError(reason, err error) *GenerationError {
	return &GenerationError{Reason: reason, Err: err}
}

func (e *GenerationError) Error() string {
	return stageMessage("generation", e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return unwrapPair(e.Reason, e.Err)
}

// ReasonCode returns the upper-case reason name of a stage error
// (e.g. "FETCH_FAILED"), or "" if err carries no known reason.
func ReasonCode(err error) string {
	for _, rc := range reasonCodes {
		if errors.Is(err, rc.reason) {
			return rc.code
		}
	}
	return ""
}

var reasonCodes = []struct {
	reason error
	code   string
}{
	{ErrUnreadable, "UNREADABLE"},
	{ErrUnsupportedFormat, "UNSUPPORTED_FORMAT"},
	{ErrFetchFailed, "FETCH_FAILED"},
	{ErrEmpty, "EMPTY"},
	{ErrBackendUnreachable, "BACKEND_UNREACHABLE"},
	{ErrDimensionMismatch, "DIMENSION_MISMATCH"},
	{ErrIndexAbsent, "INDEX_ABSENT"},
	{ErrIndexCorrupt, "INDEX_CORRUPT"},
	{ErrAuthFailure, "AUTH_FAILURE"},
	{ErrBackendFailure, "BACKEND_FAILURE"},
}

func stageMessage(stage string, reason, err error) string {
	if err == nil {
		return fmt.Sprintf("%s: %v", stage, reason)
	}
	return fmt.Sprintf("%s: %v: %v", stage, reason, err)
}

func unwrapPair(reason, err error) []error {
	out := make([]error, 0, 2)
	if reason != nil {
		out = append(out, reason)
	}
	if err != nil {
		out = append(out, err)
	}
	return out
}
