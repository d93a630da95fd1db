package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/logger"
)

// Session is the explicit context passed to build, answer and feedback.
type Session struct {
	id        string
	createdAt time.Time

	index atomic.Pointer[KnowledgeIndex]

	// buildMu serialises builds; queries never take it.
	buildMu sync.Mutex

	mu      sync.Mutex
	history []domain.ChatTurn
	last    *domain.Interaction
}

// New creates an empty session with no index.
func New() *Session {
	return &Session{
		id:        uuid.NewString(),
		createdAt: time.Now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the session started.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Index returns the current knowledge index, or nil if none was built.
func (s *Session) Index() *KnowledgeIndex {
	return s.index.Load()
}

// HasIndex reports whether a knowledge index is present.
func (s *Session) HasIndex() bool {
	return s.index.Load() != nil
}

// Sources returns the source stats of the current index.
func (s *Session) Sources() []domain.SourceStat {
	idx := s.index.Load()
	if idx == nil {
		return nil
	}
	return idx.Stats()
}

// LockBuild acquires the build lock and returns its release function.
func (s *Session) LockBuild() func() {
	s.buildMu.Lock()
	return s.buildMu.Unlock
}

// SwapIndex atomically installs a fully built index and releases the old one.
// Queries already holding the old index keep working on their copy.
func (s *Session) SwapIndex(idx *KnowledgeIndex) {
	old := s.index.Swap(idx)
	if old != nil && old != idx {
		if err := old.Close(); err != nil {
			logger.Warn("close previous index: %v", err)
		}
	}
}

// RecordAnswer appends a successful question/answer exchange and makes it
// the interaction that feedback will rate.
func (s *Session) RecordAnswer(in domain.Interaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history,
		domain.ChatTurn{Role: domain.RoleUser, Content: in.Question, At: in.At},
		domain.ChatTurn{
			Role:          domain.RoleAssistant,
			Content:       in.Answer,
			UsedRetrieval: in.UsedRetrieval,
			Sources:       append([]string(nil), in.Sources...),
			At:            in.At,
		},
	)
	rec := in
	rec.Sources = append([]string(nil), in.Sources...)
	s.last = &rec
}

// RecordFailure appends a question whose generation failed. The failed turn
// is marked and the last successful interaction is left as it was.
func (s *Session) RecordFailure(question string, err error, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history,
		domain.ChatTurn{Role: domain.RoleUser, Content: question, At: at},
		domain.ChatTurn{Role: domain.RoleAssistant, Content: err.Error(), Failed: true, At: at},
	)
}

// History returns a copy of the chat history.
func (s *Session) History() []domain.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ChatTurn(nil), s.history...)
}

// LastInteraction returns the most recent successful interaction.
func (s *Session) LastInteraction() (domain.Interaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return domain.Interaction{}, false
	}
	return *s.last, true
}

// ClearHistory drops the chat history and the last interaction.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.last = nil
}
