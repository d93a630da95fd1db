package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
)

type closeCountingIndex struct {
	closed int
}

func (c *closeCountingIndex) Add(context.Context, string, []float32) error { return nil }
func (c *closeCountingIndex) Delete(context.Context, string) error         { return nil }
func (c *closeCountingIndex) Search(context.Context, []float32, int) ([]driven.VectorHit, error) {
	return nil, nil
}
func (c *closeCountingIndex) Len() int        { return 0 }
func (c *closeCountingIndex) Dimensions() int { return 3 }
func (c *closeCountingIndex) Close() error {
	c.closed++
	return nil
}

func newIndex(vi driven.VectorIndex, ids ...string) *KnowledgeIndex {
	chunks := make([]domain.Chunk, len(ids))
	for i, id := range ids {
		chunks[i] = domain.Chunk{ID: id, Text: id}
	}
	stats := []domain.SourceStat{{Identifier: "a.txt", Kind: domain.SourceKindFile}}
	return NewKnowledgeIndex(vi, nil, chunks, stats, time.Now())
}

func TestNew_HasNoIndex(t *testing.T) {
	s := New()

	assert.NotEmpty(t, s.ID())
	assert.False(t, s.HasIndex())
	assert.Nil(t, s.Index())
	assert.Nil(t, s.Sources())
}

func TestSwapIndex_ClosesPrevious(t *testing.T) {
	s := New()
	first := &closeCountingIndex{}
	second := &closeCountingIndex{}

	s.SwapIndex(newIndex(first, "c1"))
	s.SwapIndex(newIndex(second, "c2"))

	assert.Equal(t, 1, first.closed)
	assert.Equal(t, 0, second.closed)
	_, _, ok := s.Index().Chunk("c2")
	assert.True(t, ok)
}

func TestKnowledgeIndex_ChunkPositions(t *testing.T) {
	idx := newIndex(&closeCountingIndex{}, "x", "y", "z")

	_, pos, ok := idx.Chunk("y")

	require.True(t, ok)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 3, idx.Len())
	_, _, ok = idx.Chunk("missing")
	assert.False(t, ok)
}

func TestKnowledgeIndex_StatsAreCopies(t *testing.T) {
	idx := newIndex(&closeCountingIndex{}, "x")

	stats := idx.Stats()
	stats[0].Identifier = "changed"

	assert.Equal(t, "a.txt", idx.Stats()[0].Identifier)
}

func TestRecordAnswer_SetsLastInteraction(t *testing.T) {
	s := New()
	now := time.Now()

	s.RecordAnswer(domain.Interaction{Question: "q1", Answer: "a1", UsedRetrieval: true, Sources: []string{"a.txt"}, At: now})

	last, ok := s.LastInteraction()
	require.True(t, ok)
	assert.Equal(t, "a1", last.Answer)
	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, domain.RoleAssistant, history[1].Role)
	assert.False(t, history[1].Failed)
}

func TestRecordFailure_DoesNotOverwriteLastInteraction(t *testing.T) {
	s := New()
	now := time.Now()
	s.RecordAnswer(domain.Interaction{Question: "q1", Answer: "a1", At: now})

	s.RecordFailure("q2", errors.New("generation: authentication failure"), now)

	last, ok := s.LastInteraction()
	require.True(t, ok)
	assert.Equal(t, "q1", last.Question)
	history := s.History()
	require.Len(t, history, 4)
	assert.True(t, history[3].Failed)
	assert.Equal(t, "q2", history[2].Content)
}

func TestLastInteraction_Empty(t *testing.T) {
	_, ok := New().LastInteraction()
	assert.False(t, ok)
}

func TestClearHistory(t *testing.T) {
	s := New()
	s.RecordAnswer(domain.Interaction{Question: "q", Answer: "a"})

	s.ClearHistory()

	assert.Empty(t, s.History())
	_, ok := s.LastInteraction()
	assert.False(t, ok)
}

func TestConcurrentReadsDuringSwap(t *testing.T) {
	s := New()
	s.SwapIndex(newIndex(&closeCountingIndex{}, "c0"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SwapIndex(newIndex(&closeCountingIndex{}, "c"))
		}()
		go func() {
			defer wg.Done()
			idx := s.Index()
			assert.NotNil(t, idx)
			assert.Equal(t, 1, idx.Len())
		}()
	}
	wg.Wait()
}
