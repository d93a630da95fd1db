package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/embedding/hashing"
	vectormemory "github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/vector/memory"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
)

func TestRetriever_Retrieve_RoomBPrice(t *testing.T) {
	sess := buildRooms(t, &conceptEmbedder{})

	results, err := NewRetriever(0, nil).Retrieve(context.Background(), sess.Index(), "How much is Room B?", 1)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Chunk.Text, "$700")
}

func TestRetriever_Retrieve_IsIdempotent(t *testing.T) {
	sess := buildRooms(t, hashing.NewEmbeddingService(128))
	r := NewRetriever(10, nil)

	first, err := r.Retrieve(context.Background(), sess.Index(), "room costs", 3)
	require.NoError(t, err)
	second, err := r.Retrieve(context.Background(), sess.Index(), "room costs", 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRetriever_Retrieve_TiesKeepInsertionOrder(t *testing.T) {
	embedder := &scriptedEmbedder{dims: 2, vectors: func(texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = []float32{1, 0}
		}
		return out, nil
	}}
	chunks := manyChunks(5)
	vectors, err := NewIndexer(embedder, vectormemory.Factory, 2, 3).Index(context.Background(), chunks, nil)
	require.NoError(t, err)
	idx := session.NewKnowledgeIndex(vectors, embedder, chunks, nil, time.Now())

	results, err := NewRetriever(0, nil).Retrieve(context.Background(), idx, "anything", 5)

	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, res := range results {
		assert.Equal(t, chunks[i].ID, res.Chunk.ID)
	}
}

func TestRetriever_Retrieve_Boundaries(t *testing.T) {
	r := NewRetriever(0, nil)

	t.Run("nil index", func(t *testing.T) {
		_, err := r.Retrieve(context.Background(), nil, "q", 3)
		require.ErrorIs(t, err, domain.ErrIndexAbsent)
		var rerr *domain.RetrievalError
		assert.ErrorAs(t, err, &rerr)
	})

	t.Run("empty index", func(t *testing.T) {
		vectors, err := vectormemory.New(4)
		require.NoError(t, err)
		idx := session.NewKnowledgeIndex(vectors, hashing.NewEmbeddingService(4), nil, nil, time.Now())

		results, err := r.Retrieve(context.Background(), idx, "q", 3)

		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("blank query", func(t *testing.T) {
		sess := buildRooms(t, &conceptEmbedder{})
		results, err := r.Retrieve(context.Background(), sess.Index(), "  ", 3)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("default k", func(t *testing.T) {
		sess := buildRooms(t, &conceptEmbedder{})
		results, err := r.Retrieve(context.Background(), sess.Index(), "Room", 0)
		require.NoError(t, err)
		assert.Len(t, results, sess.Index().Len())
	})
}

func TestRetriever_Retrieve_Corrupt(t *testing.T) {
	r := NewRetriever(0, nil)

	t.Run("vector without chunk record", func(t *testing.T) {
		embedder := hashing.NewEmbeddingService(8)
		vectors, err := vectormemory.New(8)
		require.NoError(t, err)
		v, err := embedder.Embed(context.Background(), "orphan text")
		require.NoError(t, err)
		require.NoError(t, vectors.Add(context.Background(), "orphan", v))
		idx := session.NewKnowledgeIndex(vectors, embedder,
			[]domain.Chunk{textChunk("other", "other text", "a.txt")}, nil, time.Now())

		_, err = r.Retrieve(context.Background(), idx, "orphan text", 5)

		assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
	})

	t.Run("query of the wrong dimension", func(t *testing.T) {
		chunks := manyChunks(2)
		vectors, err := NewIndexer(hashing.NewEmbeddingService(8), vectormemory.Factory, 0, 0).
			Index(context.Background(), chunks, nil)
		require.NoError(t, err)
		idx := session.NewKnowledgeIndex(vectors, hashing.NewEmbeddingService(16), chunks, nil, time.Now())

		_, err = r.Retrieve(context.Background(), idx, "chunk", 1)

		assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
	})
}
