package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/embedding/hashing"
	vectormemory "github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/adapters/driven/vector/memory"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

func manyChunks(n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = textChunk(fmt.Sprintf("c%d", i), fmt.Sprintf("chunk number %d about topic %d", i, i%3), "a.txt")
	}
	return chunks
}

func TestIndexer_Index_KeepsChunkOrder(t *testing.T) {
	embedder := hashing.NewEmbeddingService(64)
	chunks := manyChunks(11)
	var progress []int

	idx, err := NewIndexer(embedder, vectormemory.Factory, 3, 4).Index(context.Background(), chunks, func(done, total int) {
		assert.Equal(t, 11, total)
		progress = append(progress, done)
	})

	require.NoError(t, err)
	assert.Equal(t, 11, idx.Len())
	assert.Equal(t, 64, idx.Dimensions())
	assert.Equal(t, 11, progress[len(progress)-1])

	// Every chunk's own text must be its nearest neighbour.
	for _, c := range chunks {
		qv, err := embedder.Embed(context.Background(), c.Text)
		require.NoError(t, err)
		hits, err := idx.Search(context.Background(), qv, 1)
		require.NoError(t, err)
		assert.Equal(t, c.ID, hits[0].ChunkID)
	}
}

func TestIndexer_Index_EmbeddingIsPure(t *testing.T) {
	embedder := hashing.NewEmbeddingService(64)
	a, err := embedder.Embed(context.Background(), "Room B costs $700/month.")
	require.NoError(t, err)
	b, err := embedder.Embed(context.Background(), "Room B costs $700/month.")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestIndexer_Index_Failures(t *testing.T) {
	tests := []struct {
		name    string
		dims    int
		vectors func(texts []string) ([][]float32, error)
		reason  error
	}{
		{
			name: "backend error",
			dims: 2,
			vectors: func([]string) ([][]float32, error) {
				return nil, errors.New("dial tcp: connection refused")
			},
			reason: domain.ErrBackendUnreachable,
		},
		{
			name: "wrong dimensions",
			dims: 2,
			vectors: func(texts []string) ([][]float32, error) {
				out := make([][]float32, len(texts))
				for i := range out {
					out[i] = []float32{1, 2, 3}
				}
				return out, nil
			},
			reason: domain.ErrDimensionMismatch,
		},
		{
			name: "inconsistent dimensions without advertised size",
			dims: 0,
			vectors: func(texts []string) ([][]float32, error) {
				out := make([][]float32, len(texts))
				for i := range out {
					out[i] = make([]float32, 2+i%2)
					out[i][0] = 1
				}
				return out, nil
			},
			reason: domain.ErrDimensionMismatch,
		},
		{
			name: "NaN component",
			dims: 2,
			vectors: func(texts []string) ([][]float32, error) {
				out := make([][]float32, len(texts))
				for i := range out {
					out[i] = []float32{float32(math.NaN()), 1}
				}
				return out, nil
			},
			reason: domain.ErrDimensionMismatch,
		},
		{
			name: "missing vectors",
			dims: 2,
			vectors: func(texts []string) ([][]float32, error) {
				return [][]float32{{1, 0}}, nil
			},
			reason: domain.ErrDimensionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := &scriptedEmbedder{dims: tt.dims, vectors: tt.vectors}

			idx, err := NewIndexer(embedder, vectormemory.Factory, 2, 2).Index(context.Background(), manyChunks(4), nil)

			assert.Nil(t, idx)
			require.ErrorIs(t, err, tt.reason)
			var embErr *domain.EmbeddingError
			assert.ErrorAs(t, err, &embErr)
		})
	}
}

func TestIndexer_Index_NoEmbedder(t *testing.T) {
	_, err := NewIndexer(nil, vectormemory.Factory, 0, 0).Index(context.Background(), manyChunks(1), nil)

	assert.ErrorIs(t, err, domain.ErrBackendUnreachable)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestIndexer_Index_UsesFirstVectorSize(t *testing.T) {
	embedder := &scriptedEmbedder{vectors: func(texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = []float32{1, float32(i), 0, 0, 0}
		}
		return out, nil
	}}

	idx, err := NewIndexer(embedder, vectormemory.Factory, 8, 1).Index(context.Background(), manyChunks(3), nil)

	require.NoError(t, err)
	assert.Equal(t, 5, idx.Dimensions())
}
