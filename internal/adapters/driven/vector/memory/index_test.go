package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

func newIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(2)
	require.NoError(t, err)
	return idx
}

func ids(t *testing.T, idx *Index, q []float32, k int) []string {
	t.Helper()
	hits, err := idx.Search(context.Background(), q, k)
	require.NoError(t, err)
	out := make([]string, len(hits))
	for n, h := range hits {
		out[n] = h.ChunkID
	}
	return out
}

func TestNew_InvalidDimensions(t *testing.T) {
	_, err := New(0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Factory(-1)
	assert.Error(t, err)
}

func TestSearch_OrdersByCosine(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, "east", []float32{10, 0}))
	require.NoError(t, idx.Add(ctx, "north", []float32{0, 3}))
	require.NoError(t, idx.Add(ctx, "diag", []float32{1, 1}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "east", hits[0].ChunkID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.Equal(t, "diag", hits[1].ChunkID)
	assert.InDelta(t, 0.7071, hits[1].Similarity, 1e-3)
	assert.Equal(t, "north", hits[2].ChunkID)
	assert.InDelta(t, 0.0, hits[2].Similarity, 1e-6)
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, idx.Add(ctx, id, []float32{1, 1}))
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids(t, idx, []float32{1, 1}, 10))
}

func TestSearch_Truncates(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, "b", []float32{0, 1}))

	assert.Equal(t, []string{"a"}, ids(t, idx, []float32{1, 0}, 1))
	assert.Empty(t, ids(t, idx, []float32{1, 0}, 0))
}

func TestSearch_EmptyIndex(t *testing.T) {
	hits, err := newIndex(t).Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestDimensionMismatch(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()

	err := idx.Add(ctx, "a", []float32{1, 2, 3})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = idx.Search(ctx, []float32{1}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestAdd_ReplaceKeepsPosition(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, "b", []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0}))

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []string{"a", "b"}, ids(t, idx, []float32{1, 0}, 5))
}

func TestDelete(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, idx.Add(ctx, id, []float32{1, 0}))
	}

	require.NoError(t, idx.Delete(ctx, "b"))
	require.NoError(t, idx.Delete(ctx, "missing"))
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []string{"a", "c"}, ids(t, idx, []float32{1, 0}, 5))

	require.NoError(t, idx.Add(ctx, "c", []float32{0, 1}))
	assert.Equal(t, []string{"a", "c"}, ids(t, idx, []float32{1, 0}, 5))
}

func TestZeroVector(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, "zero", []float32{0, 0}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, hits[0].Similarity)
	assert.Equal(t, 2, idx.Dimensions())
	assert.NoError(t, idx.Close())
}
