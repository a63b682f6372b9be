package embeddings

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClient_CreateEmbedding(t *testing.T) {
	t.Run("rejects empty input", func(t *testing.T) {
		c := NewMockClient()
		_, err := c.CreateEmbedding(context.Background(), "")
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("is deterministic for identical input", func(t *testing.T) {
		c := NewMockClientWithDimensions(64)

		a, err := c.CreateEmbedding(context.Background(), "we are building an AI-powered inventory system")
		require.NoError(t, err)

		b, err := c.CreateEmbedding(context.Background(), "we are building an AI-powered inventory system")
		require.NoError(t, err)

		assert.Equal(t, a, b)
	})

	t.Run("returns configured dimension", func(t *testing.T) {
		c := NewMockClientWithDimensions(8)

		vec, err := c.CreateEmbedding(context.Background(), "hello")
		require.NoError(t, err)
		assert.Len(t, vec, 8)
		assert.Equal(t, 8, c.Dimensions())
	})

	t.Run("output is unit length", func(t *testing.T) {
		c := NewMockClientWithDimensions(32)

		vec, err := c.CreateEmbedding(context.Background(), "normalize me")
		require.NoError(t, err)

		var sum float64
		for _, v := range vec {
			sum += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
	})
}
