// Package embeddings provides clients that map text to fixed-dimension embedding vectors.
package embeddings

import (
	"context"
	"errors"
)

// ErrEmbedding is the sentinel wrapped by all provider transport/quota failures,
// so callers can classify embedding-gateway errors without knowing the provider.
var ErrEmbedding = errors.New("embedding gateway error")

// Client defines the interface for generating text embeddings.
type Client interface {
	// CreateEmbedding generates an embedding vector for the given text.
	// The returned slice length always equals Dimensions().
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the fixed embedding dimension this client produces.
	Dimensions() int
}
