// Package retrieval turns a raw query string into an ordered list of context passages.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/demoday/pitchhub/internal/embeddings"
	"github.com/demoday/pitchhub/internal/models"
)

// Sentinel errors for retrieval (used by handlers for status mapping).
var (
	// ErrQueryTooShort rejects queries below the minimum length; very short
	// queries produce degenerate embeddings and useless neighbors.
	ErrQueryTooShort = errors.New("query text is too short")

	// ErrStore wraps vector store failures so callers can classify them
	// without knowing the backing store.
	ErrStore = errors.New("vector store error")
)

// VectorSearcher provides nearest-neighbor search over stored passage embeddings.
// sourceID, when non-nil, scopes the search to one source's prior material.
type VectorSearcher interface {
	NearestPassages(ctx context.Context, queryEmbedding []float32, topK int, sourceID *uuid.UUID) ([]models.ContextPassage, error)
}

// Retriever embeds a query and returns the most similar knowledge passages,
// sorted by descending score. It holds no per-request state; the only shared
// state is the bounded query-embedding cache, which is safe for concurrent use.
type Retriever struct {
	embeddingClient embeddings.Client
	store           VectorSearcher

	minQueryChars int
	defaultTopK   int
	maxTopK       int

	queryCache     *lru.Cache[string, []float32]
	queryLoadGroup singleflight.Group
	logger         *slog.Logger
}

// RetrieverParams configures a Retriever. QueryCacheSize 0 disables caching.
type RetrieverParams struct {
	EmbeddingClient embeddings.Client
	Store           VectorSearcher
	MinQueryChars   int
	DefaultTopK     int
	MaxTopK         int
	QueryCacheSize  int
	Logger          *slog.Logger
}

// NewRetriever creates a Retriever.
func NewRetriever(p RetrieverParams) *Retriever {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cache *lru.Cache[string, []float32]
	if p.QueryCacheSize > 0 {
		// lru.New only fails on non-positive size, which is guarded above.
		cache, _ = lru.New[string, []float32](p.QueryCacheSize)
	}

	return &Retriever{
		embeddingClient: p.EmbeddingClient,
		store:           p.Store,
		minQueryChars:   p.MinQueryChars,
		defaultTopK:     p.DefaultTopK,
		maxTopK:         p.MaxTopK,
		queryCache:      cache,
		logger:          logger,
	}
}

// Retrieve embeds query and returns at most topK context passages sorted by
// non-increasing score, ties broken by passage ID ascending for determinism.
// topK <= 0 selects the configured default; values above the maximum are clamped.
// Zero matches is a valid result (empty slice, nil error), never an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, sourceID *uuid.UUID) ([]models.ContextPassage, error) {
	query = strings.TrimSpace(query)
	if len(query) < r.minQueryChars {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrQueryTooShort, r.minQueryChars)
	}

	if topK <= 0 {
		topK = r.defaultTopK
	}
	if topK > r.maxTopK {
		topK = r.maxTopK
	}

	embedding, err := r.queryEmbedding(ctx, query)
	if err != nil {
		r.logger.Error("retrieve: embed query failed", "error", err, "query_len", len(query))

		return nil, fmt.Errorf("embed query: %w", err)
	}

	passages, err := r.store.NearestPassages(ctx, embedding, topK, sourceID)
	if err != nil {
		r.logger.Error("retrieve: vector search failed", "error", err, "top_k", topK)

		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	// Do not trust store ordering: re-sort by score descending, stable with
	// passage ID ascending on ties so repeated runs return identical order.
	sort.SliceStable(passages, func(i, j int) bool {
		if passages[i].Score != passages[j].Score {
			return passages[i].Score > passages[j].Score
		}

		return passages[i].PassageID.String() < passages[j].PassageID.String()
	})

	if len(passages) > topK {
		passages = passages[:topK]
	}

	if passages == nil {
		passages = []models.ContextPassage{}
	}

	return passages, nil
}

// queryEmbedding returns the embedding for query, via the LRU cache when configured.
// Concurrent identical queries collapse into a single upstream call.
func (r *Retriever) queryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if r.queryCache == nil {
		return r.embeddingClient.CreateEmbedding(ctx, query)
	}

	if vec, ok := r.queryCache.Get(query); ok {
		return vec, nil
	}

	val, err, _ := r.queryLoadGroup.Do(query, func() (any, error) {
		vec, loadErr := r.embeddingClient.CreateEmbedding(ctx, query)
		if loadErr != nil {
			return nil, loadErr
		}

		r.queryCache.Add(query, vec)

		return vec, nil
	})
	if err != nil {
		return nil, err
	}

	return val.([]float32), nil
}
