package embeddings

import (
	"context"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"
)

const defaultGoogleModel = "gemini-embedding-001"

// GoogleClient calls the Gemini embeddings API via the Google Gen AI SDK.
type GoogleClient struct {
	client     *genai.Client
	model      string
	dimensions int
}

// Ensure GoogleClient implements Client interface
var _ Client = (*GoogleClient)(nil)

// GoogleOption configures the GoogleClient.
type GoogleOption func(*GoogleClient)

// WithGoogleDimensions sets the requested embedding dimension (must match the DB column).
func WithGoogleDimensions(dim int) GoogleOption {
	return func(c *GoogleClient) {
		c.dimensions = dim
	}
}

// WithGoogleModel sets the embedding model name (e.g. gemini-embedding-001). Empty uses default.
func WithGoogleModel(model string) GoogleOption {
	return func(c *GoogleClient) {
		c.model = model
	}
}

// NewGoogleClient creates a Gemini embeddings client.
func NewGoogleClient(ctx context.Context, apiKey string, opts ...GoogleOption) (*GoogleClient, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("googleai client: %w", err)
	}

	client := &GoogleClient{
		client:     genaiClient,
		model:      defaultGoogleModel,
		dimensions: defaultDimension,
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Dimensions returns the configured embedding dimension.
func (c *GoogleClient) Dimensions() int { return c.dimensions }

// CreateEmbedding returns the embedding vector for the given text using the configured model.
// The returned slice length equals the configured dimensions when OutputDimensionality is supported.
func (c *GoogleClient) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	if c.dimensions <= 0 || c.dimensions > math.MaxInt32 {
		return nil, ErrInvalidDims
	}

	model := c.model
	if model == "" {
		model = defaultGoogleModel
	}

	contents := []*genai.Content{genai.NewContentFromText(input, genai.RoleUser)}
	//nolint:gosec // G115: c.dimensions is bounded above by math.MaxInt32
	dimInt32 := int32(c.dimensions)

	resp, err := c.client.Models.EmbedContent(ctx, model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dimInt32,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini embedding: %w", ErrEmbedding, err)
	}

	if len(resp.Embeddings) == 0 {
		return nil, ErrNoEmbeddingInResponse
	}

	emb := resp.Embeddings[0].Values
	if len(emb) != c.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(emb), c.dimensions)
	}

	out := make([]float32, len(emb))
	copy(out, emb)

	return out, nil
}
