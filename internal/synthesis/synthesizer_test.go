package synthesis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demoday/pitchhub/internal/generation"
	"github.com/demoday/pitchhub/internal/models"
)

type mockGenerationClient struct {
	generateFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *mockGenerationClient) Generate(ctx context.Context, prompt string) (string, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, prompt)
	}

	return "FEEDBACK: Fine.\nSCORE: 5\nCONFIDENCE: high", nil
}

func newTestSynthesizer(gen generation.Client) *Synthesizer {
	return NewSynthesizer(SynthesizerParams{
		Composer:  NewComposer(10_000, 1_200),
		Generator: gen,
	})
}

func TestSynthesizer_Synthesize(t *testing.T) {
	contexts := []models.ContextPassage{{Passage: "Lead with the problem.", Score: 0.9}}

	t.Run("well formed output produces a result", func(t *testing.T) {
		gen := &mockGenerationClient{
			generateFunc: func(_ context.Context, _ string) (string, error) {
				return "FEEDBACK: Strong clarity and market fit.\nSCORE: 7.5\nCONFIDENCE: high", nil
			},
		}
		s := newTestSynthesizer(gen)

		result, err := s.Synthesize(context.Background(), testPitch, contexts, nil)
		require.NoError(t, err)
		assert.Equal(t, "Strong clarity and market fit.", result.Feedback)
		assert.InDelta(t, 7.5, result.Score, 1e-9)
		assert.False(t, result.ReviewRequired)
	})

	t.Run("empty context list always flags review", func(t *testing.T) {
		gen := &mockGenerationClient{
			generateFunc: func(_ context.Context, _ string) (string, error) {
				return "FEEDBACK: Good structure.\nSCORE: 8\nCONFIDENCE: high", nil
			},
		}
		s := newTestSynthesizer(gen)

		result, err := s.Synthesize(context.Background(), testPitch, nil, nil)
		require.NoError(t, err)
		assert.True(t, result.ReviewRequired)
		assert.InDelta(t, 8.0, result.Score, 1e-9)
	})

	t.Run("generation failure is wrapped", func(t *testing.T) {
		gen := &mockGenerationClient{
			generateFunc: func(_ context.Context, _ string) (string, error) {
				return "", errors.New("rate limited")
			},
		}
		s := newTestSynthesizer(gen)

		_, err := s.Synthesize(context.Background(), testPitch, contexts, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "generate feedback")
	})

	t.Run("garbage output returns ErrUnparsableOutput", func(t *testing.T) {
		gen := &mockGenerationClient{
			generateFunc: func(_ context.Context, _ string) (string, error) {
				return "this is not the format at all", nil
			},
		}
		s := newTestSynthesizer(gen)

		_, err := s.Synthesize(context.Background(), testPitch, contexts, nil)
		assert.ErrorIs(t, err, ErrUnparsableOutput)
	})

	t.Run("oversized pitch surfaces ErrPromptTooLarge", func(t *testing.T) {
		s := NewSynthesizer(SynthesizerParams{
			Composer:  NewComposer(50, 1_200),
			Generator: &mockGenerationClient{},
		})

		_, err := s.Synthesize(context.Background(), testPitch, contexts, nil)
		assert.ErrorIs(t, err, ErrPromptTooLarge)
	})

	t.Run("generator receives the composed prompt", func(t *testing.T) {
		var gotPrompt string
		gen := &mockGenerationClient{
			generateFunc: func(_ context.Context, prompt string) (string, error) {
				gotPrompt = prompt
				return "FEEDBACK: Fine.\nSCORE: 5\nCONFIDENCE: high", nil
			},
		}
		s := newTestSynthesizer(gen)

		_, err := s.Synthesize(context.Background(), testPitch, contexts, nil)
		require.NoError(t, err)
		assert.Contains(t, gotPrompt, testPitch)
		assert.Contains(t, gotPrompt, "Lead with the problem.")
	})
}
