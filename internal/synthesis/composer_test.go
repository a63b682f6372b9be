package synthesis

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demoday/pitchhub/internal/models"
)

const testPitch = "We are building an AI-powered inventory system for small retailers."

func TestComposer_Compose(t *testing.T) {
	t.Run("prompt contains pitch, contexts and format instructions", func(t *testing.T) {
		c := NewComposer(10_000, 1_200)
		contexts := []models.ContextPassage{
			{Passage: "Winning pitches lead with the problem.", Score: 0.9},
			{Passage: "Investors want a clear revenue model.", Score: 0.8},
		}

		prompt, err := c.Compose(testPitch, contexts, nil)
		require.NoError(t, err)
		assert.Contains(t, prompt, testPitch)
		assert.Contains(t, prompt, "[1] Winning pitches lead with the problem.")
		assert.Contains(t, prompt, "[2] Investors want a clear revenue model.")
		assert.Contains(t, prompt, "FEEDBACK:")
		assert.Contains(t, prompt, "SCORE:")
		assert.Contains(t, prompt, "CONFIDENCE:")
	})

	t.Run("composition is deterministic", func(t *testing.T) {
		c := NewComposer(10_000, 1_200)
		contexts := []models.ContextPassage{{Passage: "Keep demos short.", Score: 0.7}}

		first, err := c.Compose(testPitch, contexts, nil)
		require.NoError(t, err)
		second, err := c.Compose(testPitch, contexts, nil)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("long context passages are truncated", func(t *testing.T) {
		c := NewComposer(10_000, 50)
		long := strings.Repeat("a", 500)

		prompt, err := c.Compose(testPitch, []models.ContextPassage{{Passage: long}}, nil)
		require.NoError(t, err)
		assert.Contains(t, prompt, strings.Repeat("a", 50))
		assert.NotContains(t, prompt, strings.Repeat("a", 51))
	})

	t.Run("truncation never splits a multi-byte rune", func(t *testing.T) {
		c := NewComposer(10_000, 50)
		// 3 bytes per rune, so a 50-byte cut would land mid-rune.
		long := strings.Repeat("市", 100)

		prompt, err := c.Compose(testPitch, []models.ContextPassage{{Passage: long}}, nil)
		require.NoError(t, err)
		assert.True(t, utf8.ValidString(prompt))
		assert.Contains(t, prompt, strings.Repeat("市", 16))
		assert.NotContains(t, prompt, strings.Repeat("市", 17))
	})

	t.Run("tail contexts are dropped to fit the ceiling", func(t *testing.T) {
		base, err := NewComposer(100_000, 1_200).Compose(testPitch, nil, nil)
		require.NoError(t, err)

		c := NewComposer(len(base)+80, 1_200)
		contexts := []models.ContextPassage{
			{Passage: "most relevant passage", Score: 0.9},
			{Passage: strings.Repeat("b", 600), Score: 0.2},
		}

		prompt, err := c.Compose(testPitch, contexts, nil)
		require.NoError(t, err)
		assert.Contains(t, prompt, "most relevant passage")
		assert.NotContains(t, prompt, strings.Repeat("b", 600))
	})

	t.Run("oversized pitch returns ErrPromptTooLarge", func(t *testing.T) {
		c := NewComposer(200, 1_200)

		_, err := c.Compose(strings.Repeat("p", 500), nil, nil)
		assert.ErrorIs(t, err, ErrPromptTooLarge)
	})

	t.Run("pitch is never truncated to make room", func(t *testing.T) {
		c := NewComposer(10_000, 1_200)
		pitch := testPitch + " " + strings.Repeat("detail ", 100)

		prompt, err := c.Compose(pitch, nil, nil)
		require.NoError(t, err)
		assert.Contains(t, prompt, pitch)
	})

	t.Run("transcript rendered in seq order", func(t *testing.T) {
		c := NewComposer(10_000, 1_200)
		transcript := []models.QATurn{
			{Role: "founder", Text: "We charge per seat.", Seq: 2},
			{Role: "investor", Text: "How do you make money?", Seq: 1},
		}

		prompt, err := c.Compose(testPitch, nil, transcript)
		require.NoError(t, err)
		investor := strings.Index(prompt, "[1] investor: How do you make money?")
		founder := strings.Index(prompt, "[2] founder: We charge per seat.")
		require.GreaterOrEqual(t, investor, 0)
		require.GreaterOrEqual(t, founder, 0)
		assert.Less(t, investor, founder)
	})
}
