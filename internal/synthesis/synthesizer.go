package synthesis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/demoday/pitchhub/internal/generation"
	"github.com/demoday/pitchhub/internal/models"
)

// Synthesizer runs the tail of the pipeline: compose a prompt from the pitch
// and retrieved contexts, call the generation gateway and parse the output
// into a FeedbackResult.
type Synthesizer struct {
	composer  *Composer
	generator generation.Client
	logger    *slog.Logger
}

// SynthesizerParams configures a Synthesizer.
type SynthesizerParams struct {
	Composer  *Composer
	Generator generation.Client
	Logger    *slog.Logger
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(p SynthesizerParams) *Synthesizer {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Synthesizer{
		composer:  p.Composer,
		generator: p.Generator,
		logger:    logger,
	}
}

// Synthesize produces structured feedback for a pitch. An empty context list
// is a valid input, but the result is always flagged for review since the
// feedback had no grounding material.
func (s *Synthesizer) Synthesize(
	ctx context.Context, pitch string, contexts []models.ContextPassage, transcript []models.QATurn,
) (models.FeedbackResult, error) {
	prompt, err := s.composer.Compose(pitch, contexts, transcript)
	if err != nil {
		return models.FeedbackResult{}, fmt.Errorf("compose prompt: %w", err)
	}

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("synthesize: generation failed", "error", err, "prompt_len", len(prompt))

		return models.FeedbackResult{}, fmt.Errorf("generate feedback: %w", err)
	}

	result, err := parseCompletion(raw)
	if err != nil {
		s.logger.Error("synthesize: unparsable completion", "error", err, "output_len", len(raw))

		return models.FeedbackResult{}, err
	}

	if len(contexts) == 0 {
		result.ReviewRequired = true
	}

	return result, nil
}
