// Package generation provides clients that map a prompt to a raw model completion.
package generation

import (
	"context"
	"errors"
)

// ErrGeneration is the sentinel wrapped by all provider transport/quota failures,
// so callers can classify generation-gateway errors without knowing the provider.
var ErrGeneration = errors.New("generation gateway error")

// ErrEmptyPrompt is returned when Generate is called with an empty prompt.
var ErrEmptyPrompt = errors.New("generation: prompt is empty")

// Client defines the interface for generating a raw text completion from a prompt.
// The output is expected to follow the feedback contract parsed by the synthesizer
// (FEEDBACK / SCORE / CONFIDENCE sections); the format is a versioned external contract.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
