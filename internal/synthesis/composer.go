// Package synthesis assembles the evaluation prompt and turns raw model
// output into a structured feedback result.
package synthesis

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/demoday/pitchhub/internal/models"
)

// ErrPromptTooLarge is returned when the prompt exceeds the configured size
// limit even after all context passages have been dropped.
var ErrPromptTooLarge = errors.New("prompt exceeds size limit")

const promptHeader = "Evaluate the following startup pitch. Ground your feedback in the " +
	"reference material where it is relevant; judge clarity, market understanding " +
	"and delivery."

const promptFooter = "Respond in exactly this format:\n" +
	"FEEDBACK: <your feedback, may span multiple lines>\n" +
	"SCORE: <number between 0 and 10>\n" +
	"CONFIDENCE: <high|medium|low>"

// Composer renders the pitch, retrieved passages and optional Q&A transcript
// into a single deterministic prompt. It holds no mutable state.
type Composer struct {
	maxPromptChars  int
	maxContextChars int
}

// NewComposer creates a Composer. maxPromptChars is the hard ceiling for the
// rendered prompt; maxContextChars bounds each individual context passage.
func NewComposer(maxPromptChars, maxContextChars int) *Composer {
	return &Composer{
		maxPromptChars:  maxPromptChars,
		maxContextChars: maxContextChars,
	}
}

// Compose renders the prompt. Contexts are assumed sorted by descending
// relevance; when the prompt exceeds the ceiling, passages are dropped from
// the tail (least relevant first) until it fits. The pitch itself is never
// truncated: if the prompt cannot fit even with zero contexts, Compose
// returns ErrPromptTooLarge.
func (c *Composer) Compose(pitch string, contexts []models.ContextPassage, transcript []models.QATurn) (string, error) {
	qa := renderTranscript(transcript)

	for n := len(contexts); n >= 0; n-- {
		prompt := c.render(pitch, contexts[:n], qa)
		if len(prompt) <= c.maxPromptChars {
			return prompt, nil
		}
	}

	return "", fmt.Errorf("%w: limit %d characters", ErrPromptTooLarge, c.maxPromptChars)
}

func (c *Composer) render(pitch string, contexts []models.ContextPassage, qa string) string {
	var b strings.Builder

	b.WriteString(promptHeader)
	b.WriteString("\n\n## Pitch\n")
	b.WriteString(pitch)

	if len(contexts) > 0 {
		b.WriteString("\n\n## Reference material\n")
		for i, passage := range contexts {
			b.WriteString("[")
			b.WriteString(strconv.Itoa(i + 1))
			b.WriteString("] ")
			b.WriteString(truncate(passage.Passage, c.maxContextChars))
			b.WriteString("\n")
		}
	}

	if qa != "" {
		b.WriteString("\n\n## Q&A transcript\n")
		b.WriteString(qa)
	}

	b.WriteString("\n\n")
	b.WriteString(promptFooter)

	return b.String()
}

// renderTranscript renders Q&A turns in Seq order as "[seq] role: text" lines.
// The input slice is not modified.
func renderTranscript(transcript []models.QATurn) string {
	if len(transcript) == 0 {
		return ""
	}

	turns := make([]models.QATurn, len(transcript))
	copy(turns, transcript)
	sort.SliceStable(turns, func(i, j int) bool { return turns[i].Seq < turns[j].Seq })

	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		lines = append(lines, fmt.Sprintf("[%d] %s: %s", turn.Seq, turn.Role, turn.Text))
	}

	return strings.Join(lines, "\n")
}

// truncate cuts s to at most max bytes, backing up to a rune boundary so a
// multi-byte character is never split.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}

	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}

	return s[:max]
}
