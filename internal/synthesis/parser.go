package synthesis

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/demoday/pitchhub/internal/models"
)

// ErrUnparsableOutput is returned when the model output does not carry a
// usable FEEDBACK section. Malformed SCORE or CONFIDENCE values degrade to a
// review-required result instead of failing the request.
var ErrUnparsableOutput = errors.New("unparsable generation output")

const (
	labelFeedback   = "FEEDBACK:"
	labelScore      = "SCORE:"
	labelConfidence = "CONFIDENCE:"
)

// splitInlineLabels breaks a line at interior labels so a completion rendered
// on a single line ("FEEDBACK: ... SCORE: 7.5 CONFIDENCE: high") still parses.
func splitInlineLabels(line string) []string {
	upper := strings.ToUpper(line)
	cut := len(line)
	for _, label := range []string{labelFeedback, labelScore, labelConfidence} {
		if idx := strings.Index(upper, label); idx > 0 && idx < cut {
			cut = idx
		}
	}

	if cut == len(line) {
		return []string{line}
	}

	return append([]string{line[:cut]}, splitInlineLabels(line[cut:])...)
}

// parseCompletion parses the FEEDBACK / SCORE / CONFIDENCE sections of a raw
// completion. Labels are matched case-insensitively at the start of a line or
// inline within one; feedback text continues across lines until the next label.
func parseCompletion(raw string) (models.FeedbackResult, error) {
	var (
		feedbackLines []string
		scoreRaw      string
		confidenceRaw string
		inFeedback    bool
	)

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		lines = append(lines, splitInlineLabels(line)...)
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)

		switch {
		case strings.HasPrefix(upper, labelFeedback):
			inFeedback = true
			feedbackLines = append(feedbackLines, strings.TrimSpace(trimmed[len(labelFeedback):]))
		case strings.HasPrefix(upper, labelScore):
			inFeedback = false
			scoreRaw = strings.TrimSpace(trimmed[len(labelScore):])
		case strings.HasPrefix(upper, labelConfidence):
			inFeedback = false
			confidenceRaw = strings.TrimSpace(trimmed[len(labelConfidence):])
		case inFeedback:
			feedbackLines = append(feedbackLines, line)
		}
	}

	feedback := strings.TrimSpace(strings.Join(feedbackLines, "\n"))
	if feedback == "" {
		return models.FeedbackResult{}, fmt.Errorf("%w: missing FEEDBACK section", ErrUnparsableOutput)
	}

	result := models.FeedbackResult{Feedback: feedback}

	score, err := strconv.ParseFloat(scoreRaw, 64)
	if err != nil || score < 0 || score > 10 {
		result.Score = 0
		result.ReviewRequired = true
	} else {
		result.Score = math.Round(score*10) / 10
	}

	switch strings.ToLower(confidenceRaw) {
	case "high", "medium":
		// confident answer, no flag
	default:
		result.ReviewRequired = true
	}

	return result, nil
}
