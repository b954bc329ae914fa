package quizgen

import (
	"fmt"
	"math"
)

// DistractorRule selects how the absolute and relative gaps combine when
// deciding that a numeric distractor sits too close to the correct value.
type DistractorRule string

const (
	// CloseWhenBoth flags a distractor only when it is within both the
	// absolute and the relative gap.
	CloseWhenBoth DistractorRule = "both"

	// CloseWhenEither flags a distractor when it is within either gap.
	CloseWhenEither DistractorRule = "either"
)

// DistractorThresholds configures the numeric distractor check.
type DistractorThresholds struct {
	Absolute float64        `yaml:"absolute"`
	Relative float64        `yaml:"relative"`
	Rule     DistractorRule `yaml:"rule"`
}

// DefaultDistractorThresholds returns the (10, 0.10) gaps combined with
// CloseWhenBoth. The legacy rule flagged a distractor inside either gap;
// set Rule to CloseWhenEither (YAML filters.numeric_distractors.rule:
// either) to restore it. Note that it rejects year questions such as
// 1914 vs 1850, since 64/1914 falls under the relative gap.
func DefaultDistractorThresholds() DistractorThresholds {
	return DistractorThresholds{
		Absolute: 10,
		Relative: 0.10,
		Rule:     CloseWhenBoth,
	}
}

// Validate checks the thresholds for usable values.
func (t DistractorThresholds) Validate() error {
	if t.Absolute < 0 || t.Relative < 0 {
		return fmt.Errorf("numeric distractor thresholds must be non-negative")
	}
	switch t.Rule {
	case CloseWhenBoth, CloseWhenEither:
	default:
		return fmt.Errorf("unknown numeric distractor rule: %q", t.Rule)
	}
	return nil
}

func (t DistractorThresholds) tooClose(fake, correct float64) bool {
	diff := math.Abs(fake - correct)
	rel := diff / math.Max(1, math.Abs(correct))
	if t.Rule == CloseWhenEither {
		return diff < t.Absolute || rel < t.Relative
	}
	return diff < t.Absolute && rel < t.Relative
}

// AreNumericDistractorsDistinct reports whether every numeric distractor
// keeps its distance from the correct answer. The check is inert when the
// correct answer is not numeric, and non-numeric distractors are skipped.
func AreNumericDistractorsDistinct(answers []string, correctIndex int, t DistractorThresholds) bool {
	if correctIndex < 0 || correctIndex >= len(answers) {
		return true
	}
	correct, ok := ExtractNumber(answers[correctIndex])
	if !ok {
		return true
	}
	for i, a := range answers {
		if i == correctIndex {
			continue
		}
		fake, ok := ExtractNumber(a)
		if !ok {
			continue
		}
		if t.tooClose(fake, correct) {
			return false
		}
	}
	return true
}
