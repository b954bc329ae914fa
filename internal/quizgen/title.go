package quizgen

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// DefaultTitleOverlapRatio is the strictest overlap ratio in common use.
// Lower values reject fewer answers and let more title paraphrases through.
const DefaultTitleOverlapRatio = 0.5

// minTitleLength and minTitleWordLength bound how much of a title must
// exist before the title check has enough signal to judge.
const (
	minTitleLength     = 3
	minTitleWordLength = 3
)

// fold returns s case-folded for caseless comparison. A fresh Caser is
// used on every call because cases.Caser is not safe for concurrent use.
func fold(s string) string {
	return cases.Fold().String(s)
}

// words splits s into runs of letters and digits.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// IsAnswerDistinctFromTitle reports whether answer is acceptable with
// respect to the article title. An answer equal to the title is rejected;
// otherwise every (title word, answer word) pair that matches counts once,
// repeats included, and the answer is rejected when that count reaches
// ceil(titleWords*ratio). Title words shorter than 3 runes are ignored.
func IsAnswerDistinctFromTitle(answer, title string, ratio float64) bool {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) < minTitleLength {
		return true
	}

	t := fold(title)
	a := fold(strings.TrimSpace(answer))
	if a == t {
		return false
	}

	var titleWords []string
	for _, w := range words(t) {
		if utf8.RuneCountInString(w) >= minTitleWordLength {
			titleWords = append(titleWords, w)
		}
	}
	if len(titleWords) == 0 {
		return true
	}

	answerWords := words(a)
	overlap := 0
	for _, tw := range titleWords {
		for _, aw := range answerWords {
			if aw == tw {
				overlap++
			}
		}
	}

	limit := int(math.Ceil(float64(len(titleWords)) * ratio))
	return overlap < limit
}
