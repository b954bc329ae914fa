package quizgen

import (
	"strings"
	"unicode/utf8"
)

// minLeakLength exempts short answers ("AI", "7") that would match
// almost any question by accident.
const minLeakLength = 3

// IsAnswerLeakedInQuestion reports whether the answer appears verbatim
// (ignoring case) inside the question text.
func IsAnswerLeakedInQuestion(answer, question string) bool {
	a := strings.TrimSpace(answer)
	if utf8.RuneCountInString(a) < minLeakLength {
		return false
	}
	return strings.Contains(fold(question), fold(a))
}
