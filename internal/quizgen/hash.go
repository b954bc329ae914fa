package quizgen

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// HashArticle returns the hex SHA-256 of the raw article text.
func HashArticle(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// HashQuestion returns the dedup key of a question and its answers.
// Each part is NFC-normalized, case-folded and stripped of punctuation,
// so formatting noise between generations collapses to the same key. The
// parts are then concatenated with no separator, which is the form the
// rows already in wiki_questions were keyed on: their "||" and "|"
// joiners went out with the rest of the punctuation. The correct index
// does not take part.
func HashQuestion(question string, answers []string) string {
	var b strings.Builder
	b.WriteString(NormalizeText(question))
	for _, a := range answers {
		b.WriteString(NormalizeText(a))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// NormalizeText is the canonical form used for question identity: NFC,
// case-folded, letters, digits, underscores and single spaces only.
func NormalizeText(s string) string {
	s = fold(norm.NFC.String(s))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
