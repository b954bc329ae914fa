package quizgen

import (
	"regexp"
	"strconv"
	"strings"
)

// numberPattern matches an optional sign, digits, and an optional
// fractional group separated by a dot or a comma.
var numberPattern = regexp.MustCompile(`[-+]?\d+(?:[.,]\d+)?`)

// ExtractNumber returns the first numeral found in text. The boolean is
// false when the text contains no numeral, which means the answer is
// non-numeric rather than malformed.
func ExtractNumber(text string) (float64, bool) {
	m := numberPattern.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
