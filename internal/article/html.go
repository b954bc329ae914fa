package article

import (
	"regexp"
	"strings"
)

var (
	scriptRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe    = regexp.MustCompile(`</?[^>]+>`)
	nbspRe   = regexp.MustCompile(`(?i)&nbsp;`)
	spaceRe  = regexp.MustCompile(`\s+`)

	// htmlHintRe matches an opening or closing tag of the kind found in
	// pasted article markup.
	htmlHintRe = regexp.MustCompile(`(?i)</?(p|div|span|a|b|i|br|h[1-6]|ul|ol|li|table|tr|td|script|style|body|html)\b[^>]*>`)
)

// CleanHTML turns article markup into plain text: script and style blocks
// are dropped, tags become spaces, &nbsp; is decoded and whitespace is
// collapsed.
func CleanHTML(html string) string {
	s := scriptRe.ReplaceAllString(html, "")
	s = styleRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, " ")
	s = nbspRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// LooksLikeHTML reports whether text appears to contain HTML markup.
func LooksLikeHTML(text string) bool {
	return htmlHintRe.MatchString(text)
}

// Normalize cleans text when it looks like HTML and returns it unchanged
// otherwise.
func Normalize(text string) string {
	if LooksLikeHTML(text) {
		return CleanHTML(text)
	}
	return text
}
