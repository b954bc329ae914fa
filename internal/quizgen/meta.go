package quizgen

import "strings"

// DefaultMetaFragments lists, per language, phrase fragments that refer
// to the article itself instead of stating a fact.
var DefaultMetaFragments = map[string][]string{
	"cs": {
		"v tomto článku", "v tomto clanku",
		"v tomto textu",
		"podle článku", "podle clanku",
		"podle textu",
		"text uvádí", "text uvadi",
		"článek uvádí", "clanek uvadi",
		"jak text", "jak článek", "jak clanek",
		"zmíněn v textu", "zminen v textu",
		"uvedeno v textu",
	},
	"sk": {
		"v tomto článku", "v tomto clanku",
		"podľa článku", "podla clanku",
		"podľa textu", "podla textu",
		"text uvádza", "text uvadza",
	},
	"en": {
		"in this article", "in the article",
		"in this text", "in the text",
		"according to the article", "according to the text",
		"the article states", "the article says", "the article mentions",
		"the text states", "the text says", "the text mentions",
		"in this passage", "in the passage",
		"mentioned in the text",
	},
	"de": {
		"in diesem artikel", "im artikel",
		"laut artikel", "laut text",
		"im vorliegenden text", "der text besagt",
	},
}

// MetaReferenceFilter flags text that talks about "the article" or
// "the text" instead of the subject.
//
// Fragments from every configured language are checked regardless of the
// requested language.
type MetaReferenceFilter struct {
	fragments []string
}

// NewMetaReferenceFilter builds a filter from a language-keyed fragment
// list. Empty fragments are ignored.
func NewMetaReferenceFilter(byLang map[string][]string) *MetaReferenceFilter {
	seen := make(map[string]struct{})
	var frags []string
	for _, list := range byLang {
		for _, f := range list {
			f = fold(strings.TrimSpace(f))
			if f == "" {
				continue
			}
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			frags = append(frags, f)
		}
	}
	return &MetaReferenceFilter{fragments: frags}
}

// ContainsMetaReference reports whether text contains any fragment.
func (f *MetaReferenceFilter) ContainsMetaReference(text string) bool {
	t := fold(text)
	for _, frag := range f.fragments {
		if strings.Contains(t, frag) {
			return true
		}
	}
	return false
}
