package quizcache

import (
	"sync"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/abhisek/wikiquiz/internal/quizgen"
)

type addOutcome int

const (
	added addOutcome = iota
	duplicateHash
	nearDuplicate
)

func (o addOutcome) String() string {
	switch o {
	case added:
		return "added"
	case duplicateHash:
		return "duplicate-hash"
	default:
		return "near-duplicate"
	}
}

// pool is the per-request set of servable questions. Generation rounds may
// add to it concurrently.
type pool struct {
	mu         sync.Mutex
	nearRatio  float64
	questions  []*quizgen.AcceptedQuestion
	hashes     map[string]struct{}
	normalized []string
	cached     map[string]struct{}
}

func newPool(nearRatio float64) *pool {
	return &pool{
		nearRatio: nearRatio,
		hashes:    make(map[string]struct{}),
		cached:    make(map[string]struct{}),
	}
}

// seed adds questions read from the store. They are trusted as distinct
// and only exact hash repeats are skipped.
func (p *pool) seed(qs []*quizgen.AcceptedQuestion) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, q := range qs {
		if _, ok := p.hashes[q.QuestionHash]; ok {
			continue
		}
		p.hashes[q.QuestionHash] = struct{}{}
		p.cached[q.QuestionHash] = struct{}{}
		p.questions = append(p.questions, q)
		p.normalized = append(p.normalized, quizgen.NormalizeText(q.Question))
	}
}

// add appends a newly generated question unless it repeats one already pooled.
func (p *pool) add(q *quizgen.AcceptedQuestion) addOutcome {
	norm := quizgen.NormalizeText(q.Question)

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.hashes[q.QuestionHash]; ok {
		return duplicateHash
	}
	for _, other := range p.normalized {
		if isNearDuplicate(norm, other, p.nearRatio) {
			return nearDuplicate
		}
	}
	p.hashes[q.QuestionHash] = struct{}{}
	p.questions = append(p.questions, q)
	p.normalized = append(p.normalized, norm)
	return added
}

func (p *pool) snapshot() []*quizgen.AcceptedQuestion {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*quizgen.AcceptedQuestion(nil), p.questions...)
}

func (p *pool) isCached(hash string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.cached[hash]
	return ok
}

// isNearDuplicate compares two normalized question texts by Levenshtein
// distance relative to the longer one. A ratio of zero disables the check.
func isNearDuplicate(a, b string, ratio float64) bool {
	if ratio <= 0 {
		return false
	}
	longer := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longer == 0 {
		return true
	}
	d := fuzzy.LevenshteinDistance(a, b)
	return float64(d)/float64(longer) <= ratio
}
