package quizcache

import (
	"testing"

	"github.com/abhisek/wikiquiz/internal/quizgen"
)

func TestIsNearDuplicate(t *testing.T) {
	tests := []struct {
		a, b  string
		ratio float64
		want  bool
	}{
		{"what country is prague the capital of", "what country is prague the capital of", 0.1, true},
		{"what country is prague the capital of", "what country is prague the capitol of", 0.1, true},
		{"what country is prague the capital of", "which river flows through prague", 0.1, false},
		{"what country is prague the capital of", "what country is prague the capital of", 0, false},
		{"", "", 0.1, true},
	}
	for _, tt := range tests {
		if got := isNearDuplicate(tt.a, tt.b, tt.ratio); got != tt.want {
			t.Errorf("isNearDuplicate(%q, %q, %v) = %v, want %v", tt.a, tt.b, tt.ratio, got, tt.want)
		}
	}
}

func TestPool(t *testing.T) {
	a := pragueArticle()
	cached := cachedQuestions(a, 2)

	p := newPool(0.1)
	p.seed(cached)
	p.seed(cached[:1])

	if got := len(p.snapshot()); got != 2 {
		t.Fatalf("seeded %d questions, want 2", got)
	}
	if !p.isCached(cached[0].QuestionHash) {
		t.Error("seeded question should be marked cached")
	}

	if got := p.add(cached[1]); got != duplicateHash {
		t.Errorf("add(cached) = %v, want %v", got, duplicateHash)
	}

	near := quizgen.NewAcceptedQuestion(&quizgen.Candidate{
		Question: "What country is Prague the capitol of?",
		Answers:  []string{"Czech Republic", "Germany", "Austria"},
	}, a)
	if got := p.add(near); got != nearDuplicate {
		t.Errorf("add(near) = %v, want %v", got, nearDuplicate)
	}

	fresh := quizgen.NewAcceptedQuestion(distinctCandidate("gemini", 7), a)
	if got := p.add(fresh); got != added {
		t.Errorf("add(fresh) = %v, want %v", got, added)
	}
	if p.isCached(fresh.QuestionHash) {
		t.Error("generated question must not be marked cached")
	}
	if got := len(p.snapshot()); got != 3 {
		t.Errorf("pool size = %d, want 3", got)
	}
}
