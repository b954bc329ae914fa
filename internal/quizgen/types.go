package quizgen

import "time"

// Article is the source material a question is generated from.
// It is supplied per request and never mutated.
type Article struct {
	// Text is the full article body.
	Text string

	// Title is the article title. May be empty, in which case the
	// title-similarity check is inert.
	Title string

	// Lang is the target language code, e.g. "cs" or "en".
	Lang string
}

// Hash returns the content-derived identity of the article.
func (a Article) Hash() string {
	return HashArticle(a.Text)
}

// Candidate is an unvalidated question produced by a generator.
type Candidate struct {
	// Question is the question text shown to the player.
	Question string `json:"question"`

	// Answers holds the options in display order. A well-formed
	// candidate has exactly 3 entries.
	Answers []string `json:"answers"`

	// CorrectIndex identifies the correct entry of Answers.
	CorrectIndex int `json:"correctIndex"`

	// Provider is the tag of the generator that produced the candidate
	// (e.g. "openai", "gemini"). Provenance only.
	Provider string `json:"-"`

	// Model is the model that served the request, when known.
	Model string `json:"-"`

	// ContextSlice is the part of the article text the generator saw.
	ContextSlice string `json:"-"`
}

// AcceptedQuestion is a Candidate that passed every quality filter.
type AcceptedQuestion struct {
	Candidate

	QuestionHash string
	ArticleHash  string
	Lang         string
	Title        string
	CreatedAt    time.Time
}

// NewAcceptedQuestion stamps a validated candidate with its identity
// hashes for the given article.
func NewAcceptedQuestion(c *Candidate, a Article) *AcceptedQuestion {
	return &AcceptedQuestion{
		Candidate:    *c,
		QuestionHash: HashQuestion(c.Question, c.Answers),
		ArticleHash:  a.Hash(),
		Lang:         a.Lang,
		Title:        a.Title,
		CreatedAt:    time.Now().UTC(),
	}
}
