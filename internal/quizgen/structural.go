package quizgen

import (
	"fmt"
	"strings"
)

// answerCount is the number of options every question carries.
const answerCount = 3

// StructuralValidator checks the shape of the candidate: a non-empty
// question, exactly three non-empty answers, and an in-range correct index.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(c *Candidate, _ Article) *ValidationError {
	if strings.TrimSpace(c.Question) == "" {
		return &ValidationError{Validator: v.Name(), Message: "question is empty"}
	}
	if len(c.Answers) != answerCount {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("expected %d answers, got %d", answerCount, len(c.Answers)),
		}
	}
	if c.CorrectIndex < 0 || c.CorrectIndex >= answerCount {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("correctIndex %d out of range", c.CorrectIndex),
		}
	}
	for i, a := range c.Answers {
		if strings.TrimSpace(a) == "" {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("answer %d is empty", i),
			}
		}
	}
	return nil
}

// MetaReferenceValidator rejects candidates whose question or answers
// refer to the article itself.
type MetaReferenceValidator struct {
	Filter *MetaReferenceFilter
}

func (v *MetaReferenceValidator) Name() string { return "meta-reference" }

func (v *MetaReferenceValidator) Validate(c *Candidate, _ Article) *ValidationError {
	if v.Filter.ContainsMetaReference(c.Question) {
		return &ValidationError{Validator: v.Name(), Message: "question refers to the article"}
	}
	for i, a := range c.Answers {
		if v.Filter.ContainsMetaReference(a) {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("answer %d refers to the article", i),
			}
		}
	}
	return nil
}

// LeakageValidator rejects candidates where an answer is spelled out in
// the question.
type LeakageValidator struct{}

func (v *LeakageValidator) Name() string { return "answer-leakage" }

func (v *LeakageValidator) Validate(c *Candidate, _ Article) *ValidationError {
	for i, a := range c.Answers {
		if IsAnswerLeakedInQuestion(a, c.Question) {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("answer %d (%q) appears in the question", i, a),
			}
		}
	}
	return nil
}

// TitleValidator rejects candidates where an answer repeats the article
// title.
type TitleValidator struct {
	Ratio float64
}

func (v *TitleValidator) Name() string { return "title-similarity" }

func (v *TitleValidator) Validate(c *Candidate, article Article) *ValidationError {
	for i, a := range c.Answers {
		if !IsAnswerDistinctFromTitle(a, article.Title, v.Ratio) {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("answer %d (%q) is too similar to the title", i, a),
			}
		}
	}
	return nil
}

// NumericDistractorValidator rejects numeric questions whose wrong
// answers sit too close to the correct value.
type NumericDistractorValidator struct {
	Thresholds DistractorThresholds
}

func (v *NumericDistractorValidator) Name() string { return "numeric-distractor" }

func (v *NumericDistractorValidator) Validate(c *Candidate, _ Article) *ValidationError {
	if !AreNumericDistractorsDistinct(c.Answers, c.CorrectIndex, v.Thresholds) {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "numeric distractors are too close to the correct answer",
		}
	}
	return nil
}
