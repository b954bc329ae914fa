package quizgen

import "fmt"

// Validator checks a candidate question against one quality rule.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for this validator (for error
	// messages and logging), e.g. "structural", "meta-reference".
	Name() string

	// Validate returns nil if the candidate passes, or a ValidationError
	// describing the failure. The article supplies the title and
	// language the candidate was generated for.
	Validate(c *Candidate, article Article) *ValidationError
}

// ValidationError describes why a candidate failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// QuestionValidator composes the quality rules into one accept/reject
// decision. Validators run in order and the first failure wins, so cheap
// structural checks guard the later ones against malformed candidates.
type QuestionValidator struct {
	validators []Validator
}

// NewQuestionValidator builds the standard validator chain from cfg.
func NewQuestionValidator(cfg FilterConfig) *QuestionValidator {
	return NewQuestionValidatorWith(
		&StructuralValidator{},
		&MetaReferenceValidator{Filter: NewMetaReferenceFilter(cfg.MetaFragments)},
		&LeakageValidator{},
		&TitleValidator{Ratio: cfg.TitleOverlapRatio},
		&NumericDistractorValidator{Thresholds: cfg.Distractors},
	)
}

// NewQuestionValidatorWith builds a QuestionValidator from an explicit,
// ordered validator list.
func NewQuestionValidatorWith(validators ...Validator) *QuestionValidator {
	return &QuestionValidator{validators: validators}
}

// Validators returns the configured chain in evaluation order.
func (qv *QuestionValidator) Validators() []Validator {
	return qv.validators
}

// Validate returns the first failing rule, or nil when the candidate is
// acceptable.
func (qv *QuestionValidator) Validate(c *Candidate, article Article) *ValidationError {
	if c == nil {
		return &ValidationError{Validator: "structural", Message: "candidate is nil"}
	}
	for _, v := range qv.validators {
		if verr := v.Validate(c, article); verr != nil {
			return verr
		}
	}
	return nil
}

// Accept reports whether the candidate passes every rule.
func (qv *QuestionValidator) Accept(c *Candidate, article Article) bool {
	return qv.Validate(c, article) == nil
}

// Explain runs every rule and returns all failures. A structural failure
// is returned alone because the remaining rules presume a well-formed
// candidate.
func (qv *QuestionValidator) Explain(c *Candidate, article Article) []*ValidationError {
	if c == nil {
		return []*ValidationError{{Validator: "structural", Message: "candidate is nil"}}
	}
	var out []*ValidationError
	for _, v := range qv.validators {
		verr := v.Validate(c, article)
		if verr == nil {
			continue
		}
		out = append(out, verr)
		if _, ok := v.(*StructuralValidator); ok {
			break
		}
	}
	return out
}
