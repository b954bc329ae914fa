package quizcache

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyArticle is returned when the article text is missing or blank.
	// No generation is attempted.
	ErrEmptyArticle = errors.New("article text is empty")

	// ErrExhausted is returned when neither the cache nor the generation
	// loop produced a single acceptable question.
	ErrExhausted = errors.New("no valid questions could be produced")
)

// StoreError reports a failure of the question store other than a
// duplicate insert. It is fatal for the request.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("question store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
