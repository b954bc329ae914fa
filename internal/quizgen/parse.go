package quizgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencePattern  = regexp.MustCompile("(?i)```(?:json)?")
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

// ErrNoCandidate is returned when a provider response carries no usable
// question object.
var ErrNoCandidate = errors.New("no question object in provider response")

// rawCandidate accepts the envelope variants providers have returned over
// time: camelCase or snake_case index, optionally wrapped in "sets".
type rawCandidate struct {
	Question          string         `json:"question"`
	Answers           []string       `json:"answers"`
	CorrectIndex      *int           `json:"correctIndex"`
	CorrectIndexSnake *int           `json:"correct_index"`
	Sets              []rawCandidate `json:"sets"`
}

// ParseCandidate extracts a Candidate from raw provider output. Markdown
// fences and text around the outermost JSON object are ignored.
func ParseCandidate(raw []byte) (*Candidate, error) {
	text := strings.TrimSpace(fencePattern.ReplaceAllString(string(raw), ""))
	if !strings.HasPrefix(text, "{") {
		text = objectPattern.FindString(text)
	}
	if text == "" {
		return nil, ErrNoCandidate
	}

	var rc rawCandidate
	if err := json.Unmarshal([]byte(text), &rc); err != nil {
		// Providers occasionally wrap valid JSON in a trailing sentence.
		m := objectPattern.FindString(text)
		if m == "" || m == text {
			return nil, fmt.Errorf("decode candidate: %w", err)
		}
		if err := json.Unmarshal([]byte(m), &rc); err != nil {
			return nil, fmt.Errorf("decode candidate: %w", err)
		}
	}

	if rc.Question == "" && len(rc.Sets) > 0 {
		rc = rc.Sets[0]
	}
	if rc.Question == "" && len(rc.Answers) == 0 {
		return nil, ErrNoCandidate
	}

	idx := rc.CorrectIndex
	if idx == nil {
		idx = rc.CorrectIndexSnake
	}
	if idx == nil {
		return nil, fmt.Errorf("candidate has no correct index")
	}

	return &Candidate{
		Question:     strings.TrimSpace(rc.Question),
		Answers:      rc.Answers,
		CorrectIndex: *idx,
	}, nil
}
