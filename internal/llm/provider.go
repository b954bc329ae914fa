package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one structured completion. Implementations wrap a
// vendor SDK; the decorators in this package add logging, retries and
// deadlines around any of them.
type Provider interface {
	// Generate returns Content that already satisfies req.Schema when one
	// is set. Errors are the typed errors of this package or the
	// context's own error.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model, recorded with every stored
	// question and llm_requests row.
	ModelID() string
}

// Request is a single-turn prompt: a system prompt describing the quiz
// rules and one user message carrying the article slice.
type Request struct {
	System   string
	Messages []Message

	// Schema asks for JSON output through the vendor's native mechanism.
	// Without it Content is the model's text as is.
	Schema *Schema

	MaxTokens int

	// Temperature of zero leaves the vendor default in place for vendors
	// where zero cannot be sent explicitly.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

// UserMessage is the usual single message of a Request.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema, e.g. the "wikigame-question" candidate.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is what the vendor reports, which may be a dated snapshot of
	// the configured ModelID.
	Model string

	// StopReason is one of "end", "max_tokens" or "error".
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
