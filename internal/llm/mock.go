package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted answer of a MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error

	// StopReason defaults to "end".
	StopReason string
}

// MockCandidate scripts a well-formed wikigame-question answer.
func MockCandidate(question string, answers []string, correctIndex int) MockResponse {
	raw, _ := json.Marshal(struct {
		Question     string   `json:"question"`
		Answers      []string `json:"answers"`
		CorrectIndex int      `json:"correctIndex"`
	}{question, answers, correctIndex})
	return MockResponse{
		Content: raw,
		Usage:   Usage{InputTokens: 400, OutputTokens: 40, TotalTokens: 440},
	}
}

// MockProvider replays scripted responses in order and records every
// request. With nothing left to replay it reports the provider as down,
// which is also what the "mock" entry in Config.Providers builds.
type MockProvider struct {
	mu        sync.Mutex
	model     string
	responses []MockResponse
	Calls     []Request
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{model: "mock", responses: responses}
}

// WithModel changes the model reported by ModelID and in responses.
func (m *MockProvider) WithModel(model string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.model = model
	return m
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{}
	}

	next := m.responses[0]
	m.responses = m.responses[1:]
	if next.Err != nil {
		return nil, next.Err
	}

	stop := next.StopReason
	if stop == "" {
		stop = "end"
	}
	return &Response{
		Content:    next.Content,
		Usage:      next.Usage,
		Model:      m.model,
		StopReason: stop,
	}, nil
}

func (m *MockProvider) ModelID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model
}

func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastRequest returns the most recent request, or false before any call.
func (m *MockProvider) LastRequest() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Request{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}
