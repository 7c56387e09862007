package chatmodel

import (
	"context"
	"sync"
)

// Mock is a test double for Model: configurable canned responses, error
// injection, and call history, with no network calls.
type Mock struct {
	// Responses returned in order; the last one repeats once exhausted.
	Responses []Reply
	// Err, if set, is returned instead of a response.
	Err error
	// Calls records every invocation for assertions.
	Calls []MockCall

	mu    sync.Mutex
	index int
}

// MockCall records one Chat invocation.
type MockCall struct {
	Messages []Message
	Tools    []ToolSpec
}

func (m *Mock) Chat(ctx context.Context, messages []Message, tools []ToolSpec) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Messages: messages, Tools: tools})

	if m.Err != nil {
		return Reply{}, m.Err
	}
	if len(m.Responses) == 0 {
		return Reply{}, nil
	}

	idx := m.index
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	} else {
		m.index++
	}
	return m.Responses[idx], nil
}

// Reset clears call history and response index.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
	m.index = 0
}

// CallCount reports how many times Chat has been invoked.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
