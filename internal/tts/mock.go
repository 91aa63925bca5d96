package tts

import (
	"context"
	"errors"
	"sync"
)

// MockProvider is a scripted Provider for tests. Synthesize calls consume
// Responses (and Errs) in order and record the chunk they received.
type MockProvider struct {
	mu        sync.Mutex
	Budget    int
	Raw       bool
	Rate      int
	Responses [][]byte
	Errs      []error
	Calls     []Chunk
}

func (m *MockProvider) Name() string        { return "mock" }
func (m *MockProvider) ArtifactTag() string { return "MOCK" }
func (m *MockProvider) RawPCM() bool        { return m.Raw }

func (m *MockProvider) ChunkBudget() int {
	if m.Budget <= 0 {
		return 4500
	}
	return m.Budget
}

func (m *MockProvider) SampleRate() int {
	if m.Rate <= 0 {
		return 44100
	}
	return m.Rate
}

func (m *MockProvider) RequestPayload(chunk Chunk, _ Options) (any, error) {
	lines := make([]string, 0, len(chunk.Segments))
	for _, seg := range chunk.Segments {
		lines = append(lines, seg.Line())
	}
	return map[string]any{"chunk": chunk.Index, "lines": lines}, nil
}

func (m *MockProvider) Synthesize(_ context.Context, chunk Chunk, _ Options) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := len(m.Calls)
	m.Calls = append(m.Calls, chunk)
	if i < len(m.Errs) && m.Errs[i] != nil {
		return nil, m.Errs[i]
	}
	if i < len(m.Responses) {
		return m.Responses[i], nil
	}
	return nil, errors.New("mock: no scripted audio")
}
