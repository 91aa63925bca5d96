package generate

import (
	"context"
	"errors"
	"sync"
)

// MockClient is a scripted Client for tests. Calls consume Responses (and
// Errs) in order and every request is recorded for inspection.
type MockClient struct {
	mu        sync.Mutex
	Responses []Response
	Errs      []error
	Requests  []Request
}

func (m *MockClient) Complete(_ context.Context, req Request) (Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := len(m.Requests)
	m.Requests = append(m.Requests, req)
	if i < len(m.Errs) && m.Errs[i] != nil {
		return Response{}, m.Errs[i]
	}
	if i < len(m.Responses) {
		return m.Responses[i], nil
	}
	return Response{}, errors.New("mock: no scripted response")
}
