package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryStore keeps runs in process memory. It backs local development
// and tests; records vanish on restart.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[string]Run
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{runs: make(map[string]Run)}
}

func (s *InMemoryStore) CreateRun(_ context.Context, run Run) error {
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

func (s *InMemoryStore) UpdateRun(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.runs[run.ID]
	if !ok {
		return ErrNotFound
	}
	run.CreatedAt = existing.CreatedAt
	run.UpdatedAt = time.Now().UTC()
	s.runs[run.ID] = run
	return nil
}

func (s *InMemoryStore) GetRun(_ context.Context, id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return Run{}, ErrNotFound
	}
	return run, nil
}

func (s *InMemoryStore) ListRuns(_ context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	s.mu.RLock()
	out := make([]Run, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
