package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a run id has no record.
var ErrNotFound = errors.New("run not found")

type RunStatus string

const (
	StatusPending      RunStatus = "pending"
	StatusGenerating   RunStatus = "generating"
	StatusSynthesizing RunStatus = "synthesizing"
	StatusCompleted    RunStatus = "completed"
	StatusFailed       RunStatus = "failed"
)

// Run is the persistent record of one episode run: its request, its
// lifecycle state and the usage accounting accumulated along the way.
type Run struct {
	ID       string
	Topic    string
	Language string
	Provider string

	Status RunStatus
	Stage  string
	Error  string

	Script    string
	AudioPath string

	NumSections  int
	TargetWords  int
	InputTokens  int
	OutputTokens int
	Chunks       int
	Retries      int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists episode runs.
type Store interface {
	CreateRun(ctx context.Context, run Run) error
	UpdateRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

// NewStore creates a postgres-backed store when configured, otherwise in-memory.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewInMemoryStore(), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}
