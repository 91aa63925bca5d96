package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists episode runs in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS episode_runs (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			language TEXT NOT NULL DEFAULT '',
			provider TEXT NOT NULL,
			status TEXT NOT NULL,
			stage TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			script TEXT NOT NULL DEFAULT '',
			audio_path TEXT NOT NULL DEFAULT '',
			num_sections INT NOT NULL DEFAULT 0,
			target_words INT NOT NULL DEFAULT 0,
			input_tokens INT NOT NULL DEFAULT 0,
			output_tokens INT NOT NULL DEFAULT 0,
			chunks INT NOT NULL DEFAULT 0,
			retries INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_episode_runs_created ON episode_runs (created_at DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

const runColumns = `id, topic, language, provider, status, stage, error, script, audio_path,
	num_sections, target_words, input_tokens, output_tokens, chunks, retries, created_at, updated_at`

func (s *PostgresStore) CreateRun(ctx context.Context, run Run) error {
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO episode_runs (`+runColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		run.ID, run.Topic, run.Language, run.Provider, run.Status, run.Stage, run.Error,
		run.Script, run.AudioPath, run.NumSections, run.TargetWords,
		run.InputTokens, run.OutputTokens, run.Chunks, run.Retries,
		run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateRun(ctx context.Context, run Run) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE episode_runs SET
			status=$2, stage=$3, error=$4, script=$5, audio_path=$6,
			num_sections=$7, target_words=$8, input_tokens=$9, output_tokens=$10,
			chunks=$11, retries=$12, updated_at=now()
		 WHERE id=$1`,
		run.ID, run.Status, run.Stage, run.Error, run.Script, run.AudioPath,
		run.NumSections, run.TargetWords, run.InputTokens, run.OutputTokens,
		run.Chunks, run.Retries,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM episode_runs WHERE id=$1`, id)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+runColumns+` FROM episode_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.Row) (Run, error) {
	var r Run
	err := row.Scan(
		&r.ID, &r.Topic, &r.Language, &r.Provider, &r.Status, &r.Stage, &r.Error,
		&r.Script, &r.AudioPath, &r.NumSections, &r.TargetWords,
		&r.InputTokens, &r.OutputTokens, &r.Chunks, &r.Retries,
		&r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
