package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/brand-intel/internal/types"
)

// Postgres is the durable Store backed by a PostgreSQL connection pool.
// Job records live in collection_jobs as JSONB payloads keyed by id;
// Update serializes concurrent writers per key with SELECT ... FOR UPDATE.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Create persists a new job record.
func (p *Postgres) Create(ctx context.Context, job *types.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO collection_jobs (id, status, payload, created_at)
		 VALUES ($1, $2, $3, $4)`,
		job.ID, string(job.Status), payload, job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// Get returns a snapshot of the job, or ErrNotFound.
func (p *Postgres) Get(ctx context.Context, id string) (*types.Job, error) {
	var payload []byte
	err := p.pool.QueryRow(ctx,
		`SELECT payload FROM collection_jobs WHERE id = $1`,
		id,
	).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	var job types.Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job %s: %w", id, err)
	}
	return &job, nil
}

// Update applies mutate inside a transaction holding a row lock, so each
// read-modify-write is atomic per job id.
func (p *Postgres) Update(ctx context.Context, id string, mutate func(*types.Job) error) (*types.Job, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var payload []byte
	err = tx.QueryRow(ctx,
		`SELECT payload FROM collection_jobs WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock job: %w", err)
	}

	var job types.Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job %s: %w", id, err)
	}

	if err := mutate(&job); err != nil {
		return nil, err
	}

	updated, err := json.Marshal(&job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE collection_jobs SET status = $1, payload = $2, updated_at = NOW() WHERE id = $3`,
		string(job.Status), updated, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit job update: %w", err)
	}
	return &job, nil
}

// Delete removes the record, or returns ErrNotFound.
func (p *Postgres) Delete(ctx context.Context, id string) error {
	result, err := p.pool.Exec(ctx, `DELETE FROM collection_jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns snapshots of all stored jobs, newest first.
func (p *Postgres) List(ctx context.Context) ([]*types.Job, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT payload FROM collection_jobs ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*types.Job
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		var job types.Job
		if err := json.Unmarshal(payload, &job); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job: %w", err)
		}
		jobs = append(jobs, &job)
	}
	return jobs, nil
}
