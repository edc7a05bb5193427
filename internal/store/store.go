// Package store provides durable job-record storage keyed by job id.
// The Job Manager is the sole writer; implementations only guarantee that
// each Update is an atomic read-modify-write for its key.
package store

import (
	"context"
	"errors"

	"github.com/jonathan/brand-intel/internal/types"
)

// ErrNotFound is returned when no job exists for the given id.
var ErrNotFound = errors.New("job not found")

// Store is the durable map from job id to job state.
type Store interface {
	// Create persists a new job record. Fails if the id already exists.
	Create(ctx context.Context, job *types.Job) error
	// Get returns a snapshot of the job, or ErrNotFound.
	Get(ctx context.Context, id string) (*types.Job, error)
	// Update applies mutate to the stored record as one atomic
	// read-modify-write and returns the resulting snapshot. If mutate
	// returns an error, nothing is written.
	Update(ctx context.Context, id string, mutate func(*types.Job) error) (*types.Job, error)
	// Delete removes the record, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// List returns snapshots of all stored jobs.
	List(ctx context.Context) ([]*types.Job, error)
}
