package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonathan/brand-intel/internal/types"
)

// Memory is an in-memory Store used by tests and the one-shot CLI.
// The single lock covers only map access and the mutate closure, never a
// network call.
type Memory struct {
	mu   sync.RWMutex
	jobs map[string]*types.Job
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{jobs: make(map[string]*types.Job)}
}

// Create persists a new job record.
func (m *Memory) Create(_ context.Context, job *types.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	m.jobs[job.ID] = job.Clone()
	return nil
}

// Get returns a snapshot of the job, or ErrNotFound.
func (m *Memory) Get(_ context.Context, id string) (*types.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return job.Clone(), nil
}

// Update applies mutate under the store lock and returns the new snapshot.
func (m *Memory) Update(_ context.Context, id string, mutate func(*types.Job) error) (*types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}

	// Mutate a copy so a failed mutate leaves the record untouched.
	updated := job.Clone()
	if err := mutate(updated); err != nil {
		return nil, err
	}
	m.jobs[id] = updated
	return updated.Clone(), nil
}

// Delete removes the record, or returns ErrNotFound.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[id]; !ok {
		return ErrNotFound
	}
	delete(m.jobs, id)
	return nil
}

// List returns snapshots of all stored jobs.
func (m *Memory) List(_ context.Context) ([]*types.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*types.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		out = append(out, job.Clone())
	}
	return out, nil
}
