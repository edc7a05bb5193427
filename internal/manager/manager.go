// Package manager owns the collection job lifecycle: it validates requests,
// creates job records, runs the background collection task for each job, and
// answers status, data, cancellation, and statistics queries.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/brand-intel/internal/metrics"
	"github.com/jonathan/brand-intel/internal/store"
	"github.com/jonathan/brand-intel/internal/types"
)

// ErrNotReady means the job exists but has not produced its data yet.
var ErrNotReady = errors.New("job data not ready")

// errAlreadyTerminal aborts a store mutate that would overwrite a terminal
// status. Terminal writes win; later transitions are silently dropped.
var errAlreadyTerminal = errors.New("job already terminal")

// SubjectCollector runs the full per-subject collection.
type SubjectCollector interface {
	CollectAll(ctx context.Context, subjectID, areaID string, sources []types.DataSource, onProgress func(types.DataSource)) (*types.BrandData, error)
}

// Config holds manager behavior knobs.
type Config struct {
	// AllowedSources restricts which sources callers may request. Empty
	// means all sources are allowed.
	AllowedSources []types.DataSource
	// SourceTimeout feeds the estimated-completion heuristic.
	SourceTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.SourceTimeout <= 0 {
		c.SourceTimeout = 30 * time.Second
	}
	return c
}

// Manager orchestrates collection jobs. Each started job gets one background
// task; the task set is tracked so jobs can be cancelled cooperatively.
type Manager struct {
	store  store.Store
	runner SubjectCollector
	cfg    Config

	mu    sync.Mutex
	tasks map[string]*task
}

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Manager.
func New(s store.Store, r SubjectCollector, cfg Config) *Manager {
	return &Manager{
		store:  s,
		runner: r,
		cfg:    cfg.withDefaults(),
		tasks:  make(map[string]*task),
	}
}

// Start validates the request, persists a new job in the started state, and
// launches its background collection task. The returned snapshot reflects
// the job as created; execution proceeds independently of the caller's
// context.
func (m *Manager) Start(ctx context.Context, req *types.CollectionRequest) (*types.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid collection request: %w", err)
	}
	sources := req.EffectiveSources()
	for _, s := range sources {
		if !m.sourceAllowed(s) {
			return nil, fmt.Errorf("data source %q is not enabled", s)
		}
	}

	now := time.Now().UTC()
	estimate := now.Add(m.estimateDuration(len(sources)))
	job := &types.Job{
		ID:                  uuid.NewString(),
		BrandID:             req.BrandID,
		CompetitorID:        req.CompetitorID,
		AreaID:              req.AreaID,
		Sources:             sources,
		CorrelationID:       req.CorrelationID,
		Status:              types.StatusStarted,
		RemainingSources:    append([]types.DataSource(nil), sources...),
		CreatedAt:           now,
		EstimatedCompletion: &estimate,
	}
	if err := m.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	taskCtx, cancel := context.WithCancel(context.Background())
	t := &task{cancel: cancel, done: make(chan struct{})}
	m.mu.Lock()
	m.tasks[job.ID] = t
	m.mu.Unlock()

	metrics.JobsStarted.Inc()
	metrics.ActiveJobs.Inc()
	log.Printf("[manager] job %s started for brand=%s competitor=%s area=%s sources=%v",
		job.ID, job.BrandID, job.CompetitorID, job.AreaID, sources)

	go m.execute(taskCtx, job.ID)

	return job.Clone(), nil
}

// estimateDuration is a coarse heuristic: two collection passes per source,
// each expected to finish well under the per-attempt timeout.
func (m *Manager) estimateDuration(sourceCount int) time.Duration {
	return time.Duration(sourceCount) * 2 * (m.cfg.SourceTimeout / 4)
}

func (m *Manager) sourceAllowed(s types.DataSource) bool {
	if len(m.cfg.AllowedSources) == 0 {
		return true
	}
	for _, allowed := range m.cfg.AllowedSources {
		if allowed == s {
			return true
		}
	}
	return false
}

// execute runs one job to a terminal state. Brand data is collected fully
// before competitor data. Progress climbs monotonically from 5 and is capped
// at 95 until the collected data has been persisted.
func (m *Manager) execute(ctx context.Context, jobID string) {
	start := time.Now()
	defer func() {
		m.mu.Lock()
		if t, ok := m.tasks[jobID]; ok {
			close(t.done)
			delete(m.tasks, jobID)
		}
		m.mu.Unlock()
		metrics.ActiveJobs.Dec()
		metrics.JobDuration.Observe(time.Since(start).Seconds())
	}()

	job, err := m.store.Get(ctx, jobID)
	if err != nil {
		log.Printf("[manager] job %s vanished before execution: %v", jobID, err)
		return
	}
	sources := job.Sources
	totalSteps := len(sources) * 2
	var doneSteps int
	var stepMu sync.Mutex

	advance := func(markDone bool) func(types.DataSource) {
		return func(source types.DataSource) {
			stepMu.Lock()
			doneSteps++
			progress := progressFor(doneSteps, totalSteps)
			stepMu.Unlock()
			_, err := m.store.Update(ctx, jobID, func(j *types.Job) error {
				if j.Status.Terminal() {
					return errAlreadyTerminal
				}
				if markDone {
					j.MarkSourceDone(source)
				}
				if progress > j.Progress {
					j.Progress = progress
				}
				return nil
			})
			if err != nil && !errors.Is(err, errAlreadyTerminal) {
				log.Printf("[manager] job %s progress update failed: %v", jobID, err)
			}
		}
	}

	if err := m.transition(ctx, jobID, func(j *types.Job) {
		now := time.Now().UTC()
		j.Status = types.StatusInProgress
		j.StartedAt = &now
		j.Progress = 5
		j.CurrentStep = fmt.Sprintf("collecting brand data for %s", job.BrandID)
	}); err != nil {
		return
	}

	brand, err := m.runner.CollectAll(ctx, job.BrandID, job.AreaID, sources, advance(true))
	if err != nil {
		m.fail(ctx, jobID, start, err)
		return
	}

	if err := m.transition(ctx, jobID, func(j *types.Job) {
		j.CurrentStep = fmt.Sprintf("collecting competitor data for %s", job.CompetitorID)
	}); err != nil {
		return
	}

	competitor, err := m.runner.CollectAll(ctx, job.CompetitorID, job.AreaID, sources, advance(false))
	if err != nil {
		m.fail(ctx, jobID, start, err)
		return
	}

	_, err = m.store.Update(context.Background(), jobID, func(j *types.Job) error {
		if j.Status.Terminal() {
			return errAlreadyTerminal
		}
		now := time.Now().UTC()
		j.Data = &types.CollectedData{Brand: *brand, Competitor: *competitor}
		j.Status = types.StatusCompleted
		j.Progress = 100
		j.CurrentStep = ""
		j.CompletedAt = &now
		return nil
	})
	if err != nil {
		if !errors.Is(err, errAlreadyTerminal) {
			log.Printf("[manager] job %s completion write failed: %v", jobID, err)
		}
		return
	}
	metrics.JobsCompleted.Inc()
	log.Printf("[manager] job %s completed in %s", jobID, time.Since(start).Round(time.Millisecond))
}

// transition applies a non-terminal job mutation. It reports an error when
// the job is already terminal so the caller stops executing.
func (m *Manager) transition(ctx context.Context, jobID string, mutate func(*types.Job)) error {
	_, err := m.store.Update(context.Background(), jobID, func(j *types.Job) error {
		if j.Status.Terminal() {
			return errAlreadyTerminal
		}
		mutate(j)
		return nil
	})
	return err
}

func (m *Manager) fail(ctx context.Context, jobID string, start time.Time, cause error) {
	if ctx.Err() != nil {
		// Cancellation already moved the job to its terminal state.
		log.Printf("[manager] job %s stopped: %v", jobID, ctx.Err())
		return
	}
	err := m.transition(ctx, jobID, func(j *types.Job) {
		now := time.Now().UTC()
		j.Status = types.StatusFailed
		j.ErrorMessage = cause.Error()
		j.CurrentStep = ""
		j.CompletedAt = &now
	})
	if err != nil {
		if !errors.Is(err, errAlreadyTerminal) {
			log.Printf("[manager] job %s failure write failed: %v", jobID, err)
		}
		return
	}
	metrics.JobsFailed.Inc()
	log.Printf("[manager] job %s failed after %s: %v", jobID, time.Since(start).Round(time.Millisecond), cause)
}

// progressFor maps completed collection steps onto the reported percentage.
// The floor of 5 signals "accepted and running"; the cap of 95 holds until
// the collected data is persisted.
func progressFor(done, total int) int {
	if total <= 0 {
		return 5
	}
	p := done * 100 / total
	if p < 5 {
		p = 5
	}
	if p > 95 {
		p = 95
	}
	return p
}

// Status returns a snapshot of the job.
func (m *Manager) Status(ctx context.Context, jobID string) (*types.Job, error) {
	return m.store.Get(ctx, jobID)
}

// Data returns the collected data for a completed job. It returns
// store.ErrNotFound for unknown jobs and ErrNotReady while the job is still
// running or ended without data.
func (m *Manager) Data(ctx context.Context, jobID string) (*types.CollectedData, error) {
	job, err := m.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != types.StatusCompleted || job.Data == nil {
		return nil, fmt.Errorf("job %s is %s: %w", jobID, job.Status, ErrNotReady)
	}
	return job.Data, nil
}

// Cancel requests cooperative cancellation of a running job. It returns true
// when this call moved the job to cancelled, and false when the job was
// already terminal. Unknown jobs return store.ErrNotFound.
func (m *Manager) Cancel(ctx context.Context, jobID string) (bool, error) {
	_, err := m.store.Update(ctx, jobID, func(j *types.Job) error {
		if j.Status.Terminal() {
			return errAlreadyTerminal
		}
		now := time.Now().UTC()
		j.Status = types.StatusCancelled
		j.CurrentStep = ""
		j.CompletedAt = &now
		return nil
	})
	if err != nil {
		if errors.Is(err, errAlreadyTerminal) {
			return false, nil
		}
		return false, err
	}

	m.mu.Lock()
	t := m.tasks[jobID]
	m.mu.Unlock()
	if t != nil {
		t.cancel()
	}

	metrics.JobsCancelled.Inc()
	log.Printf("[manager] job %s cancelled", jobID)
	return true, nil
}

// Delete removes a job record. Running jobs are cancelled first.
func (m *Manager) Delete(ctx context.Context, jobID string) error {
	if _, err := m.Cancel(ctx, jobID); err != nil {
		return err
	}
	return m.store.Delete(ctx, jobID)
}

// ActiveCount reports the number of in-flight background tasks.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Stats summarizes all known jobs.
type Stats struct {
	TotalJobs            int               `json:"total_jobs"`
	ActiveJobs           int               `json:"active_jobs"`
	ByStatus             map[string]int    `json:"by_status"`
	SuccessRate          float64           `json:"success_rate"`
	AvgCompletionSeconds float64           `json:"avg_completion_seconds"`
}

// GetStats computes aggregate job statistics. Success rate is
// completed/(completed+failed), reported as 1.0 when neither exists yet.
func (m *Manager) GetStats(ctx context.Context) (*Stats, error) {
	jobs, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalJobs:  len(jobs),
		ActiveJobs: m.ActiveCount(),
		ByStatus:   make(map[string]int),
	}
	var completed, failed int
	var totalSeconds float64
	for _, j := range jobs {
		stats.ByStatus[string(j.Status)]++
		switch j.Status {
		case types.StatusCompleted:
			completed++
			if j.CompletedAt != nil {
				totalSeconds += j.CompletedAt.Sub(j.CreatedAt).Seconds()
			}
		case types.StatusFailed:
			failed++
		}
	}
	if completed+failed == 0 {
		stats.SuccessRate = 1.0
	} else {
		stats.SuccessRate = float64(completed) / float64(completed+failed)
	}
	if completed > 0 {
		stats.AvgCompletionSeconds = totalSeconds / float64(completed)
	}
	return stats, nil
}

// Wait blocks until the job's background task finishes. Jobs without a
// registered task return immediately. Intended for tests and one-shot runs.
func (m *Manager) Wait(jobID string) {
	m.mu.Lock()
	t := m.tasks[jobID]
	m.mu.Unlock()
	if t != nil {
		<-t.done
	}
}

// StartReaper periodically deletes terminal jobs older than maxAge.
func (m *Manager) StartReaper(ctx context.Context, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.reap(ctx, maxAge)
			}
		}
	}()
}

func (m *Manager) reap(ctx context.Context, maxAge time.Duration) {
	jobs, err := m.store.List(ctx)
	if err != nil {
		log.Printf("[manager] reaper list failed: %v", err)
		return
	}
	cutoff := time.Now().UTC().Add(-maxAge)
	reaped := 0
	for _, j := range jobs {
		if !j.Status.Terminal() {
			continue
		}
		end := j.CreatedAt
		if j.CompletedAt != nil {
			end = *j.CompletedAt
		}
		if end.Before(cutoff) {
			if err := m.store.Delete(ctx, j.ID); err == nil {
				reaped++
			}
		}
	}
	if reaped > 0 {
		log.Printf("[manager] reaped %d expired jobs", reaped)
	}
}
