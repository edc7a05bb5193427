package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// JobStatus represents the lifecycle state of a collection job.
type JobStatus string

const (
	// StatusStarted means the job record exists but execution has not begun.
	StatusStarted JobStatus = "started"
	// StatusInProgress means the background execution task is running.
	StatusInProgress JobStatus = "in_progress"
	// StatusCompleted means all sources for both subjects were collected.
	StatusCompleted JobStatus = "completed"
	// StatusFailed means an orchestration error aborted the job.
	StatusFailed JobStatus = "failed"
	// StatusCancelled means the job was cancelled before completing.
	StatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further transition leaves this status.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// CollectionRequest is the caller-facing request to start a collection job.
type CollectionRequest struct {
	BrandID       string       `json:"brand_id" validate:"required"`
	CompetitorID  string       `json:"competitor_id" validate:"required"`
	AreaID        string       `json:"area_id" validate:"required"`
	Sources       []DataSource `json:"sources,omitempty" validate:"omitempty,min=1"`
	CorrelationID string       `json:"correlation_id,omitempty"`
}

// Validate validates the CollectionRequest using the validator.
// An explicitly provided source set must be non-empty and contain only
// known sources; an absent set means "all sources".
func (r *CollectionRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	for _, s := range r.Sources {
		if !s.Valid() {
			return fmt.Errorf("unknown data source %q", s)
		}
	}
	return nil
}

// EffectiveSources returns the requested sources, defaulting to all four
// when the request omitted them.
func (r *CollectionRequest) EffectiveSources() []DataSource {
	if len(r.Sources) == 0 {
		return AllSources()
	}
	out := make([]DataSource, len(r.Sources))
	copy(out, r.Sources)
	return out
}

// Job is the durable record of one collection job.
// CompletedSources and RemainingSources always partition the requested
// sources; a source moves between them exactly once.
type Job struct {
	ID                  string         `json:"id"`
	BrandID             string         `json:"brand_id"`
	CompetitorID        string         `json:"competitor_id"`
	AreaID              string         `json:"area_id"`
	Sources             []DataSource   `json:"sources"`
	CorrelationID       string         `json:"correlation_id,omitempty"`
	Status              JobStatus      `json:"status"`
	Progress            int            `json:"progress"`
	CompletedSources    []DataSource   `json:"completed_sources"`
	RemainingSources    []DataSource   `json:"remaining_sources"`
	CurrentStep         string         `json:"current_step,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	StartedAt           *time.Time     `json:"started_at,omitempty"`
	CompletedAt         *time.Time     `json:"completed_at,omitempty"`
	EstimatedCompletion *time.Time     `json:"estimated_completion,omitempty"`
	Data                *CollectedData `json:"data,omitempty"`
	ErrorMessage        string         `json:"error_message,omitempty"`
}

// MarkSourceDone moves a source from remaining to completed.
// Calling it again for the same source is a no-op, preserving the
// exactly-once invariant.
func (j *Job) MarkSourceDone(source DataSource) {
	for _, done := range j.CompletedSources {
		if done == source {
			return
		}
	}
	remaining := j.RemainingSources[:0]
	found := false
	for _, r := range j.RemainingSources {
		if r == source {
			found = true
			continue
		}
		remaining = append(remaining, r)
	}
	if !found {
		return
	}
	j.RemainingSources = remaining
	j.CompletedSources = append(j.CompletedSources, source)
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing store-internal state.
func (j *Job) Clone() *Job {
	cp := *j
	cp.Sources = append([]DataSource(nil), j.Sources...)
	cp.CompletedSources = append([]DataSource(nil), j.CompletedSources...)
	cp.RemainingSources = append([]DataSource(nil), j.RemainingSources...)
	if j.StartedAt != nil {
		t := *j.StartedAt
		cp.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	if j.EstimatedCompletion != nil {
		t := *j.EstimatedCompletion
		cp.EstimatedCompletion = &t
	}
	if j.Data != nil {
		d := *j.Data
		cp.Data = &d
	}
	return &cp
}

// CollectedData pairs the brand and competitor collection results.
type CollectedData struct {
	Brand      BrandData `json:"brand"`
	Competitor BrandData `json:"competitor"`
}
