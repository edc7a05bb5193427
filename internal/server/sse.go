package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonathan/brand-intel/internal/store"
	"github.com/jonathan/brand-intel/internal/types"
)

// progressPollInterval is how often the event stream re-reads the job.
const progressPollInterval = 500 * time.Millisecond

// SSEWriter helps write Server-Sent Events.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event.
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent("error", map[string]string{"error": message}) //nolint:errcheck
}

// WriteComplete sends a completion event.
func (s *SSEWriter) WriteComplete(jobID string, status types.JobStatus) {
	s.WriteEvent("complete", map[string]string{ //nolint:errcheck
		"job_id": jobID,
		"status": string(status),
	})
}

// progressEvent is the payload streamed on each observed change.
type progressEvent struct {
	JobID       string          `json:"job_id"`
	Status      types.JobStatus `json:"status"`
	Progress    int             `json:"progress"`
	CurrentStep string          `json:"current_step,omitempty"`
}

// handleJobEvents streams job progress as Server-Sent Events until the job
// reaches a terminal state or the client disconnects.
func (s *Server) handleJobEvents(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if _, err := s.manager.Status(r.Context(), jobID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "job not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()

	lastProgress := -1
	var lastStatus types.JobStatus
	for {
		job, err := s.manager.Status(r.Context(), jobID)
		if err != nil {
			sse.WriteError(err.Error())
			return
		}

		if job.Progress != lastProgress || job.Status != lastStatus {
			lastProgress = job.Progress
			lastStatus = job.Status
			if err := sse.WriteEvent("progress", progressEvent{
				JobID:       job.ID,
				Status:      job.Status,
				Progress:    job.Progress,
				CurrentStep: job.CurrentStep,
			}); err != nil {
				return
			}
		}

		if job.Status.Terminal() {
			sse.WriteComplete(job.ID, job.Status)
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
