package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jonathan/brand-intel/internal/manager"
	"github.com/jonathan/brand-intel/internal/store"
	"github.com/jonathan/brand-intel/internal/types"
)

// handleStartJob accepts a collection request and returns the created job.
func (s *Server) handleStartJob(w http.ResponseWriter, r *http.Request) {
	var req types.CollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	job, err := s.manager.Start(r.Context(), &req)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusAccepted, job)
}

// handleJobStatus returns the current job snapshot.
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.manager.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "job not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleJobData returns the collected data once the job has completed.
// Running jobs answer 409 so pollers can distinguish "not yet" from "gone".
func (s *Server) handleJobData(w http.ResponseWriter, r *http.Request) {
	data, err := s.manager.Data(r.Context(), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			s.errorResponse(w, http.StatusNotFound, "job not found")
		case errors.Is(err, manager.ErrNotReady):
			s.errorResponse(w, http.StatusConflict, err.Error())
		default:
			s.errorResponse(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.jsonResponse(w, http.StatusOK, data)
}

// handleCancelJob requests cooperative cancellation.
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	cancelled, err := s.manager.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "job not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
}

// handleStats returns aggregate job statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.manager.GetStats(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}

// handleCacheStats returns cache occupancy and efficiency.
func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	if s.cache == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "cache disabled")
		return
	}
	s.jsonResponse(w, http.StatusOK, s.cache.Stats())
}

// handleCacheInvalidate drops all cached entries for a subject.
func (s *Server) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "cache disabled")
		return
	}
	var body struct {
		SubjectID string `json:"subject_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.SubjectID == "" {
		s.errorResponse(w, http.StatusBadRequest, "subject_id is required")
		return
	}
	removed := s.cache.Invalidate(body.SubjectID)
	s.jsonResponse(w, http.StatusOK, map[string]int{"invalidated": removed})
}
