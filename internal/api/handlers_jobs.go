package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/privasee/footprint/internal/scheduler"
)

func (s *Server) listScheduledJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.schedulerStore.ListJobs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, jobs)
}

type createJobRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Schedule    string            `json:"schedule"`
	JobType     scheduler.JobType `json:"job_type"`
	Config      map[string]string `json:"config"`
	Enabled     bool              `json:"enabled"`
}

func (s *Server) createScheduledJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if req.Name == "" || req.Schedule == "" || req.JobType == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "name, schedule, and job_type are required")
		return
	}

	job := &scheduler.Job{
		Name:        req.Name,
		Description: req.Description,
		Schedule:    req.Schedule,
		JobType:     req.JobType,
		Config:      req.Config,
		Enabled:     req.Enabled,
	}

	if err := s.scheduler.AddJob(r.Context(), job); err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, job)
}

func (s *Server) getScheduledJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	job, err := s.schedulerStore.GetJob(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "Job not found")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

func (s *Server) updateScheduledJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")

	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	job := &scheduler.Job{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Schedule:    req.Schedule,
		JobType:     req.JobType,
		Config:      req.Config,
		Enabled:     req.Enabled,
	}

	if err := s.scheduler.UpdateJob(r.Context(), job); err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, job)
}

func (s *Server) deleteScheduledJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")

	if err := s.scheduler.DeleteJob(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) runScheduledJobNow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")

	if err := s.scheduler.RunJobNow(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "job_error", err.Error())
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "triggered"})
}

func (s *Server) getJobExecutions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")

	execs, err := s.schedulerStore.GetJobExecutions(r.Context(), id, 50)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, execs)
}

func (s *Server) getQueueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.queue.GetQueueStats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "queue_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) getJobProgress(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "Invalid job ID")
		return
	}

	progress, err := s.queue.GetProgress(r.Context(), jobID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "queue_error", err.Error())
		return
	}
	if progress == nil {
		respondError(w, http.StatusNotFound, "not_found", "Job not found")
		return
	}

	respondJSON(w, http.StatusOK, progress)
}

func (s *Server) getActiveWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := s.queue.GetActiveWorkers(r.Context(), 30*time.Second)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "queue_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(workers),
		"workers": workers,
	})
}
