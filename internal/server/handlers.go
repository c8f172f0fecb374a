package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/talentbridge/talentbridge/internal/interview"
	"github.com/talentbridge/talentbridge/internal/storage"
)

type handlers struct {
	logger *slog.Logger
	orch   *interview.Orchestrator
	store  storage.Store
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSessionHistory serves the same shape as the interview-history event
// over plain HTTP.
func (h *handlers) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	hist, err := h.orch.History(sessionID)
	if err != nil {
		if errors.Is(err, interview.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "session not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	respondJSON(w, http.StatusOK, hist)
}

func (h *handlers) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var job storage.Job
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if job.Title == "" || job.Company == "" {
		respondError(w, http.StatusBadRequest, "title and company are required")
		return
	}

	job.ID = uuid.New().String()
	if err := h.store.CreateJob(r.Context(), &job); err != nil {
		h.logger.Error("failed to create job", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	respondJSON(w, http.StatusCreated, job)
}

func (h *handlers) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.store.ListJobs(r.Context())
	if err != nil {
		h.logger.Error("failed to list jobs", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	respondJSON(w, http.StatusOK, jobs)
}

func (h *handlers) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.store.GetJob(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "job not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	respondJSON(w, http.StatusOK, job)
}

func (h *handlers) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var app storage.Application
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if app.UserID == "" || app.JobID == "" {
		respondError(w, http.StatusBadRequest, "userId and jobId are required")
		return
	}

	app.ID = uuid.New().String()
	if app.Status == "" {
		app.Status = "applied"
	}
	if err := h.store.CreateApplication(r.Context(), &app); err != nil {
		h.logger.Error("failed to create application", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "failed to create application")
		return
	}

	respondJSON(w, http.StatusCreated, app)
}

func (h *handlers) handleListApplications(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user query parameter is required")
		return
	}

	apps, err := h.store.ListApplicationsByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list applications", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "failed to list applications")
		return
	}
	respondJSON(w, http.StatusOK, apps)
}

func (h *handlers) handleUpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		respondError(w, http.StatusBadRequest, "status is required")
		return
	}

	id := chi.URLParam(r, "applicationID")
	if err := h.store.UpdateApplicationStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "application not found")
			return
		}
		h.logger.Error("failed to update application", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "failed to update application")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "status updated", "status": req.Status})
}

const recommendedJobsLimit = 5

// dashboardSummary is the per-user aggregation behind the dashboard view:
// the user's applications, how many interview sessions they have run, and
// the most recent job postings.
type dashboardSummary struct {
	Applications    []*storage.Application `json:"applications"`
	InterviewCount  int                    `json:"interviewCount"`
	RecommendedJobs []*storage.Job         `json:"recommendedJobs"`
}

func (h *handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user query parameter is required")
		return
	}

	apps, err := h.store.ListApplicationsByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list applications", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	interviews, err := h.store.CountSnapshotsByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to count interviews", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	jobs, err := h.store.ListJobs(r.Context())
	if err != nil {
		h.logger.Error("failed to list jobs", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	if len(jobs) > recommendedJobsLimit {
		jobs = jobs[:recommendedJobsLimit]
	}

	respondJSON(w, http.StatusOK, dashboardSummary{
		Applications:    apps,
		InterviewCount:  interviews,
		RecommendedJobs: jobs,
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
