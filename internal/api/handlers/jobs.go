package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"invoice-insight/internal/analytics"
	"invoice-insight/internal/api/middleware"
	"invoice-insight/internal/jobs"
	"invoice-insight/internal/store"
)

// JobsHandler enqueues asynchronous analyses and reports their progress.
type JobsHandler struct {
	datasets  *store.Store
	jobStore  jobs.JobStore
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(datasets *store.Store, jobStore jobs.JobStore, publisher jobs.Publisher, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{datasets: datasets, jobStore: jobStore, publisher: publisher, log: log}
}

// Enqueue handles POST /api/analyses.
func (h *JobsHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DatasetID     string  `json:"dataset_id"`
		Contamination float64 `json:"contamination"`
		Month         string  `json:"month"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DatasetID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "dataset_id is required")
		return
	}
	if req.Contamination == 0 {
		req.Contamination = analytics.DefaultContamination
	}

	ctx := r.Context()
	if _, err := h.datasets.Get(ctx, req.DatasetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Dataset not found")
			return
		}
		h.log.Error().Err(err).Str("dataset_id", req.DatasetID).Msg("Failed to load dataset")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load dataset")
		return
	}

	job := &jobs.AnalyzeDatasetJob{
		DatasetID:     req.DatasetID,
		Contamination: req.Contamination,
		Month:         req.Month,
	}
	if err := h.publisher.PublishAnalyze(ctx, job); err != nil {
		h.log.Error().Err(err).Str("dataset_id", req.DatasetID).Msg("Failed to enqueue analysis")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue analysis")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("dataset_id", req.DatasetID).
		Float64("contamination", req.Contamination).
		Msg("Analysis job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// List handles GET /api/jobs with optional ?dataset_id=, ?status= and
// ?limit= filters.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := jobs.JobFilter{
		DatasetID: r.URL.Query().Get("dataset_id"),
		Status:    jobs.JobStatus(r.URL.Query().Get("status")),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			middleware.WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	list, err := h.jobStore.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
	})
}

// Get handles GET /api/jobs/{id}.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.jobStore.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to load job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}
