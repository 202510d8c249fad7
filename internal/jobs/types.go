// Package jobs defines asynchronous analysis jobs and the queue/store
// abstractions they run through.
package jobs

import (
	"context"
	"errors"
	"time"

	"invoice-insight/internal/analytics"
)

// ErrNotFound is returned when no job exists under the requested ID.
var ErrNotFound = errors.New("job not found")

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
)

// AnalyzeDatasetJob runs the full analytical pipeline over a stored dataset.
type AnalyzeDatasetJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// DatasetID references the dataset in the session store.
	DatasetID string `json:"dataset_id"`

	// Contamination is the outlier model's expected anomaly fraction.
	Contamination float64 `json:"contamination"`

	// Month optionally restricts the analysis to one YYYY-MM period.
	Month string `json:"month,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// Result holds the full analysis output once the job completes.
	Result *analytics.AnalysisResult `json:"result,omitempty"`
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishAnalyze enqueues an analysis job for asynchronous processing.
	PublishAnalyze(ctx context.Context, job *AnalyzeDatasetJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes one job, setting Result on success. Analysis is
// deterministic, so a failed job is terminal rather than retried.
type JobHandler func(ctx context.Context, job *AnalyzeDatasetJob) error

// JobStore defines the interface for storing and retrieving job state.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *AnalyzeDatasetJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*AnalyzeDatasetJob, error)

	// ListJobs retrieves jobs with optional filtering, newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*AnalyzeDatasetJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// DatasetID filters jobs by dataset.
	DatasetID string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
