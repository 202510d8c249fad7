package jobs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"invoice-insight/internal/analytics"
	"invoice-insight/internal/domain"
)

// DatasetSource resolves a dataset ID to its table.
type DatasetSource interface {
	Get(ctx context.Context, id string) (*domain.Dataset, error)
}

// AnalyzeHandler returns the JobHandler that runs the full analytical
// pipeline for a queued job, storing the result on the job itself.
func AnalyzeHandler(source DatasetSource, log zerolog.Logger) JobHandler {
	return func(ctx context.Context, job *AnalyzeDatasetJob) error {
		log.Info().
			Str("job_id", job.JobID).
			Str("dataset_id", job.DatasetID).
			Float64("contamination", job.Contamination).
			Msg("Processing analysis job")

		ds, err := source.Get(ctx, job.DatasetID)
		if err != nil {
			return fmt.Errorf("load dataset %s: %w", job.DatasetID, err)
		}

		result, err := analytics.Analyze(ds.FilterPeriod(job.Month), job.Contamination)
		if err != nil {
			return err
		}
		job.Result = result

		log.Info().
			Str("job_id", job.JobID).
			Int("anomalies", result.Detection.AnomalyCount).
			Float64("risk_score", result.Risk.Score).
			Msg("Analysis job completed")

		return nil
	}
}
