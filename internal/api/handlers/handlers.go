// Package handlers implements the dashboard's HTTP endpoints. Handlers hold
// their dependencies in struct fields and write JSON through the middleware
// helpers.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"invoice-insight/internal/analytics"
	"invoice-insight/internal/api/middleware"
	"invoice-insight/internal/domain"
	"invoice-insight/internal/ingest"
	"invoice-insight/internal/sample"
	"invoice-insight/internal/store"
)

// DatasetsHandler handles dataset upload, generation and retrieval.
type DatasetsHandler struct {
	datasets *store.Store
	log      zerolog.Logger
}

// NewDatasetsHandler creates a new datasets handler.
func NewDatasetsHandler(datasets *store.Store, log zerolog.Logger) *DatasetsHandler {
	return &DatasetsHandler{datasets: datasets, log: log}
}

// Upload handles POST /api/datasets. The request body is the raw CSV;
// ?mode=strict validates against the 5-column Sale/Purchase schema,
// anything else validates leniently.
func (h *DatasetsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload.csv"
	}

	ds, err := ingest.ReadCSV(r.Body, name)
	if err != nil {
		var schemaErr *domain.SchemaError
		if errors.As(err, &schemaErr) {
			middleware.WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":          schemaErr.Error(),
				"missing_fields": schemaErr.MissingFields,
			})
			return
		}
		h.log.Error().Err(err).Msg("Failed to parse upload")
		middleware.WriteError(w, http.StatusBadRequest, "Could not parse CSV upload")
		return
	}

	mode := analytics.Lenient
	if r.URL.Query().Get("mode") == string(analytics.Strict) {
		mode = analytics.Strict
	}

	report, err := analytics.ValidateSchema(ds, mode)
	if err != nil {
		var schemaErr *domain.SchemaError
		if errors.As(err, &schemaErr) {
			middleware.WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":          schemaErr.Error(),
				"missing_fields": schemaErr.MissingFields,
				"invalid_types":  schemaErr.InvalidTypes,
				"invalid_forms":  schemaErr.InvalidForms,
				"report":         report,
			})
			return
		}
		h.log.Error().Err(err).Msg("Schema validation failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Schema validation failed")
		return
	}

	id, err := h.datasets.Save(ctx, ds)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to store dataset")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store dataset")
		return
	}

	h.log.Info().
		Str("dataset_id", id).
		Int("rows", len(ds.Rows)).
		Str("encoding", ds.SourceEncoding).
		Msg("Dataset uploaded")

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"dataset_id": id,
		"name":       ds.Name,
		"row_count":  len(ds.Rows),
		"encoding":   ds.SourceEncoding,
		"periods":    ds.Periods(),
		"report":     report,
	})
}

// GenerateSample handles POST /api/datasets/sample.
// Optional ?rows= and ?seed= control the generator.
func (h *DatasetsHandler) GenerateSample(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows := sample.DefaultRows
	if v := r.URL.Query().Get("rows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			middleware.WriteError(w, http.StatusBadRequest, "rows must be a positive integer")
			return
		}
		rows = n
	}

	var seed int64 = 1
	if v := r.URL.Query().Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "seed must be an integer")
			return
		}
		seed = n
	}

	ds := sample.Generate(rows, seed)
	id, err := h.datasets.Save(ctx, ds)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to store sample dataset")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store dataset")
		return
	}

	h.log.Info().Str("dataset_id", id).Int("rows", rows).Int64("seed", seed).Msg("Sample dataset generated")

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"dataset_id": id,
		"name":       ds.Name,
		"row_count":  len(ds.Rows),
		"periods":    ds.Periods(),
	})
}

// List handles GET /api/datasets.
func (h *DatasetsHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.datasets.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list datasets")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list datasets")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"datasets": summaries,
		"count":    len(summaries),
	})
}

// Get handles GET /api/datasets/{id}.
func (h *DatasetsHandler) Get(w http.ResponseWriter, r *http.Request, datasetID string) {
	ds, err := h.datasets.Get(r.Context(), datasetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Dataset not found")
			return
		}
		h.log.Error().Err(err).Str("dataset_id", datasetID).Msg("Failed to load dataset")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load dataset")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, ds)
}

// Delete handles DELETE /api/datasets/{id}.
func (h *DatasetsHandler) Delete(w http.ResponseWriter, r *http.Request, datasetID string) {
	if err := h.datasets.Delete(r.Context(), datasetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Dataset not found")
			return
		}
		h.log.Error().Err(err).Str("dataset_id", datasetID).Msg("Failed to delete dataset")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete dataset")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
