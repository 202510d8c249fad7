package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"invoice-insight/internal/analytics"
	"invoice-insight/internal/api/middleware"
	"invoice-insight/internal/charts"
	"invoice-insight/internal/domain"
	"invoice-insight/internal/store"
)

// topAccountsDefault is how many account categories the accounts endpoint
// returns when ?limit= is absent.
const topAccountsDefault = 10

// AnalysisHandler serves the analytical views of one dataset. Every
// endpoint accepts ?month=YYYY-MM to restrict the table before the
// computation runs.
type AnalysisHandler struct {
	datasets *store.Store
	log      zerolog.Logger
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(datasets *store.Store, log zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{datasets: datasets, log: log}
}

// load fetches the dataset and applies the month filter, writing the error
// response itself when that fails.
func (h *AnalysisHandler) load(w http.ResponseWriter, r *http.Request, datasetID string) (*domain.Dataset, bool) {
	ds, err := h.datasets.Get(r.Context(), datasetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Dataset not found")
		} else {
			h.log.Error().Err(err).Str("dataset_id", datasetID).Msg("Failed to load dataset")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to load dataset")
		}
		return nil, false
	}
	return ds.FilterPeriod(r.URL.Query().Get("month")), true
}

// KPIs handles GET /api/datasets/{id}/kpis.
func (h *AnalysisHandler) KPIs(w http.ResponseWriter, r *http.Request, datasetID string) {
	ds, ok := h.load(w, r, datasetID)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, analytics.ComputeKPIs(ds))
}

// Trend handles GET /api/datasets/{id}/trend.
func (h *AnalysisHandler) Trend(w http.ResponseWriter, r *http.Request, datasetID string) {
	ds, ok := h.load(w, r, datasetID)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"trend":      charts.MonthlyTrend(ds),
		"comparison": charts.MonthlyComparison(ds),
	})
}

// Distribution handles GET /api/datasets/{id}/distribution.
func (h *AnalysisHandler) Distribution(w http.ResponseWriter, r *http.Request, datasetID string) {
	ds, ok := h.load(w, r, datasetID)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, charts.ComputeDistribution(ds))
}

// Accounts handles GET /api/datasets/{id}/accounts.
func (h *AnalysisHandler) Accounts(w http.ResponseWriter, r *http.Request, datasetID string) {
	ds, ok := h.load(w, r, datasetID)
	if !ok {
		return
	}

	limit := topAccountsDefault
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			middleware.WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"top":     charts.TopAccounts(ds, limit),
		"by_type": charts.AccountsByType(ds),
	})
}

// Highlights handles GET /api/datasets/{id}/highlights.
func (h *AnalysisHandler) Highlights(w http.ResponseWriter, r *http.Request, datasetID string) {
	ds, ok := h.load(w, r, datasetID)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, charts.ComputeHighlights(ds))
}

// Statistics handles GET /api/datasets/{id}/statistics.
func (h *AnalysisHandler) Statistics(w http.ResponseWriter, r *http.Request, datasetID string) {
	ds, ok := h.load(w, r, datasetID)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, analytics.ComputeDescriptiveStats(ds))
}

// Quality handles GET /api/datasets/{id}/quality.
func (h *AnalysisHandler) Quality(w http.ResponseWriter, r *http.Request, datasetID string) {
	ds, ok := h.load(w, r, datasetID)
	if !ok {
		return
	}
	res := analytics.AnalyzeQuality(ds)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"quality":    res,
		"histograms": charts.QualityHistograms(res),
	})
}

// Anomalies handles POST /api/datasets/{id}/anomalies. The contamination
// comes from ?contamination= and defaults to the model's standard setting.
func (h *AnalysisHandler) Anomalies(w http.ResponseWriter, r *http.Request, datasetID string) {
	ds, ok := h.load(w, r, datasetID)
	if !ok {
		return
	}

	contamination := analytics.DefaultContamination
	if v := r.URL.Query().Get("contamination"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "contamination must be a number")
			return
		}
		contamination = f
	}

	detection, err := analytics.DetectAnomalies(ds, contamination)
	if err != nil {
		var paramErr *domain.ParameterError
		if errors.As(err, &paramErr) {
			middleware.WriteError(w, http.StatusBadRequest, paramErr.Error())
			return
		}
		h.log.Error().Err(err).Str("dataset_id", datasetID).Msg("Anomaly detection failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Anomaly detection failed")
		return
	}

	risk := analytics.AssessRisk(detection)

	h.log.Info().
		Str("dataset_id", datasetID).
		Float64("contamination", contamination).
		Int("anomalies", detection.AnomalyCount).
		Float64("risk_score", risk.Score).
		Msg("Anomaly detection completed")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"detection": detection,
		"risk":      risk,
		"scatter":   charts.AnomalyScatter(detection),
	})
}
