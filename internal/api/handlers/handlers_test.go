package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-insight/internal/jobs"
	"invoice-insight/internal/jobs/inmemory"
	"invoice-insight/internal/sample"
	"invoice-insight/internal/store"
)

const validCSV = "period,transaction_type,issuance_form,supply_amount,tax_amount\n" +
	"2024-01,SALE,ELECTRONIC,1000000,100000\n" +
	"2024-02,PURCHASE,PAPER,500000,50000\n"

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestDatasetsHandler_Upload(t *testing.T) {
	datasets := store.New()
	h := NewDatasetsHandler(datasets, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets?name=jan.csv", strings.NewReader(validCSV))
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "jan.csv", body["name"])
	assert.Equal(t, float64(2), body["row_count"])

	id, _ := body["dataset_id"].(string)
	require.NotEmpty(t, id)
	ds, err := datasets.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, ds.Rows, 2)
}

func TestDatasetsHandler_UploadMissingColumn(t *testing.T) {
	h := NewDatasetsHandler(store.New(), zerolog.Nop())

	csv := "period,transaction_type,issuance_form,supply_amount\n2024-01,SALE,ELECTRONIC,100\n"
	req := httptest.NewRequest(http.MethodPost, "/api/datasets", strings.NewReader(csv))
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "tax_amount")
}

func TestDatasetsHandler_UploadStrictRejectsExpense(t *testing.T) {
	h := NewDatasetsHandler(store.New(), zerolog.Nop())

	csv := "period,transaction_type,issuance_form,supply_amount,tax_amount\n" +
		"2024-01,EXPENSE,ELECTRONIC,100,10\n"

	req := httptest.NewRequest(http.MethodPost, "/api/datasets?mode=strict", strings.NewReader(csv))
	rec := httptest.NewRecorder()
	h.Upload(rec, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "EXPENSE")

	// The same upload passes leniently.
	req = httptest.NewRequest(http.MethodPost, "/api/datasets", strings.NewReader(csv))
	rec = httptest.NewRecorder()
	h.Upload(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestDatasetsHandler_GenerateSample(t *testing.T) {
	datasets := store.New()
	h := NewDatasetsHandler(datasets, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets/sample?rows=200&seed=7", nil)
	rec := httptest.NewRecorder()
	h.GenerateSample(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(200), body["row_count"])
}

func TestDatasetsHandler_GetUnknown(t *testing.T) {
	h := NewDatasetsHandler(store.New(), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/nope", nil), "nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDatasetsHandler_Delete(t *testing.T) {
	datasets := store.New()
	id, err := datasets.Save(context.Background(), sample.Generate(10, 1))
	require.NoError(t, err)

	h := NewDatasetsHandler(datasets, zerolog.Nop())
	rec := httptest.NewRecorder()
	h.Delete(rec, httptest.NewRequest(http.MethodDelete, "/api/datasets/"+id, nil), id)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id, nil), id)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func seededDataset(t *testing.T, datasets *store.Store, rows int) string {
	t.Helper()
	id, err := datasets.Save(context.Background(), sample.Generate(rows, 11))
	require.NoError(t, err)
	return id
}

func TestAnalysisHandler_KPIs(t *testing.T) {
	datasets := store.New()
	id := seededDataset(t, datasets, 300)
	h := NewAnalysisHandler(datasets, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.KPIs(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/kpis", nil), id)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(300), body["total_count"])
}

func TestAnalysisHandler_KPIs_MonthFilter(t *testing.T) {
	datasets := store.New()
	id := seededDataset(t, datasets, 300)
	h := NewAnalysisHandler(datasets, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.KPIs(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/kpis?month=2024-03", nil), id)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Less(t, body["total_count"].(float64), float64(300))
}

func TestAnalysisHandler_Anomalies(t *testing.T) {
	datasets := store.New()
	id := seededDataset(t, datasets, 200)
	h := NewAnalysisHandler(datasets, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Anomalies(rec, httptest.NewRequest(http.MethodPost, "/api/datasets/"+id+"/anomalies?contamination=0.05", nil), id)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	detection := body["detection"].(map[string]interface{})
	assert.Equal(t, float64(10), detection["anomaly_count"])
	require.Contains(t, body, "risk")
	require.Contains(t, body, "scatter")
}

func TestAnalysisHandler_AnomaliesBadContamination(t *testing.T) {
	datasets := store.New()
	id := seededDataset(t, datasets, 50)
	h := NewAnalysisHandler(datasets, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Anomalies(rec, httptest.NewRequest(http.MethodPost, "/api/datasets/"+id+"/anomalies?contamination=1.5", nil), id)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "contamination")
}

func TestAnalysisHandler_Quality(t *testing.T) {
	datasets := store.New()
	id := seededDataset(t, datasets, 150)
	h := NewAnalysisHandler(datasets, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Quality(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/quality", nil), id)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Contains(t, body, "quality")
	require.Contains(t, body, "histograms")
}

func TestJobsHandler_EnqueueAndFetch(t *testing.T) {
	datasets := store.New()
	id := seededDataset(t, datasets, 120)

	jobStore := inmemory.NewStore()
	queue := inmemory.NewQueue(4, jobStore)
	ctx := context.Background()
	require.NoError(t, queue.Start(ctx, jobs.AnalyzeHandler(datasets, zerolog.Nop())))
	defer queue.Close()

	h := NewJobsHandler(datasets, jobStore, queue, zerolog.Nop())

	payload := `{"dataset_id":"` + id + `","contamination":0.05}`
	rec := httptest.NewRecorder()
	h.Enqueue(rec, httptest.NewRequest(http.MethodPost, "/api/analyses", strings.NewReader(payload)))

	require.Equal(t, http.StatusAccepted, rec.Code)
	jobID := decodeBody(t, rec)["job_id"].(string)
	require.NotEmpty(t, jobID)

	require.Eventually(t, func() bool {
		job, err := jobStore.GetJob(ctx, jobID)
		return err == nil && job.Status == jobs.JobStatusCompleted
	}, 3*time.Second, 10*time.Millisecond)

	rec = httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/"+jobID, nil), jobID)
	require.Equal(t, http.StatusOK, rec.Code)

	var job jobs.AnalyzeDatasetJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, jobs.JobStatusCompleted, job.Status)
	require.NotNil(t, job.Result)
	assert.Equal(t, 120, job.Result.KPIs.TotalCount)
}

func TestJobsHandler_EnqueueUnknownDataset(t *testing.T) {
	jobStore := inmemory.NewStore()
	queue := inmemory.NewQueue(1, jobStore)
	defer queue.Close()

	h := NewJobsHandler(store.New(), jobStore, queue, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Enqueue(rec, httptest.NewRequest(http.MethodPost, "/api/analyses", strings.NewReader(`{"dataset_id":"nope"}`)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobsHandler_GetUnknown(t *testing.T) {
	h := NewJobsHandler(store.New(), inmemory.NewStore(), nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil), "nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
