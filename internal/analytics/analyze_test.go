package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	ds := makeDataset(uniformSales(120, 100_000, 500_000, 30))

	res, err := Analyze(ds, 0.05)
	require.NoError(t, err)
	require.NotNil(t, res.KPIs)
	require.NotNil(t, res.Detection)
	require.NotNil(t, res.Risk)
	require.NotNil(t, res.Quality)
	require.NotNil(t, res.Stats)

	assert.Equal(t, 120, res.KPIs.TotalCount)
	assert.Equal(t, 6, res.Detection.AnomalyCount)
	assert.Equal(t, 6, res.Risk.AnomalyCount)
	// The model's labels and the quality filter's fences are independent
	// definitions; the model always labels its quota, the fences may not
	// remove anything.
	assert.Equal(t, 120, res.Quality.Summary.OriginalCount)
}

func TestAnalyze_BadContamination(t *testing.T) {
	ds := makeDataset(uniformSales(50, 100_000, 500_000, 31))

	_, err := Analyze(ds, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contamination")
}
