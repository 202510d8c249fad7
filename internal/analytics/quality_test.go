package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-insight/internal/domain"
)

func TestAnalyzeQuality_FencesKnownOutliers(t *testing.T) {
	rows := uniformSales(100, 100_000, 500_000, 20)
	for i := 0; i < 5; i++ {
		rows = append(rows, tx("2024-03", domain.TypeSale, domain.FormElectronic, 10_000_000, 1_000_000))
	}
	res := AnalyzeQuality(makeDataset(rows))

	assert.Equal(t, 105, res.Summary.OriginalCount)
	assert.Equal(t, 100, res.Summary.CleanCount)
	assert.Equal(t, 5, res.Summary.RemovedCount)
	assert.Equal(t, 5, res.Summary.OutlierRowCount)
	assert.Zero(t, res.Summary.MissingRowCount)
	assert.InDelta(t, 100.0*100/105, res.Summary.QualityRatio, 1e-9)

	require.Len(t, res.Fields, 2)
	supply := res.Fields[0]
	assert.Equal(t, ColSupplyAmount, supply.Field)
	assert.Equal(t, 5, supply.OutlierCount)
	assert.Less(t, supply.UpperBound, 10_000_000.0)
}

// Rerunning the filter on its own clean output removes nothing when the
// clean rows are well inside the original fences.
func TestAnalyzeQuality_StableOnCleanOutput(t *testing.T) {
	rows := uniformSales(100, 100_000, 500_000, 21)
	for i := 0; i < 5; i++ {
		rows = append(rows, tx("2024-03", domain.TypeSale, domain.FormElectronic, 10_000_000, 1_000_000))
	}
	first := AnalyzeQuality(makeDataset(rows))
	require.Equal(t, 100, first.Summary.CleanCount)

	second := AnalyzeQuality(makeDataset(first.Clean))
	assert.Equal(t, 100, second.Summary.CleanCount)
	assert.Zero(t, second.Summary.RemovedCount)
}

func TestAnalyzeQuality_MissingRows(t *testing.T) {
	rows := uniformSales(50, 100_000, 500_000, 22)
	rows = append(rows,
		domain.Transaction{Period: "2024-03", Type: domain.TypeSale, Form: domain.FormElectronic},
		domain.Transaction{Type: domain.TypeSale, Form: domain.FormPaper,
			SupplyAmount: domain.Int64Ptr(200_000), TaxAmount: domain.Int64Ptr(20_000)},
	)
	res := AnalyzeQuality(makeDataset(rows))

	assert.Equal(t, 2, res.Summary.MissingRowCount)
	assert.Equal(t, 50, res.Summary.CleanCount)
	assert.Equal(t, 1, res.Fields[0].MissingCount)
	assert.Equal(t, 1, res.Fields[1].MissingCount)
}

func TestAnalyzeQuality_Empty(t *testing.T) {
	res := AnalyzeQuality(makeDataset(nil))

	assert.Zero(t, res.Summary.OriginalCount)
	assert.Zero(t, res.Summary.CleanCount)
	assert.Zero(t, res.Summary.QualityRatio)
	assert.Len(t, res.Fields, 2)
	assert.Empty(t, res.Clean)
	assert.Equal(t, "No data to analyze.", res.Report)
}

func TestAnalyzeQuality_GroupedCleanStats(t *testing.T) {
	rows := []domain.Transaction{
		tx("2024-01", domain.TypeSale, domain.FormElectronic, 100_000, 10_000),
		tx("2024-01", domain.TypeSale, domain.FormElectronic, 120_000, 12_000),
		tx("2024-02", domain.TypePurchase, domain.FormPaper, 110_000, 11_000),
	}
	res := AnalyzeQuality(makeDataset(rows))

	require.Equal(t, 3, res.Summary.CleanCount)
	assert.Equal(t, 2, res.ByType[domain.TypeSale].Count)
	assert.Equal(t, int64(220_000), res.ByType[domain.TypeSale].SupplySum)
	assert.Equal(t, 1, res.ByForm[domain.FormPaper].Count)
	assert.Equal(t, 2, res.ByPeriod["2024-01"].Count)
}

func TestQualityReportContent(t *testing.T) {
	rows := uniformSales(100, 100_000, 500_000, 23)
	rows = append(rows, tx("2024-03", domain.TypeSale, domain.FormElectronic, 10_000_000, 1_000_000))
	res := AnalyzeQuality(makeDataset(rows))

	assert.Contains(t, res.Report, "## Data Quality Report")
	assert.Contains(t, res.Report, "### Outliers (1.5 x IQR)")
	assert.Contains(t, res.Report, "quality ratio")
	assert.Contains(t, res.Report, "SALE")
}
