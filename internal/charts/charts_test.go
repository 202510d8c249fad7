package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-insight/internal/analytics"
	"invoice-insight/internal/domain"
)

func row(period string, t domain.TransactionType, f domain.IssuanceForm, supply, tax int64, account string) domain.Transaction {
	return domain.Transaction{
		Period:          period,
		Type:            t,
		Form:            f,
		SupplyAmount:    domain.Int64Ptr(supply),
		TaxAmount:       domain.Int64Ptr(tax),
		AccountCategory: account,
	}
}

func fixtureDataset() *domain.Dataset {
	return &domain.Dataset{
		ID:      "fixture",
		Columns: append([]string{}, analytics.RequiredColumns...),
		Rows: []domain.Transaction{
			row("2024-01", domain.TypeSale, domain.FormElectronic, 1_000_000, 100_000, "Product Sales"),
			row("2024-01", domain.TypeSale, domain.FormPaper, 400_000, 40_000, "Consulting Fees"),
			row("2024-01", domain.TypePurchase, domain.FormElectronic, 300_000, 30_000, "Raw Materials"),
			row("2024-02", domain.TypeSale, domain.FormElectronic, 2_000_000, 200_000, "Product Sales"),
			row("2024-02", domain.TypeExpense, domain.FormPaper, 100_000, 10_000, "Rent"),
		},
	}
}

func TestMonthlyTrend(t *testing.T) {
	ts := MonthlyTrend(fixtureDataset())

	require.Equal(t, []string{"2024-01", "2024-02"}, ts.Periods)
	assert.Equal(t, []int64{1_400_000, 2_000_000}, ts.SupplyByType[domain.TypeSale])
	assert.Equal(t, []int64{140_000, 200_000}, ts.TaxByType[domain.TypeSale])
	assert.Equal(t, []int{2, 1}, ts.CountByType[domain.TypeSale])
	assert.Equal(t, []int64{300_000, 0}, ts.SupplyByType[domain.TypePurchase])
	assert.Equal(t, []int{0, 0}, ts.CountByType[domain.TypeRevenue])
}

func TestMonthlyTrend_UnknownType(t *testing.T) {
	ds := fixtureDataset()
	ds.Rows = append(ds.Rows, row("2024-02", domain.TransactionType("REFUND"), domain.FormElectronic, 50_000, 5_000, "Returns"))

	ts := MonthlyTrend(ds)

	assert.Equal(t, []int{0, 1}, ts.CountByType[domain.TransactionType("REFUND")])
	assert.Equal(t, []int64{0, 50_000}, ts.SupplyByType[domain.TransactionType("REFUND")])
	assert.Equal(t, []int64{0, 5_000}, ts.TaxByType[domain.TransactionType("REFUND")])
	assert.Equal(t, []int{2, 1}, ts.CountByType[domain.TypeSale])
}

func TestComputeDistribution(t *testing.T) {
	d := ComputeDistribution(fixtureDataset())

	assert.Equal(t, 3, d.TypeCounts[domain.TypeSale])
	assert.Equal(t, 1, d.TypeCounts[domain.TypePurchase])
	assert.Equal(t, 0, d.TypeCounts[domain.TypeRevenue])
	assert.Equal(t, int64(3_400_000), d.TypeSupply[domain.TypeSale])
	assert.Equal(t, 3, d.FormCounts[domain.FormElectronic])
	assert.Equal(t, 2, d.FormCounts[domain.FormPaper])
}

func TestTopAccounts(t *testing.T) {
	top := TopAccounts(fixtureDataset(), 2)

	require.Len(t, top, 2)
	assert.Equal(t, "Product Sales", top[0].Category)
	assert.Equal(t, int64(3_000_000), top[0].SupplyTotal)
	assert.Equal(t, 2, top[0].Count)
	assert.Equal(t, "Consulting Fees", top[1].Category)
}

func TestAccountsByType(t *testing.T) {
	byType := AccountsByType(fixtureDataset())

	require.Len(t, byType[domain.TypeSale], 2)
	assert.Equal(t, "Product Sales", byType[domain.TypeSale][0].Category)
	require.Len(t, byType[domain.TypePurchase], 1)
	assert.Equal(t, "Raw Materials", byType[domain.TypePurchase][0].Category)
}

func TestMonthlyComparison(t *testing.T) {
	c := MonthlyComparison(fixtureDataset())

	require.Equal(t, []string{"2024-01", "2024-02"}, c.Periods)
	require.Equal(t, domain.ExtendedTypes, c.Types)

	// Supply[period][type] in ExtendedTypes order.
	assert.Equal(t, int64(1_400_000), c.Supply[0][0])
	assert.Equal(t, int64(300_000), c.Supply[0][1])
	assert.Equal(t, int64(2_000_000), c.Supply[1][0])
	assert.Equal(t, int64(100_000), c.Supply[1][2])
}

func TestComputeHighlights(t *testing.T) {
	h := ComputeHighlights(fixtureDataset())

	require.NotNil(t, h.Max)
	assert.Equal(t, int64(2_000_000), h.Max.Supply)
	assert.Equal(t, "2024-02", h.Max.Period)
	require.NotNil(t, h.Min)
	assert.Equal(t, int64(100_000), h.Min.Supply)

	assert.InDelta(t, 760_000, h.AverageSupply, 1e-9)
	assert.Equal(t, 2, h.AboveAverageCount)
	assert.InDelta(t, 1_500_000, h.AboveAverageMean, 1e-9)
}

func TestComputeHighlights_Empty(t *testing.T) {
	h := ComputeHighlights(&domain.Dataset{})
	assert.Nil(t, h.Max)
	assert.Nil(t, h.Min)
	assert.Zero(t, h.AboveAverageCount)
}

func TestAnomalyScatter(t *testing.T) {
	res := &analytics.DetectionResult{
		Rows: []domain.LabeledTransaction{
			{Transaction: row("2024-01", domain.TypeSale, domain.FormElectronic, 100, 10, "")},
			{Transaction: row("2024-01", domain.TypeSale, domain.FormElectronic, 200, 20, ""), Anomalous: true},
			{Transaction: domain.Transaction{Period: "2024-01", Type: domain.TypeSale, Form: domain.FormPaper}},
		},
	}
	s := AnomalyScatter(res)

	require.Len(t, s.Normal, 1)
	require.Len(t, s.Anomalous, 1)
	assert.Equal(t, ScatterPoint{Supply: 200, Tax: 20}, s.Anomalous[0])
}

func TestHistogram(t *testing.T) {
	h := histogram([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 5)

	require.Len(t, h.Edges, 6)
	require.Len(t, h.Counts, 5)
	assert.Equal(t, 0.0, h.Edges[0])
	assert.Equal(t, 9.0, h.Edges[5])

	total := 0
	for _, c := range h.Counts {
		total += c
	}
	assert.Equal(t, 10, total)
}

func TestHistogram_Degenerate(t *testing.T) {
	empty := histogram(nil, 30)
	assert.Equal(t, []int{0}, empty.Counts)

	constant := histogram([]float64{5, 5, 5}, 30)
	assert.Equal(t, []int{3}, constant.Counts)
	assert.Equal(t, []float64{5, 5}, constant.Edges)
}

func TestQualityHistograms(t *testing.T) {
	ds := fixtureDataset()
	res := analytics.AnalyzeQuality(ds)

	qc := QualityHistograms(res)
	require.NotNil(t, qc.SupplyHistogram)
	require.NotNil(t, qc.TaxHistogram)
	assert.Equal(t, res.Summary.CleanCount, qc.CleanCount)
}
