package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"invoice-insight/internal/domain"
)

func TestComputeKPIs(t *testing.T) {
	rows := []domain.Transaction{
		tx("2024-01", domain.TypeSale, domain.FormElectronic, 100_000, 10_000),
		tx("2024-01", domain.TypeSale, domain.FormElectronic, 300_000, 30_000),
		tx("2024-02", domain.TypePurchase, domain.FormPaper, 200_000, 20_000),
		tx("2024-02", domain.TypeExpense, domain.FormElectronic, 50_000, 5_000),
	}
	k := ComputeKPIs(makeDataset(rows))

	assert.Equal(t, 4, k.TotalCount)
	assert.Equal(t, int64(400_000), k.TotalsByType[domain.TypeSale])
	assert.Equal(t, int64(200_000), k.TotalsByType[domain.TypePurchase])
	assert.Equal(t, int64(50_000), k.TotalsByType[domain.TypeExpense])
	assert.Equal(t, int64(0), k.TotalsByType[domain.TypeRevenue])
	assert.Equal(t, 2, k.CountsByType[domain.TypeSale])
	assert.Equal(t, 0, k.CountsByType[domain.TypeRevenue])

	assert.InDelta(t, 75.0, k.ElectronicRatio, 1e-9)
	assert.Equal(t, int64(300_000), k.MaxSupply)
	assert.Equal(t, int64(50_000), k.MinSupply)
	assert.InDelta(t, 16_250, k.AvgTax, 1e-9)
	assert.Greater(t, k.SupplyStdDev, 0.0)
}

func TestComputeKPIs_Empty(t *testing.T) {
	k := ComputeKPIs(makeDataset(nil))

	assert.Zero(t, k.TotalCount)
	assert.Zero(t, k.ElectronicRatio)
	assert.Zero(t, k.MaxSupply)
	assert.Zero(t, k.MinSupply)
	assert.Zero(t, k.SupplyStdDev)
	assert.Zero(t, k.AvgTax)

	// Every type key exists even before any rows arrive.
	for _, tt := range domain.ExtendedTypes {
		assert.Contains(t, k.TotalsByType, tt)
		assert.Contains(t, k.CountsByType, tt)
	}
}

func TestComputeKPIs_NilAmountsSkipped(t *testing.T) {
	rows := []domain.Transaction{
		tx("2024-01", domain.TypeSale, domain.FormElectronic, 100_000, 10_000),
		{Period: "2024-01", Type: domain.TypeSale, Form: domain.FormPaper},
	}
	k := ComputeKPIs(makeDataset(rows))

	assert.Equal(t, 2, k.TotalCount)
	assert.Equal(t, 2, k.CountsByType[domain.TypeSale])
	assert.Equal(t, int64(100_000), k.TotalsByType[domain.TypeSale])
	assert.InDelta(t, 10_000, k.AvgTax, 1e-9)
}
