package analytics

import (
	"math/rand"

	"invoice-insight/internal/domain"
)

// tx builds a complete transaction row for fixtures.
func tx(period string, t domain.TransactionType, f domain.IssuanceForm, supply, tax int64) domain.Transaction {
	return domain.Transaction{
		Period:       period,
		Type:         t,
		Form:         f,
		SupplyAmount: domain.Int64Ptr(supply),
		TaxAmount:    domain.Int64Ptr(tax),
	}
}

// makeDataset wraps rows in a dataset that carries the full strict schema.
func makeDataset(rows []domain.Transaction) *domain.Dataset {
	return &domain.Dataset{
		ID:      "test",
		Name:    "fixture",
		Columns: append([]string{}, RequiredColumns...),
		Rows:    rows,
	}
}

// uniformSales generates n Sale rows with supply amounts uniform in
// [lo, hi] and tax at 10%, deterministically for the given seed.
func uniformSales(n int, lo, hi int64, seed int64) []domain.Transaction {
	rng := rand.New(rand.NewSource(seed))
	rows := make([]domain.Transaction, 0, n)
	for i := 0; i < n; i++ {
		supply := lo + rng.Int63n(hi-lo+1)
		rows = append(rows, tx("2024-03", domain.TypeSale, domain.FormElectronic, supply, supply/10))
	}
	return rows
}
