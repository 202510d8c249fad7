// Package sample generates synthetic tax-invoice datasets for demos and
// tests. Generation is deterministic for a given seed.
package sample

import (
	"fmt"
	"math/rand"

	"invoice-insight/internal/analytics"
	"invoice-insight/internal/domain"
)

// DefaultRows is the dataset size the dashboard seeds itself with.
const DefaultRows = 500

// electronicShare is the fraction of invoices issued electronically.
const electronicShare = 0.8

// amountRange is the per-type supply amount band, in won.
type amountRange struct {
	lo, hi int64
}

var supplyRanges = map[domain.TransactionType]amountRange{
	domain.TypeSale:     {100_000, 5_000_000},
	domain.TypePurchase: {50_000, 3_000_000},
	domain.TypeExpense:  {10_000, 1_000_000},
	domain.TypeRevenue:  {50_000, 2_000_000},
}

// typeWeights drive the draw of a transaction type; sales and purchases
// dominate a typical invoice ledger.
var typeWeights = []struct {
	t domain.TransactionType
	w float64
}{
	{domain.TypeSale, 0.40},
	{domain.TypePurchase, 0.30},
	{domain.TypeExpense, 0.20},
	{domain.TypeRevenue, 0.10},
}

var accountPools = map[domain.TransactionType][]string{
	domain.TypeSale:     {"Product Sales", "Service Revenue", "Consulting Fees"},
	domain.TypePurchase: {"Raw Materials", "Office Supplies", "Equipment"},
	domain.TypeExpense:  {"Rent", "Utilities", "Travel", "Employee Welfare"},
	domain.TypeRevenue:  {"Interest Income", "Commission", "Rental Income"},
}

// Generate produces n transactions spread over the twelve months of 2024.
// Tax is always 10% of supply. The same (n, seed) pair always produces the
// same dataset.
func Generate(n int, seed int64) *domain.Dataset {
	rng := rand.New(rand.NewSource(seed))

	ds := &domain.Dataset{
		Name: fmt.Sprintf("sample-%d", n),
		Columns: append(append([]string{}, analytics.RequiredColumns...),
			analytics.ColAccountCategory),
		CoercionFailures: map[string]int{},
		Rows:             make([]domain.Transaction, 0, n),
	}

	for i := 0; i < n; i++ {
		t := drawType(rng)
		r := supplyRanges[t]
		supply := r.lo + rng.Int63n(r.hi-r.lo+1)

		form := domain.FormPaper
		if rng.Float64() < electronicShare {
			form = domain.FormElectronic
		}

		pool := accountPools[t]
		ds.Rows = append(ds.Rows, domain.Transaction{
			Period:          fmt.Sprintf("2024-%02d", rng.Intn(12)+1),
			Type:            t,
			Form:            form,
			SupplyAmount:    domain.Int64Ptr(supply),
			TaxAmount:       domain.Int64Ptr(supply / 10),
			AccountCategory: pool[rng.Intn(len(pool))],
		})
	}

	return ds
}

func drawType(rng *rand.Rand) domain.TransactionType {
	v := rng.Float64()
	acc := 0.0
	for _, tw := range typeWeights {
		acc += tw.w
		if v < acc {
			return tw.t
		}
	}
	return typeWeights[len(typeWeights)-1].t
}
