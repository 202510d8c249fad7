package analytics

import "invoice-insight/internal/domain"

// KPIs are the scalar summary indicators shown on the dashboard header.
// Sums are raw arithmetic sums with no outlier exclusion; the quality filter
// reports the refined picture separately. All ratios and statistics over an
// empty table are zero, never NaN or an error.
type KPIs struct {
	TotalCount int `json:"total_count"`

	TotalsByType map[domain.TransactionType]int64 `json:"totals_by_type"`
	CountsByType map[domain.TransactionType]int   `json:"counts_by_type"`

	// ElectronicRatio is the percentage (0-100) of rows issued electronically.
	ElectronicRatio float64 `json:"electronic_ratio"`

	MaxSupply    int64   `json:"max_supply"`
	MinSupply    int64   `json:"min_supply"`
	SupplyStdDev float64 `json:"supply_std_dev"`
	AvgTax       float64 `json:"avg_tax"`
}

// ComputeKPIs aggregates the validated table into dashboard indicators.
func ComputeKPIs(ds *domain.Dataset) *KPIs {
	k := &KPIs{
		TotalCount:   len(ds.Rows),
		TotalsByType: make(map[domain.TransactionType]int64),
		CountsByType: make(map[domain.TransactionType]int),
	}
	for _, t := range domain.ExtendedTypes {
		k.TotalsByType[t] = 0
		k.CountsByType[t] = 0
	}
	if len(ds.Rows) == 0 {
		return k
	}

	electronic := 0
	for _, tx := range ds.Rows {
		k.CountsByType[tx.Type]++
		if tx.SupplyAmount != nil {
			k.TotalsByType[tx.Type] += *tx.SupplyAmount
		}
		if tx.Form == domain.FormElectronic {
			electronic++
		}
	}
	k.ElectronicRatio = float64(electronic) / float64(len(ds.Rows)) * 100

	supply := supplyValues(ds.Rows)
	min, max := minMax(supply)
	k.MinSupply = int64(min)
	k.MaxSupply = int64(max)
	k.SupplyStdDev = stdDev(supply)
	k.AvgTax = mean(taxValues(ds.Rows))

	return k
}
