package analytics

import "invoice-insight/internal/domain"

// GroupStats are the descriptive statistics of one group of transactions.
type GroupStats struct {
	Count      int     `json:"count"`
	SupplySum  int64   `json:"supply_sum"`
	SupplyMean float64 `json:"supply_mean"`
	SupplyStd  float64 `json:"supply_std"`
	SupplyMin  int64   `json:"supply_min"`
	SupplyMax  int64   `json:"supply_max"`
	TaxSum     int64   `json:"tax_sum"`
	TaxMean    float64 `json:"tax_mean"`
	TaxStd     float64 `json:"tax_std"`
}

func statsFor(rows []domain.Transaction) GroupStats {
	supply := supplyValues(rows)
	tax := taxValues(rows)
	min, max := minMax(supply)
	return GroupStats{
		Count:      len(rows),
		SupplySum:  int64(sum(supply)),
		SupplyMean: mean(supply),
		SupplyStd:  stdDev(supply),
		SupplyMin:  int64(min),
		SupplyMax:  int64(max),
		TaxSum:     int64(sum(tax)),
		TaxMean:    mean(tax),
		TaxStd:     stdDev(tax),
	}
}

// GroupByType buckets rows by transaction type and summarizes each bucket.
func GroupByType(rows []domain.Transaction) map[domain.TransactionType]GroupStats {
	buckets := make(map[domain.TransactionType][]domain.Transaction)
	for _, tx := range rows {
		buckets[tx.Type] = append(buckets[tx.Type], tx)
	}
	out := make(map[domain.TransactionType]GroupStats, len(buckets))
	for t, b := range buckets {
		out[t] = statsFor(b)
	}
	return out
}

// GroupByForm buckets rows by issuance form and summarizes each bucket.
func GroupByForm(rows []domain.Transaction) map[domain.IssuanceForm]GroupStats {
	buckets := make(map[domain.IssuanceForm][]domain.Transaction)
	for _, tx := range rows {
		buckets[tx.Form] = append(buckets[tx.Form], tx)
	}
	out := make(map[domain.IssuanceForm]GroupStats, len(buckets))
	for f, b := range buckets {
		out[f] = statsFor(b)
	}
	return out
}

// GroupByPeriod buckets rows by YYYY-MM period and summarizes each bucket.
func GroupByPeriod(rows []domain.Transaction) map[string]GroupStats {
	buckets := make(map[string][]domain.Transaction)
	for _, tx := range rows {
		buckets[tx.Period] = append(buckets[tx.Period], tx)
	}
	out := make(map[string]GroupStats, len(buckets))
	for p, b := range buckets {
		out[p] = statsFor(b)
	}
	return out
}

// DescriptiveStats is the advanced-statistics tab: the full table summarized
// by transaction type and by issuance form, with no filtering applied.
type DescriptiveStats struct {
	ByType map[domain.TransactionType]GroupStats `json:"by_type"`
	ByForm map[domain.IssuanceForm]GroupStats    `json:"by_form"`
}

// ComputeDescriptiveStats summarizes the raw table per category.
func ComputeDescriptiveStats(ds *domain.Dataset) *DescriptiveStats {
	return &DescriptiveStats{
		ByType: GroupByType(ds.Rows),
		ByForm: GroupByForm(ds.Rows),
	}
}
