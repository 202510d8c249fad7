// Package charts shapes analytical output into chart-ready series for the
// dashboard frontend. It contains no analytical logic of its own.
package charts

import (
	"sort"

	"invoice-insight/internal/analytics"
	"invoice-insight/internal/domain"
)

// TrendSeries is the monthly trend chart: supply sums, tax sums and
// transaction counts per type, each slice aligned with Periods.
type TrendSeries struct {
	Periods []string `json:"periods"`

	SupplyByType map[domain.TransactionType][]int64 `json:"supply_by_type"`
	TaxByType    map[domain.TransactionType][]int64 `json:"tax_by_type"`
	CountByType  map[domain.TransactionType][]int   `json:"count_by_type"`
}

// MonthlyTrend aggregates the table per period and type. Periods come out
// sorted; every extended type has a slice even when it never occurs, and
// types outside the extended set (lenient validation admits them) get one
// on first occurrence.
func MonthlyTrend(ds *domain.Dataset) *TrendSeries {
	periods := ds.Periods()
	index := make(map[string]int, len(periods))
	for i, p := range periods {
		index[p] = i
	}

	ts := &TrendSeries{
		Periods:      periods,
		SupplyByType: make(map[domain.TransactionType][]int64),
		TaxByType:    make(map[domain.TransactionType][]int64),
		CountByType:  make(map[domain.TransactionType][]int),
	}
	for _, t := range domain.ExtendedTypes {
		ts.SupplyByType[t] = make([]int64, len(periods))
		ts.TaxByType[t] = make([]int64, len(periods))
		ts.CountByType[t] = make([]int, len(periods))
	}

	for _, tx := range ds.Rows {
		i, ok := index[tx.Period]
		if !ok {
			continue
		}
		if _, seen := ts.CountByType[tx.Type]; !seen {
			ts.SupplyByType[tx.Type] = make([]int64, len(periods))
			ts.TaxByType[tx.Type] = make([]int64, len(periods))
			ts.CountByType[tx.Type] = make([]int, len(periods))
		}
		ts.CountByType[tx.Type][i]++
		if tx.SupplyAmount != nil {
			ts.SupplyByType[tx.Type][i] += *tx.SupplyAmount
		}
		if tx.TaxAmount != nil {
			ts.TaxByType[tx.Type][i] += *tx.TaxAmount
		}
	}
	return ts
}

// Distribution is the type/form composition of the table.
type Distribution struct {
	TypeCounts map[domain.TransactionType]int   `json:"type_counts"`
	TypeSupply map[domain.TransactionType]int64 `json:"type_supply"`
	FormCounts map[domain.IssuanceForm]int      `json:"form_counts"`
}

// ComputeDistribution counts rows per type and form.
func ComputeDistribution(ds *domain.Dataset) *Distribution {
	d := &Distribution{
		TypeCounts: make(map[domain.TransactionType]int),
		TypeSupply: make(map[domain.TransactionType]int64),
		FormCounts: make(map[domain.IssuanceForm]int),
	}
	for _, t := range domain.ExtendedTypes {
		d.TypeCounts[t] = 0
		d.TypeSupply[t] = 0
	}
	for _, f := range domain.Forms {
		d.FormCounts[f] = 0
	}
	for _, tx := range ds.Rows {
		d.TypeCounts[tx.Type]++
		d.FormCounts[tx.Form]++
		if tx.SupplyAmount != nil {
			d.TypeSupply[tx.Type] += *tx.SupplyAmount
		}
	}
	return d
}

// AccountTotal is one bar of the account-category charts.
type AccountTotal struct {
	Category    string `json:"category"`
	SupplyTotal int64  `json:"supply_total"`
	TaxTotal    int64  `json:"tax_total"`
	Count       int    `json:"count"`
}

// TopAccounts returns the n account categories with the largest supply
// totals, largest first. Rows without a category are skipped.
func TopAccounts(ds *domain.Dataset, n int) []AccountTotal {
	totals := accountTotals(ds.Rows)
	if n < len(totals) {
		totals = totals[:n]
	}
	return totals
}

// AccountsByType breaks the account totals down per transaction type, each
// list sorted by supply total.
func AccountsByType(ds *domain.Dataset) map[domain.TransactionType][]AccountTotal {
	byType := make(map[domain.TransactionType][]domain.Transaction)
	for _, tx := range ds.Rows {
		byType[tx.Type] = append(byType[tx.Type], tx)
	}
	out := make(map[domain.TransactionType][]AccountTotal, len(byType))
	for t, rows := range byType {
		out[t] = accountTotals(rows)
	}
	return out
}

func accountTotals(rows []domain.Transaction) []AccountTotal {
	acc := make(map[string]*AccountTotal)
	for _, tx := range rows {
		if tx.AccountCategory == "" {
			continue
		}
		at, ok := acc[tx.AccountCategory]
		if !ok {
			at = &AccountTotal{Category: tx.AccountCategory}
			acc[tx.AccountCategory] = at
		}
		at.Count++
		if tx.SupplyAmount != nil {
			at.SupplyTotal += *tx.SupplyAmount
		}
		if tx.TaxAmount != nil {
			at.TaxTotal += *tx.TaxAmount
		}
	}

	out := make([]AccountTotal, 0, len(acc))
	for _, at := range acc {
		out = append(out, *at)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SupplyTotal != out[j].SupplyTotal {
			return out[i].SupplyTotal > out[j].SupplyTotal
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Comparison is the grouped-bar pivot of supply totals: one row per period,
// one column per type, Supply[i][j] for Periods[i] and Types[j].
type Comparison struct {
	Periods []string                 `json:"periods"`
	Types   []domain.TransactionType `json:"types"`
	Supply  [][]int64                `json:"supply"`
}

// MonthlyComparison pivots supply totals by period and type.
func MonthlyComparison(ds *domain.Dataset) *Comparison {
	periods := ds.Periods()
	typeIndex := make(map[domain.TransactionType]int, len(domain.ExtendedTypes))
	for j, t := range domain.ExtendedTypes {
		typeIndex[t] = j
	}
	periodIndex := make(map[string]int, len(periods))
	supply := make([][]int64, len(periods))
	for i, p := range periods {
		periodIndex[p] = i
		supply[i] = make([]int64, len(domain.ExtendedTypes))
	}

	for _, tx := range ds.Rows {
		i, ok := periodIndex[tx.Period]
		if !ok {
			continue
		}
		j, ok := typeIndex[tx.Type]
		if !ok || tx.SupplyAmount == nil {
			continue
		}
		supply[i][j] += *tx.SupplyAmount
	}

	return &Comparison{
		Periods: periods,
		Types:   append([]domain.TransactionType{}, domain.ExtendedTypes...),
		Supply:  supply,
	}
}

// HighlightEntry is one highlighted transaction.
type HighlightEntry struct {
	Period string                 `json:"period"`
	Type   domain.TransactionType `json:"type"`
	Form   domain.IssuanceForm    `json:"form"`
	Supply int64                  `json:"supply"`
	Tax    int64                  `json:"tax"`
}

// Highlights are the headline transactions of the table: the largest and
// smallest invoices, and the above-average segment.
type Highlights struct {
	Max *HighlightEntry `json:"max,omitempty"`
	Min *HighlightEntry `json:"min,omitempty"`

	AverageSupply     float64 `json:"average_supply"`
	AboveAverageCount int     `json:"above_average_count"`
	AboveAverageMean  float64 `json:"above_average_mean"`
}

// ComputeHighlights scans the complete rows for extremes. An empty or
// amount-less table returns zero highlights with nil entries.
func ComputeHighlights(ds *domain.Dataset) *Highlights {
	h := &Highlights{}

	var complete []domain.Transaction
	for _, tx := range ds.Rows {
		if tx.Complete() {
			complete = append(complete, tx)
		}
	}
	if len(complete) == 0 {
		return h
	}

	maxTx, minTx := complete[0], complete[0]
	var total int64
	for _, tx := range complete {
		total += *tx.SupplyAmount
		if *tx.SupplyAmount > *maxTx.SupplyAmount {
			maxTx = tx
		}
		if *tx.SupplyAmount < *minTx.SupplyAmount {
			minTx = tx
		}
	}
	h.Max = entryFor(maxTx)
	h.Min = entryFor(minTx)
	h.AverageSupply = float64(total) / float64(len(complete))

	var aboveSum int64
	for _, tx := range complete {
		if float64(*tx.SupplyAmount) > h.AverageSupply {
			h.AboveAverageCount++
			aboveSum += *tx.SupplyAmount
		}
	}
	if h.AboveAverageCount > 0 {
		h.AboveAverageMean = float64(aboveSum) / float64(h.AboveAverageCount)
	}
	return h
}

func entryFor(tx domain.Transaction) *HighlightEntry {
	return &HighlightEntry{
		Period: tx.Period,
		Type:   tx.Type,
		Form:   tx.Form,
		Supply: *tx.SupplyAmount,
		Tax:    *tx.TaxAmount,
	}
}

// ScatterPoint is one marker of the anomaly scatter plot.
type ScatterPoint struct {
	Supply int64 `json:"supply"`
	Tax    int64 `json:"tax"`
}

// Scatter separates the labeled table into normal and anomalous point
// clouds over the (supply, tax) plane.
type Scatter struct {
	Normal    []ScatterPoint `json:"normal"`
	Anomalous []ScatterPoint `json:"anomalous"`
}

// AnomalyScatter projects a detection result onto the scatter plot. Rows
// missing either amount have no position and are left out.
func AnomalyScatter(res *analytics.DetectionResult) *Scatter {
	s := &Scatter{Normal: []ScatterPoint{}, Anomalous: []ScatterPoint{}}
	for _, row := range res.Rows {
		if !row.Complete() {
			continue
		}
		p := ScatterPoint{Supply: *row.SupplyAmount, Tax: *row.TaxAmount}
		if row.Anomalous {
			s.Anomalous = append(s.Anomalous, p)
		} else {
			s.Normal = append(s.Normal, p)
		}
	}
	return s
}
