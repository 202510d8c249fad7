package charts

import (
	"invoice-insight/internal/analytics"
	"invoice-insight/internal/domain"
)

// histogramBins matches the bin count of the quality dashboard's amount
// distributions.
const histogramBins = 30

// Histogram is an equal-width binning of one numeric field. Edges has one
// more element than Counts.
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []int     `json:"counts"`
}

// QualityCharts are the clean-subset visualizations of the quality tab.
type QualityCharts struct {
	SupplyHistogram *Histogram `json:"supply_histogram"`
	TaxHistogram    *Histogram `json:"tax_histogram"`
	CleanCount      int        `json:"clean_count"`
}

// QualityHistograms bins the supply and tax amounts of the filter's clean
// subset into 30 equal-width buckets each.
func QualityHistograms(res *analytics.QualityResult) *QualityCharts {
	return &QualityCharts{
		SupplyHistogram: histogram(supplyOf(res.Clean), histogramBins),
		TaxHistogram:    histogram(taxOf(res.Clean), histogramBins),
		CleanCount:      len(res.Clean),
	}
}

// histogram bins values into equal-width buckets over [min, max]. Constant
// or empty input collapses to a single bucket.
func histogram(values []float64, bins int) *Histogram {
	if len(values) == 0 {
		return &Histogram{Edges: []float64{0, 0}, Counts: []int{0}}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return &Histogram{Edges: []float64{lo, hi}, Counts: []int{len(values)}}
	}

	h := &Histogram{
		Edges:  make([]float64, bins+1),
		Counts: make([]int, bins),
	}
	width := (hi - lo) / float64(bins)
	for i := 0; i <= bins; i++ {
		h.Edges[i] = lo + width*float64(i)
	}
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		h.Counts[idx]++
	}
	return h
}

func supplyOf(rows []domain.Transaction) []float64 {
	out := make([]float64, 0, len(rows))
	for _, tx := range rows {
		if tx.SupplyAmount != nil {
			out = append(out, float64(*tx.SupplyAmount))
		}
	}
	return out
}

func taxOf(rows []domain.Transaction) []float64 {
	out := make([]float64, 0, len(rows))
	for _, tx := range rows {
		if tx.TaxAmount != nil {
			out = append(out, float64(*tx.TaxAmount))
		}
	}
	return out
}
