// Package analytics implements the anomaly detection and data-quality core:
// schema validation, KPI aggregation, the isolation-forest outlier model,
// anomaly risk scoring, and the rule-based quality filter. All operations are
// pure functions of the input dataset plus explicit parameters.
package analytics

import (
	"math"
	"sort"

	"invoice-insight/internal/domain"
)

func sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

// stdDev is the sample standard deviation. Fewer than two values yields 0
// rather than NaN so degenerate inputs stay representable.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

func minMax(values []float64) (min, max float64) {
	if len(values) == 0 {
		return 0, 0
	}
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// quantile returns the q-th quantile of values using linear interpolation
// between order statistics (the same convention pandas defaults to, so the
// IQR fences match the original analysis).
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// supplyValues extracts the supply amounts that survived coercion.
func supplyValues(rows []domain.Transaction) []float64 {
	out := make([]float64, 0, len(rows))
	for _, tx := range rows {
		if tx.SupplyAmount != nil {
			out = append(out, float64(*tx.SupplyAmount))
		}
	}
	return out
}

// taxValues extracts the tax amounts that survived coercion.
func taxValues(rows []domain.Transaction) []float64 {
	out := make([]float64, 0, len(rows))
	for _, tx := range rows {
		if tx.TaxAmount != nil {
			out = append(out, float64(*tx.TaxAmount))
		}
	}
	return out
}
