package analytics

import (
	"fmt"
	"strings"

	"invoice-insight/internal/domain"
)

// iqrFenceFactor is the classic Tukey fence multiplier: a value is an
// outlier when it falls outside [Q1 - 1.5*IQR, Q3 + 1.5*IQR].
const iqrFenceFactor = 1.5

// FieldQuality is the per-field portion of the quality report.
type FieldQuality struct {
	Field        string  `json:"field"`
	MissingCount int     `json:"missing_count"`
	OutlierCount int     `json:"outlier_count"`
	Q1           float64 `json:"q1"`
	Q3           float64 `json:"q3"`
	LowerBound   float64 `json:"lower_bound"`
	UpperBound   float64 `json:"upper_bound"`
}

// QualitySummary is the headline of the quality analysis.
type QualitySummary struct {
	OriginalCount int `json:"original_count"`
	CleanCount    int `json:"clean_count"`
	RemovedCount  int `json:"removed_count"`
	// QualityRatio is CleanCount/OriginalCount as a percentage (0-100).
	QualityRatio    float64 `json:"quality_ratio"`
	MissingRowCount int     `json:"missing_row_count"`
	OutlierRowCount int     `json:"outlier_row_count"`
}

// QualityResult is the rule-based quality filter's full output. Its notion
// of "outlier" is the IQR fence, computed independently of the outlier
// model; the two are never reconciled here.
type QualityResult struct {
	Summary QualitySummary `json:"summary"`
	Fields  []FieldQuality `json:"fields"`

	Clean []domain.Transaction `json:"clean"`

	ByType   map[domain.TransactionType]GroupStats `json:"by_type"`
	ByForm   map[domain.IssuanceForm]GroupStats    `json:"by_form"`
	ByPeriod map[string]GroupStats                 `json:"by_period"`

	Report string `json:"report"`
}

// AnalyzeQuality applies the IQR rule per numeric field and the missingness
// rule per row to the original validated table. A row is unclean when any
// required field is missing or either numeric field is fenced out. The
// fences are computed on the input table, so re-running the filter on its
// own clean output can remove a few more rows as the fences tighten.
func AnalyzeQuality(ds *domain.Dataset) *QualityResult {
	res := &QualityResult{
		Summary: QualitySummary{OriginalCount: len(ds.Rows)},
	}
	if len(ds.Rows) == 0 {
		res.Fields = []FieldQuality{
			{Field: ColSupplyAmount},
			{Field: ColTaxAmount},
		}
		res.ByType = map[domain.TransactionType]GroupStats{}
		res.ByForm = map[domain.IssuanceForm]GroupStats{}
		res.ByPeriod = map[string]GroupStats{}
		res.Report = "No data to analyze."
		return res
	}

	supplyField := fieldQuality(ColSupplyAmount, supplyValues(ds.Rows), countNilSupply(ds.Rows))
	taxField := fieldQuality(ColTaxAmount, taxValues(ds.Rows), countNilTax(ds.Rows))

	supplyOut := 0
	taxOut := 0
	for _, tx := range ds.Rows {
		missing := rowMissing(tx)
		flagged := false
		if tx.SupplyAmount != nil && outsideFence(float64(*tx.SupplyAmount), supplyField) {
			supplyOut++
			flagged = true
		}
		if tx.TaxAmount != nil && outsideFence(float64(*tx.TaxAmount), taxField) {
			taxOut++
			flagged = true
		}
		switch {
		case missing:
			res.Summary.MissingRowCount++
		case flagged:
			res.Summary.OutlierRowCount++
		default:
			res.Clean = append(res.Clean, tx)
		}
	}
	supplyField.OutlierCount = supplyOut
	taxField.OutlierCount = taxOut
	res.Fields = []FieldQuality{supplyField, taxField}

	res.Summary.CleanCount = len(res.Clean)
	res.Summary.RemovedCount = res.Summary.OriginalCount - res.Summary.CleanCount
	res.Summary.QualityRatio = float64(res.Summary.CleanCount) / float64(res.Summary.OriginalCount) * 100

	res.ByType = GroupByType(res.Clean)
	res.ByForm = GroupByForm(res.Clean)
	res.ByPeriod = GroupByPeriod(res.Clean)
	res.Report = renderQualityReport(ds, res)
	return res
}

func fieldQuality(name string, values []float64, missing int) FieldQuality {
	fq := FieldQuality{Field: name, MissingCount: missing}
	if len(values) == 0 {
		return fq
	}
	fq.Q1 = quantile(values, 0.25)
	fq.Q3 = quantile(values, 0.75)
	iqr := fq.Q3 - fq.Q1
	fq.LowerBound = fq.Q1 - iqrFenceFactor*iqr
	fq.UpperBound = fq.Q3 + iqrFenceFactor*iqr
	return fq
}

func outsideFence(v float64, fq FieldQuality) bool {
	return v < fq.LowerBound || v > fq.UpperBound
}

// rowMissing reports whether any required field of the row is absent.
func rowMissing(tx domain.Transaction) bool {
	return tx.Period == "" || tx.Type == "" || tx.Form == "" || !tx.Complete()
}

func countNilSupply(rows []domain.Transaction) int {
	n := 0
	for _, tx := range rows {
		if tx.SupplyAmount == nil {
			n++
		}
	}
	return n
}

func countNilTax(rows []domain.Transaction) int {
	n := 0
	for _, tx := range rows {
		if tx.TaxAmount == nil {
			n++
		}
	}
	return n
}

func renderQualityReport(ds *domain.Dataset, res *QualityResult) string {
	var b strings.Builder
	total := res.Summary.OriginalCount

	b.WriteString("## Data Quality Report\n\n")
	fmt.Fprintf(&b, "**Total rows**: %d\n\n", total)

	b.WriteString("### Missing values\n")
	for _, fq := range res.Fields {
		if fq.MissingCount > 0 {
			fmt.Fprintf(&b, "- %s: %d row(s) (%.2f%%)\n",
				fq.Field, fq.MissingCount, pct(fq.MissingCount, total))
		} else {
			fmt.Fprintf(&b, "- %s: no missing values\n", fq.Field)
		}
	}
	if n := res.Summary.MissingRowCount; n > 0 {
		fmt.Fprintf(&b, "- rows removed for missing required fields: %d\n", n)
	}
	b.WriteString("\n### Outliers (1.5 x IQR)\n")
	for _, fq := range res.Fields {
		fmt.Fprintf(&b, "- %s: %d row(s) (%.2f%%), bounds [%.0f, %.0f]\n",
			fq.Field, fq.OutlierCount, pct(fq.OutlierCount, total), fq.LowerBound, fq.UpperBound)
	}

	b.WriteString("\n### Clean data\n")
	fmt.Fprintf(&b, "- clean rows: %d\n", res.Summary.CleanCount)
	fmt.Fprintf(&b, "- removed rows: %d\n", res.Summary.RemovedCount)
	fmt.Fprintf(&b, "- quality ratio: %.2f%%\n", res.Summary.QualityRatio)

	if len(res.Clean) > 0 {
		supply := supplyValues(res.Clean)
		tax := taxValues(res.Clean)
		b.WriteString("\n### Clean data summary\n")
		fmt.Fprintf(&b, "- supply_amount mean: %.0f, median: %.0f\n", mean(supply), quantile(supply, 0.5))
		fmt.Fprintf(&b, "- tax_amount mean: %.0f, median: %.0f\n", mean(tax), quantile(tax, 0.5))

		b.WriteString("\n### Clean rows by transaction type\n")
		for _, t := range domain.ExtendedTypes {
			gs, ok := res.ByType[t]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "- %s: %d row(s), total %d, mean %.0f\n",
				t, gs.Count, gs.SupplySum, gs.SupplyMean)
		}
	}

	return b.String()
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
