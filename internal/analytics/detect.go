package analytics

import (
	"math"
	"math/rand"
	"sort"

	"invoice-insight/internal/domain"
)

// ModelSeed fixes the outlier model's randomness. Repeated calls with the
// same table and contamination return identical labels; reproducibility is
// part of the contract, not an implementation detail.
const ModelSeed int64 = 42

// minModelRows is the smallest sample the model fits on. Isolation-based
// separation is meaningless below this; smaller tables come back all-normal.
const minModelRows = 10

// Recommended contamination range surfaced to callers (the sensitivity
// slider); DetectAnomalies itself accepts anything in (0, 1).
const (
	MinContamination     = 0.01
	MaxContamination     = 0.3
	DefaultContamination = 0.1
)

// DetectionResult is the input table with the model's label column attached,
// plus the headline counts.
type DetectionResult struct {
	Rows []domain.LabeledTransaction `json:"rows"`

	Contamination float64 `json:"contamination"`
	TotalCount    int     `json:"total_count"`
	// ModeledCount is how many rows carried both numeric features; rows with
	// coercion-failed amounts are never labeled anomalous.
	ModeledCount int `json:"modeled_count"`
	AnomalyCount int `json:"anomaly_count"`
	// AnomalyRate is AnomalyCount/TotalCount as a fraction in [0, 1].
	AnomalyRate float64 `json:"anomaly_rate"`
}

// DetectAnomalies fits the isolation forest over (supply_amount, tax_amount)
// and labels the top contamination fraction of rows anomalous. Degenerate
// inputs (tiny tables, zero variance in either feature) return all-normal
// labels rather than failing.
func DetectAnomalies(ds *domain.Dataset, contamination float64) (*DetectionResult, error) {
	if contamination <= 0 || contamination >= 1 {
		return nil, &domain.ParameterError{
			Name:   "contamination",
			Value:  contamination,
			Reason: "must be in (0, 1)",
		}
	}

	labeled := make([]domain.LabeledTransaction, len(ds.Rows))
	for i, tx := range ds.Rows {
		labeled[i] = domain.LabeledTransaction{Transaction: tx}
	}

	features := make([][]float64, 0, len(ds.Rows))
	rowIndex := make([]int, 0, len(ds.Rows))
	for i, tx := range ds.Rows {
		if tx.Complete() {
			features = append(features, []float64{float64(*tx.SupplyAmount), float64(*tx.TaxAmount)})
			rowIndex = append(rowIndex, i)
		}
	}

	res := &DetectionResult{
		Rows:          labeled,
		Contamination: contamination,
		TotalCount:    len(ds.Rows),
		ModeledCount:  len(features),
	}

	if len(features) < minModelRows || degenerateFeatures(features) {
		return res, nil
	}

	// Exactly round(contamination*n) rows get the anomalous label, clamped
	// to the rows that exist.
	k := int(math.Round(contamination * float64(len(features))))
	if k > len(features) {
		k = len(features)
	}
	if k == 0 {
		return res, nil
	}

	rng := rand.New(rand.NewSource(ModelSeed))
	forest := fitIsolationForest(features, rng)

	scores := make([]float64, len(features))
	for i, x := range features {
		scores[i] = forest.score(x)
	}

	order := make([]int, len(features))
	for i := range order {
		order[i] = i
	}
	// Highest score first; ties broken by row order for determinism.
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	for _, i := range order[:k] {
		res.Rows[rowIndex[i]].Anomalous = true
	}

	res.AnomalyCount = k
	res.AnomalyRate = float64(k) / float64(len(ds.Rows))
	return res, nil
}

// degenerateFeatures reports whether either feature column is constant.
func degenerateFeatures(features [][]float64) bool {
	for j := 0; j < 2; j++ {
		lo, hi := features[0][j], features[0][j]
		for _, row := range features[1:] {
			if row[j] < lo {
				lo = row[j]
			}
			if row[j] > hi {
				hi = row[j]
			}
		}
		if hi == lo {
			return true
		}
	}
	return false
}
