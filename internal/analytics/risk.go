package analytics

import (
	"fmt"
	"math"
	"sort"

	"invoice-insight/internal/domain"
)

// SubsetStats are the descriptive statistics of one label class.
type SubsetStats struct {
	Count      int     `json:"count"`
	SupplyMean float64 `json:"supply_mean"`
	SupplyMax  float64 `json:"supply_max"`
	SupplyStd  float64 `json:"supply_std"`
	TaxMean    float64 `json:"tax_mean"`
	TaxStd     float64 `json:"tax_std"`
}

// RiskWeights combine the three score components. They are policy, exposed
// for tuning and for tests; they should sum to 1.
type RiskWeights struct {
	Rate       float64 `json:"rate"`
	Magnitude  float64 `json:"magnitude"`
	Dispersion float64 `json:"dispersion"`
}

// DefaultRiskWeights favor the magnitude gap between anomalous and normal
// transactions: a few enormous invoices are riskier than many mild ones.
var DefaultRiskWeights = RiskWeights{Rate: 0.25, Magnitude: 0.65, Dispersion: 0.10}

// RiskLevel is the four-tier classification of a risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Tier boundaries. Scores below RiskThresholdModerate are LOW, and so on up.
const (
	RiskThresholdModerate = 30.0
	RiskThresholdHigh     = 60.0
	RiskThresholdCritical = 85.0
)

// LevelForScore maps a 0-100 score onto its tier.
func LevelForScore(score float64) RiskLevel {
	switch {
	case score >= RiskThresholdCritical:
		return RiskCritical
	case score >= RiskThresholdHigh:
		return RiskHigh
	case score >= RiskThresholdModerate:
		return RiskModerate
	default:
		return RiskLow
	}
}

// RiskAssessment is the scorer's full output for a labeled table.
type RiskAssessment struct {
	AnomalyStats SubsetStats `json:"anomaly_stats"`
	NormalStats  SubsetStats `json:"normal_stats"`

	Score    float64   `json:"score"` // 0-100
	Level    RiskLevel `json:"level"`
	Insights []string  `json:"insights"`

	AnomalyCount int     `json:"anomaly_count"`
	TotalCount   int     `json:"total_count"`
	AnomalyRate  float64 `json:"anomaly_rate"` // fraction in [0, 1]
}

// AssessRisk scores a detection result with the default weights.
func AssessRisk(res *DetectionResult) *RiskAssessment {
	return AssessRiskWith(res, DefaultRiskWeights)
}

// AssessRiskWith computes split statistics, the composite 0-100 risk score,
// and the insight strings. The score is strictly increasing in the anomaly
// rate and in the supply-mean gap between the two subsets, and is clamped to
// [0, 100]. Zero anomalies is an explicit branch: score 0, level LOW, no
// insights.
func AssessRiskWith(res *DetectionResult, w RiskWeights) *RiskAssessment {
	var anomalous, normal []domain.Transaction
	for _, row := range res.Rows {
		if row.Anomalous {
			anomalous = append(anomalous, row.Transaction)
		} else {
			normal = append(normal, row.Transaction)
		}
	}

	out := &RiskAssessment{
		NormalStats:  subsetStats(normal),
		TotalCount:   res.TotalCount,
		AnomalyCount: len(anomalous),
		Insights:     []string{},
		Level:        RiskLow,
	}

	if len(anomalous) == 0 {
		return out
	}

	out.AnomalyStats = subsetStats(anomalous)
	out.AnomalyRate = float64(len(anomalous)) / float64(res.TotalCount)

	rateComponent := math.Sqrt(out.AnomalyRate)

	gap := meanGap(out.AnomalyStats.SupplyMean, out.NormalStats.SupplyMean)
	magnitudeComponent := 0.0
	if gap > 1 {
		magnitudeComponent = 1 - 1/gap
	}

	dispersionComponent := 0.0
	switch {
	case out.NormalStats.SupplyStd > 0:
		d := out.AnomalyStats.SupplyStd / out.NormalStats.SupplyStd
		dispersionComponent = d / (d + 1)
	case out.AnomalyStats.SupplyStd > 0:
		dispersionComponent = 1
	}

	score := 100 * (w.Rate*rateComponent + w.Magnitude*magnitudeComponent + w.Dispersion*dispersionComponent)
	out.Score = clampScore(score)
	out.Level = LevelForScore(out.Score)
	out.Insights = buildInsights(res, out)
	return out
}

// meanGap is how far apart the subset means are, as a ratio >= 1. Anomalies
// far below the normal mean are as notable as ones far above it.
func meanGap(anomalyMean, normalMean float64) float64 {
	if anomalyMean <= 0 || normalMean <= 0 {
		return 1
	}
	r := anomalyMean / normalMean
	if r < 1 {
		return 1 / r
	}
	return r
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

func subsetStats(rows []domain.Transaction) SubsetStats {
	supply := supplyValues(rows)
	_, max := minMax(supply)
	tax := taxValues(rows)
	return SubsetStats{
		Count:      len(rows),
		SupplyMean: mean(supply),
		SupplyMax:  max,
		SupplyStd:  stdDev(supply),
		TaxMean:    mean(tax),
		TaxStd:     stdDev(tax),
	}
}

// Insight emission thresholds. Each insight appears only when its condition
// actually holds in the data.
const (
	insightGapFactor       = 2.0  // anomalous mean vs normal mean
	insightMonthShare      = 0.30 // share of anomalies in a single month
	insightTypeShare       = 0.50 // share of anomalies in a single type
	insightExtremeMultiple = 10.0 // largest anomaly vs normal mean
)

func buildInsights(res *DetectionResult, a *RiskAssessment) []string {
	insights := []string{
		fmt.Sprintf("%d of %d transactions (%.1f%%) were flagged as anomalous",
			a.AnomalyCount, a.TotalCount, a.AnomalyRate*100),
	}

	if a.NormalStats.SupplyMean > 0 {
		ratio := a.AnomalyStats.SupplyMean / a.NormalStats.SupplyMean
		if ratio >= insightGapFactor {
			insights = append(insights, fmt.Sprintf(
				"the mean supply amount of anomalous transactions is %.1fx the normal mean", ratio))
		}
		if a.AnomalyStats.SupplyMax > insightExtremeMultiple*a.NormalStats.SupplyMean {
			insights = append(insights, fmt.Sprintf(
				"the largest anomalous supply amount (%.0f) exceeds the normal mean by more than %.0fx",
				a.AnomalyStats.SupplyMax, insightExtremeMultiple))
		}
	}

	if period, share, n := topAnomalyPeriod(res); n >= 2 && share > insightMonthShare {
		insights = append(insights, fmt.Sprintf(
			"%.0f%% of anomalies are concentrated in %s", share*100, period))
	}

	if txType, share := topAnomalyType(res); share > insightTypeShare {
		insights = append(insights, fmt.Sprintf(
			"%.0f%% of anomalies are %s transactions", share*100, txType))
	}

	return insights
}

func topAnomalyPeriod(res *DetectionResult) (string, float64, int) {
	counts := make(map[string]int)
	total := 0
	for _, row := range res.Rows {
		if row.Anomalous {
			counts[row.Period]++
			total++
		}
	}
	if total == 0 {
		return "", 0, 0
	}
	periods := make([]string, 0, len(counts))
	for p := range counts {
		periods = append(periods, p)
	}
	sort.Strings(periods)
	best, bestCount := "", -1
	for _, p := range periods {
		if counts[p] > bestCount {
			best, bestCount = p, counts[p]
		}
	}
	return best, float64(bestCount) / float64(total), bestCount
}

func topAnomalyType(res *DetectionResult) (domain.TransactionType, float64) {
	counts := make(map[domain.TransactionType]int)
	total := 0
	for _, row := range res.Rows {
		if row.Anomalous {
			counts[row.Type]++
			total++
		}
	}
	if total == 0 {
		return "", 0
	}
	best, bestCount := domain.TransactionType(""), -1
	for _, t := range domain.ExtendedTypes {
		if counts[t] > bestCount {
			best, bestCount = t, counts[t]
		}
	}
	return best, float64(bestCount) / float64(total)
}
