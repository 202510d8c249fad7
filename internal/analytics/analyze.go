package analytics

import (
	"fmt"

	"invoice-insight/internal/domain"
)

// AnalysisResult bundles every analytical artifact for one dataset. The
// detection labels and the quality filter's outlier flags come from two
// deliberately independent definitions; they are reported side by side and
// never merged.
type AnalysisResult struct {
	KPIs      *KPIs             `json:"kpis"`
	Detection *DetectionResult  `json:"detection"`
	Risk      *RiskAssessment   `json:"risk"`
	Quality   *QualityResult    `json:"quality"`
	Stats     *DescriptiveStats `json:"stats"`
}

// Analyze runs the full analytical pipeline over a validated dataset:
// KPIs and descriptive statistics on the raw table, the outlier model with
// the given contamination, the risk scorer on the labeled table, and the
// quality filter on the original (unlabeled) table.
func Analyze(ds *domain.Dataset, contamination float64) (*AnalysisResult, error) {
	detection, err := DetectAnomalies(ds, contamination)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	return &AnalysisResult{
		KPIs:      ComputeKPIs(ds),
		Detection: detection,
		Risk:      AssessRisk(detection),
		Quality:   AnalyzeQuality(ds),
		Stats:     ComputeDescriptiveStats(ds),
	}, nil
}
