package models

import "time"

// Report bundles every result of one analysis run.
type Report struct {
	GeneratedAt   time.Time                `json:"generated_at"`
	Budget        *BudgetAnalysis          `json:"budget,omitempty"`
	Trends        *TrendAnalysis           `json:"trends"`
	Currency      string                   `json:"currency"`
	Optimizations []OptimizationSuggestion `json:"optimizations"`
	Insights      []Insight                `json:"insights"`
	Breakdown     DetailedCostBreakdown    `json:"breakdown"`
	Usage         UsageStatistics          `json:"usage"`
	Sessions      SessionStatistics        `json:"sessions"`
	Projection    CostProjection           `json:"projection"`
	Cache         CacheStats               `json:"cache"`
	RecordCount   int                      `json:"record_count"`
}

// HasCriticalInsight reports whether any insight is Critical.
func (r *Report) HasCriticalInsight() bool {
	for _, in := range r.Insights {
		if in.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
