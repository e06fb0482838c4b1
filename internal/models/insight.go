package models

import "time"

// InsightType classifies an insight.
type InsightType string

const (
	InsightCostOptimization InsightType = "cost_optimization"
	InsightUsagePattern     InsightType = "usage_pattern"
	InsightAnomalyDetection InsightType = "anomaly_detection"
	InsightTrendAnalysis    InsightType = "trend_analysis"
	InsightBudgetAlert      InsightType = "budget_alert"
	InsightPerformance      InsightType = "performance"
	InsightRecommendation   InsightType = "recommendation"
	InsightWarning          InsightType = "warning"
)

// Severity grades insights and anomalies.
type Severity string

const (
	SeverityInformational Severity = "informational"
	SeverityLow           Severity = "low"
	SeverityMedium        Severity = "medium"
	SeverityHigh          Severity = "high"
	SeverityCritical      Severity = "critical"
)

// Rank orders severities from Informational (1) to Critical (5).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInformational:
		return 1
	default:
		return 0
	}
}

// InsightCategory groups insights for display.
type InsightCategory string

const (
	CategoryCost         InsightCategory = "cost"
	CategoryUsage        InsightCategory = "usage"
	CategoryPerformance  InsightCategory = "performance"
	CategorySecurity     InsightCategory = "security"
	CategoryCompliance   InsightCategory = "compliance"
	CategoryOptimization InsightCategory = "optimization"
)

// RiskLevel is the risk of acting on an insight.
type RiskLevel string

const (
	RiskNone   RiskLevel = "none"
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Difficulty is the effort needed to act on an insight.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyModerate Difficulty = "moderate"
	DifficultyHard     Difficulty = "hard"
	DifficultyExpert   Difficulty = "expert"
)

// ImpactAssessment estimates what acting on an insight is worth.
type ImpactAssessment struct {
	PotentialSavings         *float64   `json:"potential_savings,omitempty"`
	PotentialEfficiencyGain  *float64   `json:"potential_efficiency_gain,omitempty"`
	RiskLevel                RiskLevel  `json:"risk_level"`
	ImplementationDifficulty Difficulty `json:"implementation_difficulty"`
}

// Insight is a ranked, confidence-scored recommendation.
type Insight struct {
	CreatedAt      time.Time        `json:"created_at"`
	Metadata       map[string]any   `json:"metadata,omitempty"`
	ID             string           `json:"id"`
	Type           InsightType      `json:"type"`
	Severity       Severity         `json:"severity"`
	Category       InsightCategory  `json:"category"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Recommendation string           `json:"recommendation"`
	Impact         ImpactAssessment `json:"impact"`
	Confidence     float64          `json:"confidence"`
}

// Float returns a pointer to v, for optional impact figures.
func Float(v float64) *float64 {
	return &v
}
