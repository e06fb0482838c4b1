package models

import "time"

// DetailedCostBreakdown partitions total cost along every supported dimension.
type DetailedCostBreakdown struct {
	CostByModel            map[string]float64 `json:"cost_by_model"`
	CostByDate             map[string]float64 `json:"cost_by_date"`
	CostBySession          map[string]float64 `json:"cost_by_session,omitempty"`
	CostByUser             map[string]float64 `json:"cost_by_user,omitempty"`
	ModelEfficiency        map[string]float64 `json:"model_efficiency"`
	Currency               string             `json:"currency"`
	MostExpensiveModel     string             `json:"most_expensive_model,omitempty"`
	MostCostEffectiveModel string             `json:"most_cost_effective_model,omitempty"`
	TotalCost              float64            `json:"total_cost"`
	AvgCostPerRequest      float64            `json:"avg_cost_per_request"`
	AvgCostPerToken        float64            `json:"avg_cost_per_token"`
	TotalRequests          int                `json:"total_requests"`
	TotalInputTokens       int64              `json:"total_input_tokens"`
	TotalOutputTokens      int64              `json:"total_output_tokens"`
}

// BudgetAnalysis compares spend against a BudgetInfo.
type BudgetAnalysis struct {
	Budget             BudgetInfo `json:"budget"`
	TotalCost          float64    `json:"total_cost"`
	UsagePercentage    float64    `json:"usage_percentage"`
	DailyAverage       float64    `json:"daily_average"`
	ProjectedMonthly   float64    `json:"projected_monthly"`
	UsagePeriodDays    int        `json:"usage_period_days"`
	DaysRemaining      int        `json:"days_remaining"`
	IsBudgetExceeded   bool       `json:"is_budget_exceeded"`
	IsWarningExceeded  bool       `json:"is_warning_exceeded"`
	IsAlertExceeded    bool       `json:"is_alert_exceeded"`
	ProjectedOverLimit bool       `json:"projected_over_limit"`
}

// OptimizationType names the kind of cost optimization suggested.
type OptimizationType string

const (
	OptimizationModelSwitch OptimizationType = "model_switch"
	OptimizationBatching    OptimizationType = "batching"
	OptimizationCaching     OptimizationType = "caching"
)

// Priority orders optimization suggestions.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// OptimizationSuggestion is a concrete way to reduce spend.
type OptimizationSuggestion struct {
	Type             OptimizationType `json:"type"`
	Priority         Priority         `json:"priority"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	AffectedModel    string           `json:"affected_model,omitempty"`
	CurrentCost      float64          `json:"current_cost"`
	EstimatedSavings float64          `json:"estimated_savings"`
	AffectedRecords  int              `json:"affected_records"`
}

// RepeatedRequest is a (model, input, output) signature seen more than once.
type RepeatedRequest struct {
	Signature string  `json:"signature"`
	Count     int     `json:"count"`
	Cost      float64 `json:"cost"`
}

// CostProjection extrapolates observed spend forward.
type CostProjection struct {
	DailyAverage      float64 `json:"daily_average"`
	TrendPercentage   float64 `json:"trend_percentage"`
	ProjectedCost     float64 `json:"projected_cost"`
	TrendAdjustedCost float64 `json:"trend_adjusted_cost"`
	ObservedDays      int     `json:"observed_days"`
	ProjectionDays    int     `json:"projection_days"`
}

// CacheStats reports the cost cache's effectiveness.
type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// HitRate returns hits as a fraction of all lookups.
func (c CacheStats) HitRate() float64 {
	total := c.Hits + c.Misses
	if total == 0 {
		return 0
	}
	return float64(c.Hits) / float64(total)
}

// ModelUsage is the per-model slice of a periodic summary.
type ModelUsage struct {
	Model        string  `json:"model"`
	TotalCost    float64 `json:"total_cost"`
	AvgCost      float64 `json:"avg_cost"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	RequestCount int     `json:"request_count"`
}

// DailySummary totals one UTC calendar day.
type DailySummary struct {
	Date              time.Time             `json:"date"`
	ModelBreakdown    map[string]ModelUsage `json:"model_breakdown"`
	MostUsedModel     string                `json:"most_used_model,omitempty"`
	HourlyRequests    [24]int               `json:"hourly_requests"`
	TotalCost         float64               `json:"total_cost"`
	TotalInputTokens  int64                 `json:"total_input_tokens"`
	TotalOutputTokens int64                 `json:"total_output_tokens"`
	TotalRequests     int                   `json:"total_requests"`
	SessionCount      int                   `json:"session_count"`
	PeakHour          int                   `json:"peak_hour"`
}

// WeeklySummary totals one ISO week starting on Monday.
type WeeklySummary struct {
	WeekStart         time.Time             `json:"week_start"`
	WeekEnd           time.Time             `json:"week_end"`
	ModelBreakdown    map[string]ModelUsage `json:"model_breakdown"`
	MostExpensiveDay  *time.Time            `json:"most_expensive_day,omitempty"`
	MostUsedModel     string                `json:"most_used_model,omitempty"`
	DailyBreakdown    []DailySummary        `json:"daily_breakdown"`
	HourlyRequests    [24]int               `json:"hourly_requests"`
	TotalCost         float64               `json:"total_cost"`
	AvgDailyCost      float64               `json:"avg_daily_cost"`
	TotalInputTokens  int64                 `json:"total_input_tokens"`
	TotalOutputTokens int64                 `json:"total_output_tokens"`
	TotalRequests     int                   `json:"total_requests"`
	SessionCount      int                   `json:"session_count"`
	PeakHour          int                   `json:"peak_hour"`
}

// MonthlySummary totals one calendar month.
type MonthlySummary struct {
	ModelBreakdown    map[string]ModelUsage `json:"model_breakdown"`
	MostExpensiveWeek *time.Time            `json:"most_expensive_week,omitempty"`
	MostUsedModel     string                `json:"most_used_model,omitempty"`
	WeeklyBreakdown   []WeeklySummary       `json:"weekly_breakdown"`
	Month             time.Month            `json:"month"`
	Year              int                   `json:"year"`
	TotalCost         float64               `json:"total_cost"`
	AvgWeeklyCost     float64               `json:"avg_weekly_cost"`
	TotalInputTokens  int64                 `json:"total_input_tokens"`
	TotalOutputTokens int64                 `json:"total_output_tokens"`
	TotalRequests     int                   `json:"total_requests"`
	SessionCount      int                   `json:"session_count"`
	PeakHour          int                   `json:"peak_hour"`
}

// SessionAnalysis describes the records of a single session.
type SessionAnalysis struct {
	SessionID         string  `json:"session_id"`
	TotalCost         float64 `json:"total_cost"`
	TotalInputTokens  int64   `json:"total_input_tokens"`
	TotalOutputTokens int64   `json:"total_output_tokens"`
	RequestCount      int     `json:"request_count"`
	DurationSeconds   int64   `json:"duration_seconds"`
}
