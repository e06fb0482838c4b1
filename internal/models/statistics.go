package models

// StatisticalSummary describes a numeric sample. Variance and standard
// deviation are population figures. Percentiles are keyed by rank
// (25, 50, 75, 90, 95, 99).
type StatisticalSummary struct {
	Percentiles map[int]float64 `json:"percentiles"`
	Count       int             `json:"count"`
	Sum         float64         `json:"sum"`
	Mean        float64         `json:"mean"`
	Median      float64         `json:"median"`
	Mode        float64         `json:"mode"`
	StdDev      float64         `json:"std_dev"`
	Variance    float64         `json:"variance"`
	Min         float64         `json:"min"`
	Max         float64         `json:"max"`
	Range       float64         `json:"range"`
}

// ModelStats is the per-model slice of UsageStatistics.
type ModelStats struct {
	Model              string  `json:"model"`
	RequestCount       int     `json:"request_count"`
	TotalTokens        int64   `json:"total_tokens"`
	TotalCost          float64 `json:"total_cost"`
	AvgTokensPerReq    float64 `json:"avg_tokens_per_request"`
	AvgCostPerReq      float64 `json:"avg_cost_per_request"`
	UsagePercentage    float64 `json:"usage_percentage"`
	AvgCostPerThousand float64 `json:"avg_cost_per_thousand_tokens"`
}

// UsageStatistics summarizes a record collection.
type UsageStatistics struct {
	DailyDistribution  map[string]int        `json:"daily_distribution"`
	ModelStats         map[string]ModelStats `json:"model_stats"`
	TokenSummary       StatisticalSummary    `json:"token_summary"`
	CostSummary        StatisticalSummary    `json:"cost_summary"`
	HourlyDistribution [24]int               `json:"hourly_distribution"`
	TotalRequests      int                   `json:"total_requests"`
	TotalTokens        int64                 `json:"total_tokens"`
	TotalCost          float64               `json:"total_cost"`
	AvgTokensPerReq    float64               `json:"avg_tokens_per_request"`
	AvgCostPerReq      float64               `json:"avg_cost_per_request"`
	AvgCostPerToken    float64               `json:"avg_cost_per_token"`
	RequestsPerHour    float64               `json:"requests_per_hour"`
	PeakHour           int                   `json:"peak_hour"`
	LowestHour         int                   `json:"lowest_hour"`
}

// SessionStatistics summarizes a set of sessions.
type SessionStatistics struct {
	LongestSession        string  `json:"longest_session,omitempty"`
	ShortestSession       string  `json:"shortest_session,omitempty"`
	MostExpensiveSession  string  `json:"most_expensive_session,omitempty"`
	LeastExpensiveSession string  `json:"least_expensive_session,omitempty"`
	TotalSessions         int     `json:"total_sessions"`
	TotalDurationSeconds  int64   `json:"total_duration_seconds"`
	TotalCost             float64 `json:"total_cost"`
	TotalRequests         int     `json:"total_requests"`
	AvgDurationSeconds    float64 `json:"avg_duration_seconds"`
	AvgRequests           float64 `json:"avg_requests"`
	AvgCost               float64 `json:"avg_cost"`
}

// ConfidenceInterval is a normal-approximation interval around the mean.
type ConfidenceInterval struct {
	Level  float64 `json:"level"`
	Mean   float64 `json:"mean"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Margin float64 `json:"margin"`
}
