package models

import "time"

// TrendDirection is the overall movement of a series.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
	TrendUnknown    TrendDirection = "unknown"
)

// TrendPoint is one dated value of a series.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// TrendMetrics describes one daily series (cost, tokens or requests).
type TrendMetrics struct {
	MovingAverage          []float64    `json:"moving_average"`
	TrendLine              []TrendPoint `json:"trend_line"`
	GrowthRate             float64      `json:"growth_rate"`
	CorrelationCoefficient float64      `json:"correlation_coefficient"`
	Volatility             float64      `json:"volatility"`
}

// DailyPatterns describes request volume across the hours of the day.
// Peak and low hours hold every hour tied at the maximum or minimum.
type DailyPatterns struct {
	PeakHours           []int       `json:"peak_hours"`
	LowHours            []int       `json:"low_hours"`
	HourlyRequests      [24]int     `json:"hourly_requests"`
	HourlyDistribution  [24]float64 `json:"hourly_distribution"`
	AverageDailyPattern [24]float64 `json:"average_daily_pattern"`
}

// WeeklyPatterns describes request volume across weekdays, Monday = 0.
type WeeklyPatterns struct {
	PeakDays            []int      `json:"peak_days"`
	LowDays             []int      `json:"low_days"`
	WeekdayRequests     [7]int     `json:"weekday_requests"`
	WeekdayDistribution [7]float64 `json:"weekday_distribution"`
	WeekendCost         float64    `json:"weekend_cost"`
	WeekdayCost         float64    `json:"weekday_cost"`
}

// WeekdayNames is indexed by WeekdayIndex.
var WeekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// AnomalyType tells whether an anomaly is above or below expectation.
type AnomalyType string

const (
	AnomalySpike AnomalyType = "spike"
	AnomalyDrop  AnomalyType = "drop"
)

// Anomaly is a day whose value deviates from the trend.
type Anomaly struct {
	Date        time.Time   `json:"date"`
	Metric      string      `json:"metric"`
	Type        AnomalyType `json:"type"`
	Severity    Severity    `json:"severity"`
	Description string      `json:"description"`
	Value       float64     `json:"value"`
	Expected    float64     `json:"expected"`
	ZScore      float64     `json:"z_score"`
}

// ForecastPoint is one predicted day.
type ForecastPoint struct {
	Date     time.Time `json:"date"`
	Cost     float64   `json:"cost"`
	Tokens   float64   `json:"tokens"`
	Requests float64   `json:"requests"`
	Lower    float64   `json:"lower"`
	Upper    float64   `json:"upper"`
}

// Forecast is a short-horizon extrapolation of daily cost.
type Forecast struct {
	Method     string          `json:"method"`
	Points     []ForecastPoint `json:"points"`
	Confidence float64         `json:"confidence"`
}

// TrendAnalysis is the TrendAnalyzer's result.
type TrendAnalysis struct {
	PeriodStart    time.Time      `json:"period_start"`
	PeriodEnd      time.Time      `json:"period_end"`
	Forecast       *Forecast      `json:"forecast,omitempty"`
	Direction      TrendDirection `json:"direction"`
	Anomalies      []Anomaly      `json:"anomalies"`
	Insights       []string       `json:"insights"`
	DailyCosts     []TrendPoint   `json:"daily_costs"`
	CostTrend      TrendMetrics   `json:"cost_trend"`
	TokenTrend     TrendMetrics   `json:"token_trend"`
	RequestTrend   TrendMetrics   `json:"request_trend"`
	DailyPatterns  DailyPatterns  `json:"daily_patterns"`
	WeeklyPatterns WeeklyPatterns `json:"weekly_patterns"`
	Days           int            `json:"days"`
}
