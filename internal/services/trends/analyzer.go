// Package trends turns usage records into daily series and derives growth,
// smoothing, regression, patterns, anomalies and a short forecast from them.
package trends

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/j-veylop/usage-analytics/internal/logger"
	"github.com/j-veylop/usage-analytics/internal/models"
	"github.com/j-veylop/usage-analytics/internal/services/stats"
)

const (
	// TokensPerCostUnit converts forecast cost into forecast tokens. It is a
	// fixed placeholder ratio, not a measured conversion.
	TokensPerCostUnit = 1000.0
	// CostPerRequest converts forecast cost into forecast requests. It is a
	// fixed placeholder ratio, not a measured conversion.
	CostPerRequest = 0.015

	// ForecastMethodLinear names the OLS extrapolation.
	ForecastMethodLinear = "linear_regression"

	forecastZ          = 1.96
	minAnomalyDays     = 3
	minForecastDays    = 7
	minMovingWindow    = 3
	directionThreshold = 5.0
	highGrowthPercent  = 20.0
	volatilityFactor   = 0.5
)

// Config controls the analyzer.
type Config struct {
	AnalysisPeriodDays     int // 0 analyzes every record
	SmoothingFactor        float64
	AnomalyThreshold       float64
	ForecastHorizonDays    int
	EnableAnomalyDetection bool
	EnableForecasting      bool
}

// DefaultConfig returns the default analyzer configuration.
func DefaultConfig() Config {
	return Config{
		AnalysisPeriodDays:     30,
		SmoothingFactor:        0.3,
		EnableAnomalyDetection: true,
		AnomalyThreshold:       2.5,
		EnableForecasting:      true,
		ForecastHorizonDays:    7,
	}
}

// GrowthFunc computes a series' growth rate in percent.
type GrowthFunc func(values []float64) float64

// EndpointGrowth compares the last value with the first. It is noise
// sensitive and ignores everything in between.
func EndpointGrowth(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stats.GrowthRate(values[len(values)-1], values[0])
}

// Analyzer computes TrendAnalysis values. It holds no mutable state once
// configured and is safe for concurrent use.
type Analyzer struct {
	config Config
	growth GrowthFunc
}

// New creates an analyzer.
func New(cfg Config) *Analyzer {
	return &Analyzer{config: cfg, growth: EndpointGrowth}
}

// SetGrowthFunc replaces the growth rate computation.
func (a *Analyzer) SetGrowthFunc(fn GrowthFunc) {
	if fn != nil {
		a.growth = fn
	}
}

// Config returns the analyzer's configuration.
func (a *Analyzer) Config() Config {
	return a.config
}

// day is one bucket of the daily series.
type day struct {
	date     time.Time
	cost     float64
	tokens   float64
	requests float64
}

// Analyze computes trends over the records, which must already carry costs.
// Empty input yields an Unknown direction and zeroed metrics.
func (a *Analyzer) Analyze(records []models.UsageRecord) (*models.TrendAnalysis, error) {
	records = a.window(records)
	if len(records) == 0 {
		return &models.TrendAnalysis{
			Direction: models.TrendUnknown,
			Anomalies: []models.Anomaly{},
			Insights:  []string{},
		}, nil
	}

	days := groupByDay(records)
	dates := make([]time.Time, len(days))
	costs := make([]float64, len(days))
	tokens := make([]float64, len(days))
	requests := make([]float64, len(days))
	for i, d := range days {
		dates[i] = d.date
		costs[i] = d.cost
		tokens[i] = d.tokens
		requests[i] = d.requests
	}

	result := &models.TrendAnalysis{
		PeriodStart: dates[0],
		PeriodEnd:   dates[len(dates)-1],
		Days:        len(days),
		Anomalies:   []models.Anomaly{},
	}

	var err error
	if result.CostTrend, err = a.metrics(dates, costs); err != nil {
		return nil, fmt.Errorf("cost trend: %w", err)
	}
	if result.TokenTrend, err = a.metrics(dates, tokens); err != nil {
		return nil, fmt.Errorf("token trend: %w", err)
	}
	if result.RequestTrend, err = a.metrics(dates, requests); err != nil {
		return nil, fmt.Errorf("request trend: %w", err)
	}

	result.DailyCosts = make([]models.TrendPoint, len(days))
	for i := range days {
		result.DailyCosts[i] = models.TrendPoint{Date: dates[i], Value: costs[i]}
	}

	result.Direction = overallDirection(result.CostTrend, result.TokenTrend, result.RequestTrend)
	result.DailyPatterns = dailyPatterns(records, len(days))
	result.WeeklyPatterns = weeklyPatterns(records)

	if a.config.EnableAnomalyDetection {
		result.Anomalies = a.detectAnomalies(dates, costs, result.CostTrend.TrendLine)
	}
	if a.config.EnableForecasting {
		result.Forecast = a.forecast(dates, costs)
	}

	result.Insights = insightMessages(result)

	logger.Debug("trend analysis complete",
		"days", result.Days, "direction", result.Direction, "anomalies", len(result.Anomalies))
	return result, nil
}

// window keeps the records within AnalysisPeriodDays of the latest record's day.
func (a *Analyzer) window(records []models.UsageRecord) []models.UsageRecord {
	if a.config.AnalysisPeriodDays <= 0 || len(records) == 0 {
		return records
	}

	latest := records[0].Day()
	for i := range records {
		if d := records[i].Day(); d.After(latest) {
			latest = d
		}
	}
	cutoff := latest.AddDate(0, 0, -(a.config.AnalysisPeriodDays - 1))

	out := make([]models.UsageRecord, 0, len(records))
	for i := range records {
		if !records[i].Day().Before(cutoff) {
			out = append(out, records[i])
		}
	}
	return out
}

func groupByDay(records []models.UsageRecord) []day {
	byDate := make(map[time.Time]*day)
	for i := range records {
		r := &records[i]
		key := r.Day()
		d, ok := byDate[key]
		if !ok {
			d = &day{date: key}
			byDate[key] = d
		}
		d.cost += r.Cost
		d.tokens += float64(r.TotalTokens())
		d.requests++
	}

	out := make([]day, 0, len(byDate))
	for _, d := range byDate {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].date.Before(out[j].date) })
	return out
}

// movingWindow returns max(3, round(n*smoothing)).
func (a *Analyzer) movingWindow(n int) int {
	return max(minMovingWindow, int(math.Round(float64(n)*a.config.SmoothingFactor)))
}

func (a *Analyzer) metrics(dates []time.Time, values []float64) (models.TrendMetrics, error) {
	if len(values) < 2 {
		return models.TrendMetrics{}, nil
	}

	index := make([]float64, len(values))
	for i := range index {
		index[i] = float64(i)
	}

	corr, err := stats.Correlation(index, values)
	if err != nil {
		return models.TrendMetrics{}, err
	}

	diffs := make([]float64, len(values)-1)
	for i := range diffs {
		diffs[i] = values[i+1] - values[i]
	}

	return models.TrendMetrics{
		GrowthRate:             a.growth(values),
		MovingAverage:          stats.MovingAverage(values, a.movingWindow(len(values))),
		TrendLine:              trendLine(dates, values),
		CorrelationCoefficient: corr,
		Volatility:             stats.StdDev(diffs),
	}, nil
}

// trendLine evaluates the OLS fit of value against day index at every day.
func trendLine(dates []time.Time, values []float64) []models.TrendPoint {
	index := make([]float64, len(values))
	for i := range index {
		index[i] = float64(i)
	}
	slope, intercept := stats.LinearRegression(index, values)

	line := make([]models.TrendPoint, len(values))
	for i := range values {
		line[i] = models.TrendPoint{Date: dates[i], Value: slope*float64(i) + intercept}
	}
	return line
}

// overallDirection takes a majority vote of the growth rates; ties are Stable.
func overallDirection(metrics ...models.TrendMetrics) models.TrendDirection {
	up, down := 0, 0
	for _, m := range metrics {
		switch {
		case m.GrowthRate > directionThreshold:
			up++
		case m.GrowthRate < -directionThreshold:
			down++
		}
	}
	switch {
	case up > down:
		return models.TrendIncreasing
	case down > up:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}
