package trends

import (
	"fmt"
	"math"
	"time"

	"github.com/j-veylop/usage-analytics/internal/models"
	"github.com/j-veylop/usage-analytics/internal/services/stats"
)

// dailyPatterns buckets requests by UTC hour over all 24 hours, zeros
// included. AverageDailyPattern divides each bucket by the observed days.
func dailyPatterns(records []models.UsageRecord, days int) models.DailyPatterns {
	var p models.DailyPatterns
	for i := range records {
		p.HourlyRequests[records[i].Timestamp.UTC().Hour()]++
	}

	total := len(records)
	for h, n := range p.HourlyRequests {
		if total > 0 {
			p.HourlyDistribution[h] = float64(n) / float64(total) * 100
		}
		if days > 0 {
			p.AverageDailyPattern[h] = float64(n) / float64(days)
		}
	}

	p.PeakHours, p.LowHours = extremes(p.HourlyRequests[:])
	return p
}

// weeklyPatterns buckets requests by weekday, Monday = 0, and splits cost
// between Saturday/Sunday and the rest of the week.
func weeklyPatterns(records []models.UsageRecord) models.WeeklyPatterns {
	var p models.WeeklyPatterns
	for i := range records {
		r := &records[i]
		idx := models.WeekdayIndex(r.Timestamp)
		p.WeekdayRequests[idx]++
		if idx >= 5 {
			p.WeekendCost += r.Cost
		} else {
			p.WeekdayCost += r.Cost
		}
	}

	total := len(records)
	for d, n := range p.WeekdayRequests {
		if total > 0 {
			p.WeekdayDistribution[d] = float64(n) / float64(total) * 100
		}
	}

	p.PeakDays, p.LowDays = extremes(p.WeekdayRequests[:])
	return p
}

// extremes returns every index tied at the maximum and at the minimum.
func extremes(counts []int) (high, low []int) {
	if len(counts) == 0 {
		return nil, nil
	}
	hi, lo := counts[0], counts[0]
	for _, n := range counts[1:] {
		hi = max(hi, n)
		lo = min(lo, n)
	}
	for i, n := range counts {
		if n == hi {
			high = append(high, i)
		}
		if n == lo {
			low = append(low, i)
		}
	}
	return high, low
}

// detectAnomalies scores each day's cost against the trend line using the
// population deviation of the whole series.
func (a *Analyzer) detectAnomalies(dates []time.Time, costs []float64, line []models.TrendPoint) []models.Anomaly {
	anomalies := []models.Anomaly{}
	if len(costs) < minAnomalyDays {
		return anomalies
	}

	mean := stats.Mean(costs)
	sd := stats.StdDev(costs)
	if sd == 0 {
		return anomalies
	}

	for i, v := range costs {
		expected := mean
		if i < len(line) {
			expected = line[i].Value
		}
		z := stats.ZScore(v, expected, sd)
		if math.Abs(z) <= a.config.AnomalyThreshold {
			continue
		}

		kind, dir := models.AnomalySpike, "above"
		if z < 0 {
			kind, dir = models.AnomalyDrop, "below"
		}
		anomalies = append(anomalies, models.Anomaly{
			Date:     dates[i],
			Metric:   "cost",
			Type:     kind,
			Severity: anomalySeverity(math.Abs(z)),
			Value:    v,
			Expected: expected,
			ZScore:   z,
			Description: fmt.Sprintf("Daily cost %.4f is %.1f standard deviations %s the expected %.4f",
				v, math.Abs(z), dir, expected),
		})
	}
	return anomalies
}

func anomalySeverity(absZ float64) models.Severity {
	switch {
	case absZ > 4:
		return models.SeverityCritical
	case absZ > 3:
		return models.SeverityHigh
	case absZ > 2.5:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// forecast extrapolates the OLS fit of daily cost for ForecastHorizonDays
// after the last observed day. Bands are +/- 1.96 residual deviations.
func (a *Analyzer) forecast(dates []time.Time, costs []float64) *models.Forecast {
	n := len(costs)
	if n < minForecastDays || a.config.ForecastHorizonDays <= 0 {
		return nil
	}

	index := make([]float64, n)
	for i := range index {
		index[i] = float64(i)
	}
	slope, intercept := stats.LinearRegression(index, costs)

	residuals := make([]float64, n)
	for i, v := range costs {
		residuals[i] = v - (slope*float64(i) + intercept)
	}
	band := forecastZ * stats.StdDev(residuals)

	last := dates[n-1]
	points := make([]models.ForecastPoint, a.config.ForecastHorizonDays)
	for i := range points {
		cost := slope*float64(n+i) + intercept
		points[i] = models.ForecastPoint{
			Date:     last.AddDate(0, 0, i+1),
			Cost:     cost,
			Tokens:   cost * TokensPerCostUnit,
			Requests: cost / CostPerRequest,
			Lower:    cost - band,
			Upper:    cost + band,
		}
	}

	return &models.Forecast{
		Method:     ForecastMethodLinear,
		Points:     points,
		Confidence: 0.95,
	}
}

// insightMessages produces the short text observations attached to a trend.
func insightMessages(t *models.TrendAnalysis) []string {
	out := []string{}

	switch t.Direction {
	case models.TrendIncreasing:
		out = append(out, "Your usage costs are increasing. Consider reviewing your usage patterns.")
	case models.TrendDecreasing:
		out = append(out, "Your usage costs are decreasing. Good cost management!")
	case models.TrendStable:
		out = append(out, "Your usage costs are stable. Predictable budgeting is possible.")
	}

	if growth := t.CostTrend.GrowthRate; math.Abs(growth) > highGrowthPercent {
		out = append(out, fmt.Sprintf("High growth rate detected: %.1f%%. Consider investigating the cause.", growth))
	}

	var lastAvg float64
	if ma := t.CostTrend.MovingAverage; len(ma) > 0 {
		lastAvg = ma[len(ma)-1]
	}
	if t.CostTrend.Volatility > lastAvg*volatilityFactor {
		out = append(out, "High volatility detected in daily costs. Usage patterns are inconsistent.")
	}

	if len(t.DailyPatterns.PeakHours) > 0 {
		out = append(out, fmt.Sprintf("Peak usage hour detected at %d:00. Consider scheduling tasks accordingly.",
			t.DailyPatterns.PeakHours[0]))
	}

	critical := 0
	for _, an := range t.Anomalies {
		if an.Severity == models.SeverityCritical {
			critical++
		}
	}
	if critical > 0 {
		out = append(out, fmt.Sprintf("%d critical anomalies detected. Review unusual usage patterns.", critical))
	}
	return out
}
