// Package stats provides descriptive statistics over numeric samples and
// usage records. All functions are pure and safe for concurrent use.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/j-veylop/usage-analytics/internal/logger"
	"github.com/j-veylop/usage-analytics/internal/models"
)

// modeEpsilon is the tolerance for treating two floats as the same value.
const modeEpsilon = 1e-9

// PercentileRanks are the percentiles reported by Summary.
var PercentileRanks = []int{25, 50, 75, 90, 95, 99}

// Mean returns the arithmetic mean, or 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance returns the population variance (divides by N).
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return sq / float64(len(values))
}

// StdDev returns the population standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Summary describes values. Empty input yields a zero summary.
func Summary(values []float64) models.StatisticalSummary {
	s := models.StatisticalSummary{Percentiles: make(map[int]float64, len(PercentileRanks))}
	n := len(values)
	if n == 0 {
		for _, p := range PercentileRanks {
			s.Percentiles[p] = 0
		}
		return s
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	s.Count = n
	for _, v := range values {
		s.Sum += v
	}
	s.Mean = s.Sum / float64(n)
	s.Variance = Variance(values)
	s.StdDev = math.Sqrt(s.Variance)
	s.Min = sorted[0]
	s.Max = sorted[n-1]
	s.Range = s.Max - s.Min

	if n%2 == 0 {
		s.Median = (sorted[n/2-1] + sorted[n/2]) / 2
	} else {
		s.Median = sorted[n/2]
	}

	s.Mode = mode(values)
	for _, p := range PercentileRanks {
		s.Percentiles[p] = Percentile(sorted, float64(p))
	}
	return s
}

// Percentile returns the nearest-rank percentile of an ascending slice,
// index floor(p/100*(n-1)), without interpolation.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Floor(p / 100 * float64(len(sorted)-1)))
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}

// mode returns the first value, in input order, reaching the highest count.
func mode(values []float64) float64 {
	bestCount := 0
	var best float64
	for i, v := range values {
		count := 0
		for _, w := range values {
			if math.Abs(v-w) < modeEpsilon {
				count++
			}
		}
		if i == 0 || count > bestCount {
			best, bestCount = v, count
		}
	}
	return best
}

// Correlation returns the Pearson correlation of x and y. It is 0 for empty
// input or when either series has no variance.
func Correlation(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("correlation of %d and %d values: %w", len(x), len(y), models.ErrDimensionMismatch)
	}
	n := float64(len(x))
	if n == 0 {
		return 0, nil
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}

	num := n*sumXY - sumX*sumY
	den := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if den == 0 || math.IsNaN(den) {
		return 0, nil
	}
	return num / den, nil
}

// MovingAverage returns the trailing means of every full window. The window
// is clamped to the data length; a zero window or empty data yields nil.
func MovingAverage(data []float64, window int) []float64 {
	if len(data) == 0 || window <= 0 {
		return nil
	}
	window = min(window, len(data))

	out := make([]float64, 0, len(data)-window+1)
	var sum float64
	for i, v := range data {
		sum += v
		if i >= window {
			sum -= data[i-window]
		}
		if i >= window-1 {
			out = append(out, sum/float64(window))
		}
	}
	return out
}

// GrowthRate returns the percentage change from previous to current, or 0
// when previous is 0.
func GrowthRate(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// ZScore returns how many standard deviations value lies from mean, or 0
// when stdDev is 0.
func ZScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return (value - mean) / stdDev
}

// DetectOutliers returns the indexes whose absolute z-score, against the
// whole sample's mean and population deviation, exceeds threshold.
func DetectOutliers(data []float64, threshold float64) []int {
	if len(data) == 0 {
		return nil
	}
	m := Mean(data)
	sd := StdDev(data)

	var out []int
	for i, v := range data {
		if math.Abs(ZScore(v, m, sd)) > threshold {
			out = append(out, i)
		}
	}
	return out
}

// zValues maps supported confidence levels to normal critical values.
var zValues = map[int]float64{
	90: 1.645,
	95: 1.96,
	99: 2.576,
}

// ConfidenceInterval returns a normal-approximation interval around the
// mean. level may be a fraction (0.95) or a percentage (95); unsupported
// levels fall back to 95%. Small samples are not t-corrected.
func ConfidenceInterval(data []float64, level float64) models.ConfidenceInterval {
	pct := level
	if pct > 0 && pct < 1 {
		pct *= 100
	}
	z, ok := zValues[int(math.Round(pct))]
	if !ok || math.Abs(pct-math.Round(pct)) > modeEpsilon {
		logger.Debug("unsupported confidence level, using 95%", "level", level)
		z = zValues[95]
		pct = 95
	}
	pct = math.Round(pct)

	ci := models.ConfidenceInterval{Level: pct / 100}
	if len(data) == 0 {
		return ci
	}

	ci.Mean = Mean(data)
	ci.Margin = z * StdDev(data) / math.Sqrt(float64(len(data)))
	ci.Lower = ci.Mean - ci.Margin
	ci.Upper = ci.Mean + ci.Margin
	return ci
}

// LinearRegression fits y = slope*x + intercept by ordinary least squares.
// With fewer than two points or no variance in x the slope is 0 and the
// intercept is the mean of y.
func LinearRegression(x, y []float64) (slope, intercept float64) {
	n := min(len(x), len(y))
	if n == 0 {
		return 0, 0
	}
	x, y = x[:n], y[:n]

	mx, my := Mean(x), Mean(y)
	var num, den float64
	for i := range x {
		dx := x[i] - mx
		num += dx * (y[i] - my)
		den += dx * dx
	}
	if den == 0 {
		return 0, my
	}
	slope = num / den
	return slope, my - slope*mx
}
