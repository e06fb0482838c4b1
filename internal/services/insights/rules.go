package insights

import (
	"fmt"
	"sort"
	"time"

	"github.com/j-veylop/usage-analytics/internal/models"
	"github.com/j-veylop/usage-analytics/internal/services/stats"
)

const (
	concentrationPercent  = 50.0
	efficiencyPerToken    = 0.00002
	offHoursPercent       = 15.0
	shortSessionSeconds   = 300.0
	growthWindowDays      = 7
	rapidGrowthPercent    = 50.0
	variabilityFactor     = 0.5
	spendOutlierThreshold = 2.0
	minOutlierDays        = 3
)

// modelCosts sums stored cost per model and returns the models sorted by name.
func modelCosts(records []models.UsageRecord) (map[string]float64, map[string]int64, []string) {
	costs := make(map[string]float64)
	tokens := make(map[string]int64)
	for i := range records {
		costs[records[i].Model] += records[i].Cost
		tokens[records[i].Model] += records[i].TotalTokens()
	}
	names := make([]string, 0, len(costs))
	for name := range costs {
		names = append(names, name)
	}
	sort.Strings(names)
	return costs, tokens, names
}

// costConcentration flags a premium model carrying most of the spend.
func (e *Engine) costConcentration(records []models.UsageRecord) []models.Insight {
	costs, _, names := modelCosts(records)
	var total float64
	for _, c := range costs {
		total += c
	}
	if total <= 0 {
		return nil
	}

	var out []models.Insight
	for _, model := range names {
		cost := costs[model]
		share := cost / total * 100
		if share <= concentrationPercent || !models.IsPremiumModel(model) {
			continue
		}

		in := e.insight("cost_model", models.InsightCostOptimization, models.SeverityMedium, models.CategoryCost, 0.85)
		in.Title = "High usage of expensive model detected"
		in.Description = fmt.Sprintf("%s accounts for %.1f%% of your total costs. Consider using cheaper models for simpler tasks.", model, share)
		in.Recommendation = "Route simpler tasks to a mid-tier model to potentially save 40-60% on costs."
		in.Impact = models.ImpactAssessment{
			PotentialSavings:         models.Float(cost * 0.5),
			RiskLevel:                models.RiskLow,
			ImplementationDifficulty: models.DifficultyEasy,
		}
		in.Metadata["model"] = model
		in.Metadata["cost_percentage"] = share
		out = append(out, in)
	}
	return out
}

// tokenEfficiency flags models whose aggregate cost per token is high.
func (e *Engine) tokenEfficiency(records []models.UsageRecord) []models.Insight {
	costs, tokens, names := modelCosts(records)
	var total float64
	for _, c := range costs {
		total += c
	}

	var out []models.Insight
	for _, model := range names {
		if tokens[model] == 0 {
			continue
		}
		perToken := costs[model] / float64(tokens[model])
		if perToken <= efficiencyPerToken {
			continue
		}

		in := e.insight("efficiency_model", models.InsightCostOptimization, models.SeverityLow, models.CategoryCost, 0.75)
		in.Title = "Low token efficiency detected"
		in.Description = fmt.Sprintf("%s has high cost per token ($%.6f). Consider optimizing prompts.", model, perToken)
		in.Recommendation = "Review and optimize prompts to reduce token usage and improve efficiency."
		in.Impact = models.ImpactAssessment{
			PotentialSavings:         models.Float(total * 0.1),
			PotentialEfficiencyGain:  models.Float(20),
			RiskLevel:                models.RiskNone,
			ImplementationDifficulty: models.DifficultyModerate,
		}
		in.Metadata["model"] = model
		in.Metadata["cost_per_token"] = perToken
		out = append(out, in)
	}
	return out
}

func isOffHour(h int) bool {
	return h >= 22 || h <= 6
}

// offHours flags each late-night or early-morning hour that carries a large
// share of requests.
func (e *Engine) offHours(records []models.UsageRecord) []models.Insight {
	var hourly [24]int
	for i := range records {
		hourly[records[i].Timestamp.UTC().Hour()]++
	}

	var out []models.Insight
	total := float64(len(records))
	for hour, n := range hourly {
		share := float64(n) / total * 100
		if !isOffHour(hour) || share <= offHoursPercent {
			continue
		}

		in := e.insight("pattern_off_hours", models.InsightUsagePattern, models.SeverityLow, models.CategoryUsage, 0.80)
		in.Title = "High off-hours usage detected"
		in.Description = fmt.Sprintf("Significant usage at %d:00 (%.1f%% of total). Consider scheduling tasks during business hours.", hour, share)
		in.Recommendation = "Review if off-hours usage is necessary or can be scheduled during regular hours."
		in.Impact = models.ImpactAssessment{
			PotentialEfficiencyGain:  models.Float(10),
			RiskLevel:                models.RiskLow,
			ImplementationDifficulty: models.DifficultyEasy,
		}
		in.Metadata["hour"] = hour
		in.Metadata["percentage"] = share
		out = append(out, in)
	}
	return out
}

// shortSessions flags a low average session length. The savings figure is
// a volume proxy: 5% of the request count.
func (e *Engine) shortSessions(records []models.UsageRecord) []models.Insight {
	sessions := models.BuildSessions(records)

	// BuildSessions always sets EndTime, so every session has a duration.
	n := len(sessions)
	var sum float64
	for i := range sessions {
		sum += float64(sessions[i].DurationSeconds)
	}
	if n == 0 {
		return nil
	}

	avg := sum / float64(n)
	if avg >= shortSessionSeconds {
		return nil
	}

	in := e.insight("pattern_short_sessions", models.InsightUsagePattern, models.SeverityLow, models.CategoryUsage, 0.75)
	in.Title = "Short sessions detected"
	in.Description = fmt.Sprintf("Average session length is %.1f minutes. Consider batching related requests.", avg/60)
	in.Recommendation = "Batch related requests together to reduce session overhead and improve efficiency."
	in.Impact = models.ImpactAssessment{
		PotentialSavings:         models.Float(float64(len(records)) * 0.05),
		PotentialEfficiencyGain:  models.Float(15),
		RiskLevel:                models.RiskNone,
		ImplementationDifficulty: models.DifficultyEasy,
	}
	in.Metadata["avg_session_seconds"] = avg
	in.Metadata["sessions"] = n
	return []models.Insight{in}
}

// dailyCosts returns each observed day's stored cost in date order.
func dailyCosts(records []models.UsageRecord) ([]time.Time, []float64) {
	byDay := make(map[time.Time]float64)
	for i := range records {
		byDay[records[i].Day()] += records[i].Cost
	}
	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	costs := make([]float64, len(days))
	for i, d := range days {
		costs[i] = byDay[d]
	}
	return days, costs
}

// rapidGrowth compares the mean daily cost of the first and last seven
// observed days. The windows overlap when fewer than fourteen days exist.
func (e *Engine) rapidGrowth(records []models.UsageRecord) []models.Insight {
	_, costs := dailyCosts(records)
	if len(costs) < growthWindowDays {
		return nil
	}

	first := stats.Mean(costs[:growthWindowDays])
	last := stats.Mean(costs[len(costs)-growthWindowDays:])
	if first <= 0 {
		return nil
	}
	growth := stats.GrowthRate(last, first)
	if growth <= rapidGrowthPercent {
		return nil
	}

	in := e.insight("trend_rapid_growth", models.InsightTrendAnalysis, models.SeverityMedium, models.CategoryCost, 0.90)
	in.Title = "Rapid cost growth detected"
	in.Description = fmt.Sprintf("Costs have increased by %.1f%% over the analysis period. Monitor usage closely.", growth)
	in.Recommendation = "Review recent usage patterns and implement cost controls if necessary."
	in.Impact = models.ImpactAssessment{
		PotentialSavings:         models.Float(last * 0.2),
		RiskLevel:                models.RiskMedium,
		ImplementationDifficulty: models.DifficultyModerate,
	}
	in.Metadata["growth_rate"] = growth
	return []models.Insight{in}
}

// budgetAlert reports spend against the alert or, failing that, the warning
// threshold. A budget without a positive limit produces nothing.
func (e *Engine) budgetAlert(records []models.UsageRecord, budget *models.BudgetInfo) []models.Insight {
	if budget.MonthlyLimit <= 0 {
		return nil
	}

	var total float64
	for i := range records {
		total += records[i].Cost
	}
	usage := budget.UsagePercentage(total)

	var in models.Insight
	switch {
	case budget.IsAlertExceeded(total):
		in = e.insight("budget_alert_critical", models.InsightBudgetAlert, models.SeverityCritical, models.CategoryCost, 1.0)
		in.Title = "Budget alert threshold exceeded"
		in.Recommendation = "Immediately review usage patterns and implement cost reduction measures."
		in.Impact = models.ImpactAssessment{RiskLevel: models.RiskHigh, ImplementationDifficulty: models.DifficultyHard}
	case budget.IsWarningExceeded(total):
		in = e.insight("budget_alert_warning", models.InsightBudgetAlert, models.SeverityMedium, models.CategoryCost, 1.0)
		in.Title = "Budget warning threshold exceeded"
		in.Recommendation = "Monitor usage closely and consider cost optimization strategies."
		in.Impact = models.ImpactAssessment{RiskLevel: models.RiskMedium, ImplementationDifficulty: models.DifficultyModerate}
	default:
		return nil
	}

	in.Description = fmt.Sprintf("You have used %.1f%% of your monthly budget (%.2f of %.2f %s).",
		usage, total, budget.MonthlyLimit, budget.Currency)
	in.Impact.PotentialSavings = models.Float(budget.MonthlyLimit - total)
	in.Metadata["budget_usage"] = usage
	in.Metadata["total_cost"] = total
	in.Metadata["budget_limit"] = budget.MonthlyLimit
	return []models.Insight{in}
}

// performanceVariability flags a spread in estimated response times that
// exceeds half their mean. The estimate comes from the latency proxy.
func (e *Engine) performanceVariability(records []models.UsageRecord) []models.Insight {
	times := make([]float64, len(records))
	for i := range records {
		times[i] = e.latency(&records[i])
	}

	summary := stats.Summary(times)
	if summary.StdDev <= summary.Mean*variabilityFactor {
		return nil
	}

	in := e.insight("performance_variability", models.InsightPerformance, models.SeverityLow, models.CategoryPerformance, 0.70)
	in.Title = "High response time variability detected"
	in.Description = fmt.Sprintf("Estimated response times vary significantly (std dev: %.2fs). This may indicate inconsistent performance.", summary.StdDev)
	in.Recommendation = "Monitor API performance and consider caching responses for repeated requests."
	in.Impact = models.ImpactAssessment{
		PotentialEfficiencyGain:  models.Float(25),
		RiskLevel:                models.RiskLow,
		ImplementationDifficulty: models.DifficultyModerate,
	}
	in.Metadata["avg_response_time"] = summary.Mean
	in.Metadata["std_dev"] = summary.StdDev
	in.Metadata["estimated"] = true
	return []models.Insight{in}
}

// spendOutliers flags days whose total cost is a z-score outlier among all
// observed days.
func (e *Engine) spendOutliers(records []models.UsageRecord) []models.Insight {
	days, costs := dailyCosts(records)
	if len(costs) < minOutlierDays {
		return nil
	}
	mean := stats.Mean(costs)

	var out []models.Insight
	for _, i := range stats.DetectOutliers(costs, spendOutlierThreshold) {
		date := days[i].Format(models.DateLayout)
		in := e.insight("anomaly_daily_spend", models.InsightAnomalyDetection, models.SeverityHigh, models.CategoryCost, 0.80)
		in.Impact = models.ImpactAssessment{
			RiskLevel:                models.RiskMedium,
			ImplementationDifficulty: models.DifficultyModerate,
		}
		if costs[i] > mean {
			in.Title = "Unusual daily spend spike detected"
			in.Recommendation = "Check what drove usage on this day and whether it will recur."
			in.Impact.PotentialSavings = models.Float(costs[i] - mean)
		} else {
			in.Title = "Unusual daily spend drop detected"
			in.Recommendation = "Confirm that usage on this day was not interrupted unexpectedly."
		}
		in.Description = fmt.Sprintf("Spend on %s was %.2f against a daily average of %.2f.", date, costs[i], mean)
		in.Metadata["date"] = date
		in.Metadata["cost"] = costs[i]
		in.Metadata["daily_average"] = mean
		out = append(out, in)
	}
	return out
}
