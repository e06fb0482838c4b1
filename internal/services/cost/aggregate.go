package cost

import (
	"sort"

	"github.com/j-veylop/usage-analytics/internal/models"
)

// CalculateTotalCost sums the effective cost of every record.
func (c *Calculator) CalculateTotalCost(records []models.UsageRecord) (float64, error) {
	var total float64
	for i := range records {
		cost, err := c.EffectiveCost(&records[i])
		if err != nil {
			return 0, err
		}
		total += cost
	}
	return total, nil
}

// groupCost folds effective costs by the key returned for each record.
// Records for which key reports false are left out.
func (c *Calculator) groupCost(records []models.UsageRecord, key func(*models.UsageRecord) (string, bool)) (map[string]float64, error) {
	out := make(map[string]float64)
	for i := range records {
		r := &records[i]
		k, ok := key(r)
		if !ok {
			continue
		}
		cost, err := c.EffectiveCost(r)
		if err != nil {
			return nil, err
		}
		out[k] += cost
	}
	return out, nil
}

// CalculateCostByModel partitions cost by model name.
func (c *Calculator) CalculateCostByModel(records []models.UsageRecord) (map[string]float64, error) {
	return c.groupCost(records, func(r *models.UsageRecord) (string, bool) {
		return r.Model, true
	})
}

// CalculateCostByDate partitions cost by UTC day, keyed with models.DateLayout.
func (c *Calculator) CalculateCostByDate(records []models.UsageRecord) (map[string]float64, error) {
	return c.groupCost(records, func(r *models.UsageRecord) (string, bool) {
		return r.DateKey(), true
	})
}

// CalculateCostBySession partitions cost by session ID. Records without a
// session are not counted.
func (c *Calculator) CalculateCostBySession(records []models.UsageRecord) (map[string]float64, error) {
	return c.groupCost(records, func(r *models.UsageRecord) (string, bool) {
		return r.SessionID, r.SessionID != ""
	})
}

// CalculateCostByUser partitions cost by user ID. Records without a user
// are not counted.
func (c *Calculator) CalculateCostByUser(records []models.UsageRecord) (map[string]float64, error) {
	return c.groupCost(records, func(r *models.UsageRecord) (string, bool) {
		return r.UserID, r.UserID != ""
	})
}

// CalculateDetailedBreakdown computes totals, averages and every partition
// in one pass. Ties for most expensive and most cost-effective model go to
// the lexically smallest name.
func (c *Calculator) CalculateDetailedBreakdown(records []models.UsageRecord) (models.DetailedCostBreakdown, error) {
	b := models.DetailedCostBreakdown{
		CostByModel:     make(map[string]float64),
		CostByDate:      make(map[string]float64),
		ModelEfficiency: make(map[string]float64),
		Currency:        c.config.Currency,
	}
	if c.config.EnableBreakdown {
		b.CostBySession = make(map[string]float64)
		b.CostByUser = make(map[string]float64)
	}

	modelTokens := make(map[string]int64)
	for i := range records {
		r := &records[i]
		cost, err := c.EffectiveCost(r)
		if err != nil {
			return models.DetailedCostBreakdown{}, err
		}

		b.TotalCost += cost
		b.TotalRequests++
		b.TotalInputTokens += r.InputTokens
		b.TotalOutputTokens += r.OutputTokens
		b.CostByModel[r.Model] += cost
		b.CostByDate[r.DateKey()] += cost
		modelTokens[r.Model] += r.TotalTokens()

		if c.config.EnableBreakdown {
			if r.SessionID != "" {
				b.CostBySession[r.SessionID] += cost
			}
			if r.UserID != "" {
				b.CostByUser[r.UserID] += cost
			}
		}
	}

	if b.TotalRequests > 0 {
		b.AvgCostPerRequest = b.TotalCost / float64(b.TotalRequests)
	}
	if tokens := b.TotalInputTokens + b.TotalOutputTokens; tokens > 0 {
		b.AvgCostPerToken = b.TotalCost / float64(tokens)
	}

	names := sortedKeys(b.CostByModel)
	for _, model := range names {
		if tokens := modelTokens[model]; tokens > 0 {
			b.ModelEfficiency[model] = b.CostByModel[model] / float64(tokens)
		}
	}

	for _, model := range names {
		if b.MostExpensiveModel == "" || b.CostByModel[model] > b.CostByModel[b.MostExpensiveModel] {
			b.MostExpensiveModel = model
		}
		eff, ok := b.ModelEfficiency[model]
		if !ok {
			continue
		}
		if b.MostCostEffectiveModel == "" || eff < b.ModelEfficiency[b.MostCostEffectiveModel] {
			b.MostCostEffectiveModel = model
		}
	}

	return b, nil
}

// CalculateBudgetAnalysis compares spend with the budget and projects it to
// the end of the month.
func (c *Calculator) CalculateBudgetAnalysis(records []models.UsageRecord, budget models.BudgetInfo) (models.BudgetAnalysis, error) {
	total, err := c.CalculateTotalCost(records)
	if err != nil {
		return models.BudgetAnalysis{}, err
	}

	a := models.BudgetAnalysis{
		Budget:            budget,
		TotalCost:         total,
		UsagePercentage:   budget.UsagePercentage(total),
		IsBudgetExceeded:  budget.MonthlyLimit > 0 && total > budget.MonthlyLimit,
		IsWarningExceeded: budget.IsWarningExceeded(total),
		IsAlertExceeded:   budget.IsAlertExceeded(total),
	}

	if len(records) > 0 {
		first, last := records[0].Day(), records[0].Day()
		for i := range records[1:] {
			d := records[i+1].Day()
			if d.Before(first) {
				first = d
			}
			if d.After(last) {
				last = d
			}
		}
		a.UsagePeriodDays = int(last.Sub(first).Hours() / 24)
	}
	if a.UsagePeriodDays > 0 {
		a.DailyAverage = total / float64(a.UsagePeriodDays)
	}

	a.DaysRemaining = c.monthRemainder(c.now())
	a.ProjectedMonthly = total + a.DailyAverage*float64(a.DaysRemaining)
	a.ProjectedOverLimit = budget.MonthlyLimit > 0 && a.ProjectedMonthly > budget.MonthlyLimit

	return a, nil
}

// CalculateCostProjection extrapolates the observed daily average over the
// given number of days. The trend compares the mean daily cost of the later
// half of the observed days with the earlier half.
func (c *Calculator) CalculateCostProjection(records []models.UsageRecord, days int) (models.CostProjection, error) {
	p := models.CostProjection{ProjectionDays: days}
	if len(records) == 0 {
		return p, nil
	}

	byDate, err := c.CalculateCostByDate(records)
	if err != nil {
		return models.CostProjection{}, err
	}

	dates := sortedKeys(byDate)
	daily := make([]float64, len(dates))
	var total float64
	for i, d := range dates {
		daily[i] = byDate[d]
		total += daily[i]
	}

	p.ObservedDays = len(daily)
	p.DailyAverage = total / float64(len(daily))

	if len(daily) >= 2 {
		mid := len(daily) / 2
		firstAvg := mean(daily[:mid])
		secondAvg := mean(daily[mid:])
		if firstAvg > 0 {
			p.TrendPercentage = (secondAvg - firstAvg) / firstAvg * 100
		}
	}

	p.ProjectedCost = p.DailyAverage * float64(days)
	p.TrendAdjustedCost = p.ProjectedCost * (1 + p.TrendPercentage/100)

	return p, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
