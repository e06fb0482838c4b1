package cost

import (
	"fmt"
	"sort"
	"time"

	"github.com/j-veylop/usage-analytics/internal/logger"
	"github.com/j-veylop/usage-analytics/internal/models"
)

const (
	// PremiumSpendThreshold is the spend on a premium model above which a
	// cheaper tier is suggested.
	PremiumSpendThreshold = 10.0
	premiumSwitchSavings  = 0.6
	batchingSavings       = 0.1
	minSessionRecords     = 3
)

// MonthRemainderFunc estimates how many days are left in the month of now.
type MonthRemainderFunc func(now time.Time) int

// FixedMonthRemainder always answers 30 days. It is the default and keeps
// budget projections independent of the calendar.
func FixedMonthRemainder(time.Time) int {
	return 30
}

// CalendarMonthRemainder counts the days after now until the end of its
// calendar month.
func CalendarMonthRemainder(now time.Time) int {
	now = now.UTC()
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return lastDay - now.Day()
}

// RepeatDetector finds (model, input, output) signatures that occur more
// than once. cost returns the cost attributed to a record.
type RepeatDetector func(records []models.UsageRecord, cost func(*models.UsageRecord) float64) []models.RepeatedRequest

func requestSignature(r *models.UsageRecord) string {
	return fmt.Sprintf("%s:%d:%d", r.Model, r.InputTokens, r.OutputTokens)
}

// FirstRepeatedRequest stops at the first signature seen twice and reports
// only that one, with the cost of the repeating record. It is the default
// detector; AllRepeatedRequests reports every repeated signature.
func FirstRepeatedRequest(records []models.UsageRecord, cost func(*models.UsageRecord) float64) []models.RepeatedRequest {
	seen := make(map[string]int)
	for i := range records {
		r := &records[i]
		sig := requestSignature(r)
		seen[sig]++
		if seen[sig] > 1 {
			return []models.RepeatedRequest{{Signature: sig, Count: seen[sig], Cost: cost(r)}}
		}
	}
	return nil
}

// AllRepeatedRequests reports every signature that occurs more than once.
// Cost sums every occurrence after the first.
func AllRepeatedRequests(records []models.UsageRecord, cost func(*models.UsageRecord) float64) []models.RepeatedRequest {
	counts := make(map[string]int)
	repeatCost := make(map[string]float64)
	for i := range records {
		r := &records[i]
		sig := requestSignature(r)
		counts[sig]++
		if counts[sig] > 1 {
			repeatCost[sig] += cost(r)
		}
	}

	var out []models.RepeatedRequest
	for sig, n := range counts {
		if n > 1 {
			out = append(out, models.RepeatedRequest{Signature: sig, Count: n, Cost: repeatCost[sig]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Signature < out[j].Signature })
	return out
}

// GenerateOptimizationSuggestions runs the model-switch, batching and
// caching rules. It returns nothing when optimization is disabled.
func (c *Calculator) GenerateOptimizationSuggestions(records []models.UsageRecord) ([]models.OptimizationSuggestion, error) {
	if !c.config.EnableOptimization {
		return nil, nil
	}

	var suggestions []models.OptimizationSuggestion

	byModel, err := c.CalculateCostByModel(records)
	if err != nil {
		return nil, err
	}
	for _, model := range sortedKeys(byModel) {
		spent := byModel[model]
		if !models.IsPremiumModel(model) || spent <= PremiumSpendThreshold {
			continue
		}
		suggestions = append(suggestions, models.OptimizationSuggestion{
			Type:     models.OptimizationModelSwitch,
			Priority: models.PriorityMedium,
			Title:    "Consider a cheaper model tier for simpler tasks",
			Description: fmt.Sprintf(
				"You've spent $%.2f on %s. Routing simpler tasks to a smaller model could cut this spend.",
				spent, model),
			AffectedModel:    model,
			CurrentCost:      spent,
			EstimatedSavings: spent * premiumSwitchSavings,
		})
	}

	sessionSize := make(map[string]int)
	for i := range records {
		if id := records[i].SessionID; id != "" {
			sessionSize[id]++
		}
	}
	var shortCost float64
	shortRecords := 0
	shortSessions := 0
	for _, n := range sessionSize {
		if n < minSessionRecords {
			shortSessions++
		}
	}
	for i := range records {
		r := &records[i]
		if r.SessionID == "" || sessionSize[r.SessionID] >= minSessionRecords {
			continue
		}
		cost, err := c.EffectiveCost(r)
		if err != nil {
			return nil, err
		}
		shortCost += cost
		shortRecords++
	}
	if shortRecords > 0 {
		suggestions = append(suggestions, models.OptimizationSuggestion{
			Type:     models.OptimizationBatching,
			Priority: models.PriorityLow,
			Title:    "Batch similar requests together",
			Description: fmt.Sprintf(
				"%d sessions (%d requests) have fewer than %d requests. Batching them could reduce overhead.",
				shortSessions, shortRecords, minSessionRecords),
			CurrentCost:      shortCost,
			EstimatedSavings: shortCost * batchingSavings,
			AffectedRecords:  shortRecords,
		})
	}

	var costErr error
	repeated := c.repeats(records, func(r *models.UsageRecord) float64 {
		cost, err := c.EffectiveCost(r)
		if err != nil {
			logger.Debug("repeated request left unpriced", "record", r.ID, "model", r.Model, "error", err)
			if costErr == nil {
				costErr = fmt.Errorf("pricing repeated request: %w", err)
			}
			return 0
		}
		return cost
	})
	if costErr != nil {
		return nil, costErr
	}
	if len(repeated) > 0 {
		var savings float64
		affected := 0
		for _, rr := range repeated {
			savings += rr.Cost
			affected += rr.Count
		}
		suggestions = append(suggestions, models.OptimizationSuggestion{
			Type:     models.OptimizationCaching,
			Priority: models.PriorityHigh,
			Title:    "Cache results of repeated requests",
			Description: fmt.Sprintf(
				"Found %d repeated request patterns that could be served from a cache.",
				len(repeated)),
			CurrentCost:      savings,
			EstimatedSavings: savings,
			AffectedRecords:  affected,
		})
	}

	return suggestions, nil
}
