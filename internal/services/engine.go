// Package services wires the analysis components into a single engine.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/j-veylop/usage-analytics/internal/config"
	"github.com/j-veylop/usage-analytics/internal/logger"
	"github.com/j-veylop/usage-analytics/internal/models"
	"github.com/j-veylop/usage-analytics/internal/services/cost"
	"github.com/j-veylop/usage-analytics/internal/services/insights"
	"github.com/j-veylop/usage-analytics/internal/services/stats"
	"github.com/j-veylop/usage-analytics/internal/services/trends"
)

// ProjectionDays is the horizon of the report's cost projection.
const ProjectionDays = 30

// notify is replaced in tests.
var notify = func(title, body string) error {
	return beeep.Notify(title, body, "")
}

// Engine runs the full analysis: cost enrichment, breakdowns, statistics,
// trends, budget, optimization suggestions and insights.
type Engine struct {
	cfg        *config.Config
	calculator *cost.Calculator
	trends     *trends.Analyzer
	insights   *insights.Engine
	now        func() time.Time
}

// NewEngine builds every component from the configuration.
func NewEngine(cfg *config.Config) *Engine {
	costConfig := cost.DefaultConfig()
	costConfig.Currency = cfg.Currency
	costConfig.TaxRate = cfg.CostTaxRate
	costConfig.IncludeTax = cfg.CostIncludeTax
	costConfig.EnableBreakdown = cfg.CostEnableBreakdown
	costConfig.EnableOptimization = cfg.CostEnableOptimization

	trendConfig := trends.DefaultConfig()
	trendConfig.AnalysisPeriodDays = cfg.AnalysisPeriodDays
	trendConfig.SmoothingFactor = cfg.SmoothingFactor
	trendConfig.EnableAnomalyDetection = cfg.EnableAnomalyDetection
	trendConfig.AnomalyThreshold = cfg.AnomalyThreshold
	trendConfig.EnableForecasting = cfg.EnableForecasting
	trendConfig.ForecastHorizonDays = cfg.ForecastHorizonDays

	insightConfig := insights.DefaultConfig()
	insightConfig.EnableCostInsights = cfg.EnableCostInsights
	insightConfig.EnableUsageInsights = cfg.EnableUsageInsights
	insightConfig.EnableAnomalyInsights = cfg.EnableAnomalyInsights
	insightConfig.EnableTrendInsights = cfg.EnableTrendInsights
	insightConfig.EnableBudgetInsights = cfg.EnableBudgetInsights
	insightConfig.MinConfidence = cfg.MinConfidence
	insightConfig.MaxInsights = cfg.MaxInsights

	return &Engine{
		cfg:        cfg,
		calculator: cost.New(costConfig),
		trends:     trends.New(trendConfig),
		insights:   insights.New(insightConfig),
		now:        time.Now,
	}
}

// SetClock replaces the clock of the engine and of every component that
// reads the current time.
func (e *Engine) SetClock(now func() time.Time) {
	if now == nil {
		return
	}
	e.now = now
	e.calculator.SetClock(now)
	e.insights.SetClock(now)
}

// Calculator returns the cost calculator.
func (e *Engine) Calculator() *cost.Calculator {
	return e.calculator
}

// Trends returns the trend analyzer.
func (e *Engine) Trends() *trends.Analyzer {
	return e.trends
}

// Insights returns the insights engine.
func (e *Engine) Insights() *insights.Engine {
	return e.insights
}

// LoadPricing merges price history into the calculator's catalog.
func (e *Engine) LoadPricing(entries []models.PricingInfo) {
	e.calculator.LoadPricingData(entries)
}

// ConfiguredBudget returns the budget from configuration, or nil when no
// monthly limit is set.
func (e *Engine) ConfiguredBudget() *models.BudgetInfo {
	if !e.cfg.HasBudget() {
		return nil
	}
	b := models.NewBudgetInfo(e.cfg.BudgetMonthlyLimit, e.cfg.Currency)
	b.WarningThreshold = e.cfg.BudgetWarningThreshold
	b.AlertThreshold = e.cfg.BudgetAlertThreshold
	return &b
}

// Analyze runs every stage over records and returns the combined report.
// budget may be nil. The context is checked between stages.
func (e *Engine) Analyze(ctx context.Context, records []models.UsageRecord, budget *models.BudgetInfo) (*models.Report, error) {
	start := time.Now()
	report := &models.Report{
		GeneratedAt: e.now().UTC(),
		Currency:    e.cfg.Currency,
		RecordCount: len(records),
	}

	var enriched []models.UsageRecord
	stages := []struct {
		name string
		run  func() error
	}{
		{"enrich", func() error {
			var err error
			enriched, err = e.calculator.EnrichCosts(records)
			return err
		}},
		{"breakdown", func() error {
			var err error
			report.Breakdown, err = e.calculator.CalculateDetailedBreakdown(enriched)
			return err
		}},
		{"statistics", func() error {
			report.Usage = stats.UsageStats(enriched)
			report.Sessions = stats.SessionStats(models.BuildSessions(enriched))
			return nil
		}},
		{"trends", func() error {
			var err error
			report.Trends, err = e.trends.Analyze(enriched)
			return err
		}},
		{"budget", func() error {
			if budget == nil {
				return nil
			}
			a, err := e.calculator.CalculateBudgetAnalysis(enriched, *budget)
			if err != nil {
				return err
			}
			report.Budget = &a
			return nil
		}},
		{"optimization", func() error {
			var err error
			report.Optimizations, err = e.calculator.GenerateOptimizationSuggestions(enriched)
			return err
		}},
		{"projection", func() error {
			var err error
			report.Projection, err = e.calculator.CalculateCostProjection(enriched, ProjectionDays)
			return err
		}},
		{"insights", func() error {
			report.Insights = e.insights.Generate(enriched, budget)
			return nil
		}},
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis cancelled before %s: %w", stage.name, err)
		}
		if err := stage.run(); err != nil {
			return nil, fmt.Errorf("%s: %w", stage.name, err)
		}
	}

	if report.Optimizations == nil {
		report.Optimizations = []models.OptimizationSuggestion{}
	}
	report.Cache = e.calculator.CacheStats()

	logger.Info("analysis complete",
		"records", len(records),
		"insights", len(report.Insights),
		"duration", time.Since(start))
	return report, nil
}

// NotifyCritical sends a desktop notification for every Critical insight
// in the report and returns how many were sent.
func (e *Engine) NotifyCritical(report *models.Report) int {
	sent := 0
	for _, in := range report.Insights {
		if in.Severity != models.SeverityCritical {
			continue
		}
		if err := notify(in.Title, in.Description); err != nil {
			logger.Warn("notification failed", "insight", in.ID, "error", err)
			continue
		}
		sent++
	}
	return sent
}
