// Package report renders an analysis report for the terminal.
package report

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/usage-analytics/internal/models"
)

// MinWidth is the narrowest layout Render produces.
const MinWidth = 40

const chartHeight = 8

// Render formats the report as styled text at most width columns wide.
func Render(r *models.Report, width int) string {
	width = max(width, MinWidth)

	sections := []string{
		TitleStyle.Render("Usage Analytics Report"),
		renderSummary(r),
		renderModels(r, width),
	}
	if r.Budget != nil {
		sections = append(sections, renderBudget(r.Budget, r.Currency))
	}
	if r.Trends != nil && r.Trends.Days > 0 {
		sections = append(sections, renderTrends(r.Trends, width))
	}
	sections = append(sections,
		renderInsights(r.Insights, width),
		renderOptimizations(r.Optimizations, r.Currency, width),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func row(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}

func money(v float64, currency string) string {
	return fmt.Sprintf("%.2f %s", v, currency)
}

func renderSummary(r *models.Report) string {
	b := r.Breakdown
	lines := []string{
		SectionStyle.Render("Summary"),
		row("Generated", r.GeneratedAt.Format("2006-01-02 15:04 MST")),
		row("Records", fmt.Sprintf("%d", r.RecordCount)),
		row("Total cost", money(b.TotalCost, r.Currency)),
		row("Avg per request", money(b.AvgCostPerRequest, r.Currency)),
		row("Tokens", fmt.Sprintf("%d in / %d out", b.TotalInputTokens, b.TotalOutputTokens)),
		row("Sessions", fmt.Sprintf("%d", r.Sessions.TotalSessions)),
	}
	if r.RecordCount > 0 {
		lines = append(lines,
			row("Peak hour", fmt.Sprintf("%02d:00", r.Usage.PeakHour)),
			row(fmt.Sprintf("Projected %dd", r.Projection.ProjectionDays), money(r.Projection.TrendAdjustedCost, r.Currency)),
		)
	}
	if lookups := r.Cache.Hits + r.Cache.Misses; lookups > 0 {
		lines = append(lines, row("Price cache", fmt.Sprintf("%.0f%% hits", r.Cache.HitRate()*100)))
	}
	return CardStyle.Render(strings.Join(lines, "\n"))
}

func renderModels(r *models.Report, width int) string {
	if len(r.Breakdown.CostByModel) == 0 {
		return MutedStyle.Render("No model usage recorded")
	}

	type entry struct {
		model string
		cost  float64
	}
	entries := make([]entry, 0, len(r.Breakdown.CostByModel))
	for m, c := range r.Breakdown.CostByModel {
		entries = append(entries, entry{m, c})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(b.cost, a.cost); c != 0 {
			return c
		}
		return strings.Compare(a.model, b.model)
	})

	values := make([]float64, len(entries))
	labels := make([]string, len(entries))
	for i, e := range entries {
		values[i] = e.cost
		labels[i] = e.model
	}

	lines := []string{
		SectionStyle.Render("Cost by model"),
		RenderBarChart(values, labels, width-4),
	}
	if r.Breakdown.MostCostEffectiveModel != "" {
		lines = append(lines, MutedStyle.Render("Most cost-effective: "+r.Breakdown.MostCostEffectiveModel))
	}
	return CardStyle.Render(strings.Join(lines, "\n"))
}

func renderBudget(b *models.BudgetAnalysis, currency string) string {
	status := fmt.Sprintf("%.1f%% of %s", b.UsagePercentage, money(b.Budget.MonthlyLimit, currency))
	lines := []string{
		SectionStyle.Render("Budget"),
		row("Used", BudgetStyle(b).Render(status)),
		row("Daily average", money(b.DailyAverage, currency)),
		row("Projected monthly", money(b.ProjectedMonthly, currency)),
		row("Days remaining", fmt.Sprintf("%d", b.DaysRemaining)),
	}
	if b.IsBudgetExceeded {
		lines = append(lines, CriticalStyle.Render("Budget exceeded"))
	} else if b.ProjectedOverLimit {
		lines = append(lines, MediumStyle.Render("Projected to exceed the limit"))
	}
	return CardStyle.Render(strings.Join(lines, "\n"))
}

func renderTrends(t *models.TrendAnalysis, width int) string {
	lines := []string{
		SectionStyle.Render("Trends"),
		row("Period", fmt.Sprintf("%s to %s (%d days)",
			t.PeriodStart.Format("2006-01-02"), t.PeriodEnd.Format("2006-01-02"), t.Days)),
		row("Direction", DirectionStyle(t.Direction).Render(string(t.Direction))),
		row("Cost growth", fmt.Sprintf("%+.1f%%", t.CostTrend.GrowthRate)),
		"",
		RenderCostChart(t.DailyCosts, t.Forecast, width-16, chartHeight),
		"",
		row("Hourly", RenderHourlyHeatmap(t.DailyPatterns.HourlyRequests)),
		row("Weekly", RenderWeeklyPattern(t.WeeklyPatterns.WeekdayRequests)),
	}

	if len(t.Anomalies) > 0 {
		lines = append(lines, "", fmt.Sprintf("%d anomalies", len(t.Anomalies)))
		for _, a := range t.Anomalies {
			lines = append(lines, SeverityStyle(a.Severity).Render(
				ansi.Truncate("  "+a.Description, width-4, "…")))
		}
	}
	for _, msg := range t.Insights {
		lines = append(lines, MutedStyle.Render(ansi.Truncate("• "+msg, width-4, "…")))
	}
	return CardStyle.Render(strings.Join(lines, "\n"))
}

func renderInsights(insights []models.Insight, width int) string {
	if len(insights) == 0 {
		return MutedStyle.Render("No insights")
	}

	lines := []string{SectionStyle.Render("Insights")}
	for _, in := range insights {
		badge := SeverityStyle(in.Severity).Render(strings.ToUpper(string(in.Severity)))
		lines = append(lines,
			badge+" "+in.Title,
			MutedStyle.Render(ansi.Truncate("  "+in.Description, width-4, "…")),
		)
		if in.Recommendation != "" {
			lines = append(lines, ansi.Truncate("  → "+in.Recommendation, width-4, "…"))
		}
	}
	return CardStyle.Render(strings.Join(lines, "\n"))
}

func renderOptimizations(opts []models.OptimizationSuggestion, currency string, width int) string {
	if len(opts) == 0 {
		return MutedStyle.Render("No optimization suggestions")
	}

	lines := []string{SectionStyle.Render("Optimizations")}
	for _, o := range opts {
		lines = append(lines,
			fmt.Sprintf("[%s] %s (save ~%s)", o.Priority, o.Title, money(o.EstimatedSavings, currency)),
			MutedStyle.Render(ansi.Truncate("  "+o.Description, width-4, "…")),
		)
	}
	return CardStyle.Render(strings.Join(lines, "\n"))
}
