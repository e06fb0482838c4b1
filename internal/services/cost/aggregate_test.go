package cost

import (
	"testing"
	"time"

	"github.com/j-veylop/usage-analytics/internal/models"
)

func sampleRecords() []models.UsageRecord {
	day1 := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	recs := []models.UsageRecord{
		record(day1, "claude-3-opus", 1000, 1000, "s1"),
		record(day1.Add(time.Minute), "claude-3-sonnet", 2000, 500, "s1"),
		record(day1.Add(2*time.Minute), "claude-3-haiku", 4000, 4000, "s1"),
		record(day2, "claude-3-sonnet", 1000, 1000, "s2"),
		record(day2.Add(time.Hour), "claude-3-haiku", 1000, 1000, ""),
	}
	recs[0].UserID = "alice"
	recs[3].UserID = "bob"
	return recs
}

func sumValues(m map[string]float64) float64 {
	var s float64
	for _, v := range m {
		s += v
	}
	return s
}

func TestPartitionConsistency(t *testing.T) {
	c := newTestCalculator(t, DefaultConfig())
	records := sampleRecords()

	total, err := c.CalculateTotalCost(records)
	if err != nil {
		t.Fatalf("CalculateTotalCost() error = %v", err)
	}

	var perRecord float64
	for i := range records {
		cost, err := c.CalculateCost(&records[i])
		if err != nil {
			t.Fatalf("CalculateCost() error = %v", err)
		}
		perRecord += cost
	}
	if !approx(total, perRecord) {
		t.Errorf("CalculateTotalCost() = %v, want %v", total, perRecord)
	}

	byModel, _ := c.CalculateCostByModel(records)
	byDate, _ := c.CalculateCostByDate(records)
	if !approx(sumValues(byModel), total) {
		t.Errorf("sum(cost by model) = %v, want %v", sumValues(byModel), total)
	}
	if !approx(sumValues(byDate), total) {
		t.Errorf("sum(cost by date) = %v, want %v", sumValues(byDate), total)
	}
	if len(byDate) != 2 {
		t.Errorf("cost by date has %d days, want 2", len(byDate))
	}

	bySession, _ := c.CalculateCostBySession(records)
	if len(bySession) != 2 {
		t.Errorf("cost by session has %d entries, want 2", len(bySession))
	}
	byUser, _ := c.CalculateCostByUser(records)
	if len(byUser) != 2 {
		t.Errorf("cost by user has %d entries, want 2", len(byUser))
	}
}

func TestCalculateDetailedBreakdown(t *testing.T) {
	c := newTestCalculator(t, DefaultConfig())
	records := sampleRecords()

	b, err := c.CalculateDetailedBreakdown(records)
	if err != nil {
		t.Fatalf("CalculateDetailedBreakdown() error = %v", err)
	}

	if b.TotalRequests != 5 {
		t.Errorf("TotalRequests = %d, want 5", b.TotalRequests)
	}
	if b.TotalInputTokens != 9000 || b.TotalOutputTokens != 7500 {
		t.Errorf("tokens = %d/%d, want 9000/7500", b.TotalInputTokens, b.TotalOutputTokens)
	}
	if b.MostExpensiveModel != "claude-3-opus" {
		t.Errorf("MostExpensiveModel = %s, want claude-3-opus", b.MostExpensiveModel)
	}
	if b.MostCostEffectiveModel != "claude-3-haiku" {
		t.Errorf("MostCostEffectiveModel = %s, want claude-3-haiku", b.MostCostEffectiveModel)
	}
	if !approx(b.AvgCostPerRequest, b.TotalCost/5) {
		t.Errorf("AvgCostPerRequest = %v", b.AvgCostPerRequest)
	}
	if b.Currency != "USD" {
		t.Errorf("Currency = %s, want USD", b.Currency)
	}
	if len(b.CostBySession) != 2 || len(b.CostByUser) != 2 {
		t.Errorf("session/user breakdown sizes = %d/%d, want 2/2", len(b.CostBySession), len(b.CostByUser))
	}
}

func TestCalculateDetailedBreakdown_TieBreaks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableBreakdown = false
	c := New(cfg)
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	a := models.NewUsageRecord(ts, "zeta", 100, 0, 1)
	b := models.NewUsageRecord(ts, "alpha", 100, 0, 1)
	b.SessionID = "s"

	got, err := c.CalculateDetailedBreakdown([]models.UsageRecord{a, b})
	if err != nil {
		t.Fatalf("CalculateDetailedBreakdown() error = %v", err)
	}
	if got.MostExpensiveModel != "alpha" {
		t.Errorf("MostExpensiveModel = %s, want alpha", got.MostExpensiveModel)
	}
	if got.MostCostEffectiveModel != "alpha" {
		t.Errorf("MostCostEffectiveModel = %s, want alpha", got.MostCostEffectiveModel)
	}
	if got.CostBySession != nil {
		t.Error("CostBySession should be omitted when breakdown is disabled")
	}
}

func TestCalculateDetailedBreakdown_Empty(t *testing.T) {
	c := newTestCalculator(t, DefaultConfig())
	b, err := c.CalculateDetailedBreakdown(nil)
	if err != nil {
		t.Fatalf("CalculateDetailedBreakdown() error = %v", err)
	}
	if b.TotalCost != 0 || b.AvgCostPerRequest != 0 || b.MostExpensiveModel != "" {
		t.Errorf("expected zeroed breakdown, got %+v", b)
	}
}

func TestCalculateBudgetAnalysis(t *testing.T) {
	c := New(DefaultConfig())
	c.SetClock(func() time.Time { return time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC) })

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	records := []models.UsageRecord{
		models.NewUsageRecord(start, "m", 1, 1, 40),
		models.NewUsageRecord(start.AddDate(0, 0, 10), "m", 1, 1, 45),
	}
	budget := models.NewBudgetInfo(100, "USD")

	a, err := c.CalculateBudgetAnalysis(records, budget)
	if err != nil {
		t.Fatalf("CalculateBudgetAnalysis() error = %v", err)
	}

	if !approx(a.TotalCost, 85) || !approx(a.UsagePercentage, 85) {
		t.Errorf("TotalCost/UsagePercentage = %v/%v, want 85/85", a.TotalCost, a.UsagePercentage)
	}
	if !a.IsWarningExceeded {
		t.Error("IsWarningExceeded = false, want true")
	}
	if a.IsAlertExceeded {
		t.Error("IsAlertExceeded = true, want false")
	}
	if a.IsBudgetExceeded {
		t.Error("IsBudgetExceeded = true, want false")
	}
	if a.UsagePeriodDays != 10 || !approx(a.DailyAverage, 8.5) {
		t.Errorf("UsagePeriodDays/DailyAverage = %d/%v, want 10/8.5", a.UsagePeriodDays, a.DailyAverage)
	}
	if a.DaysRemaining != 30 {
		t.Errorf("DaysRemaining = %d, want 30", a.DaysRemaining)
	}
	if !approx(a.ProjectedMonthly, 85+8.5*30) || !a.ProjectedOverLimit {
		t.Errorf("ProjectedMonthly = %v, ProjectedOverLimit = %v", a.ProjectedMonthly, a.ProjectedOverLimit)
	}

	c.SetMonthRemainder(CalendarMonthRemainder)
	a, _ = c.CalculateBudgetAnalysis(records, budget)
	if a.DaysRemaining != 20 {
		t.Errorf("DaysRemaining with calendar remainder = %d, want 20", a.DaysRemaining)
	}
}

func TestCalculateBudgetAnalysis_SingleDay(t *testing.T) {
	c := New(DefaultConfig())
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	records := []models.UsageRecord{
		models.NewUsageRecord(ts, "m", 1, 1, 5),
		models.NewUsageRecord(ts.Add(time.Hour), "m", 1, 1, 5),
	}

	a, err := c.CalculateBudgetAnalysis(records, models.NewBudgetInfo(100, "USD"))
	if err != nil {
		t.Fatalf("CalculateBudgetAnalysis() error = %v", err)
	}
	if a.DailyAverage != 0 || !approx(a.ProjectedMonthly, 10) {
		t.Errorf("DailyAverage/ProjectedMonthly = %v/%v, want 0/10", a.DailyAverage, a.ProjectedMonthly)
	}
}

func TestCalendarMonthRemainder(t *testing.T) {
	tests := []struct {
		now  time.Time
		want int
	}{
		{time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 28},
		{time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), 0},
		{time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC), 16},
	}
	for _, tt := range tests {
		if got := CalendarMonthRemainder(tt.now); got != tt.want {
			t.Errorf("CalendarMonthRemainder(%v) = %d, want %d", tt.now, got, tt.want)
		}
	}
	if got := FixedMonthRemainder(time.Now()); got != 30 {
		t.Errorf("FixedMonthRemainder() = %d, want 30", got)
	}
}

func TestCalculateCostProjection(t *testing.T) {
	c := New(DefaultConfig())
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	// Chronological costs 4, 2, 6, 8: halves average 3 and 7.
	costs := []float64{4, 2, 6, 8}
	var records []models.UsageRecord
	for i, cost := range costs {
		records = append(records, models.NewUsageRecord(start.AddDate(0, 0, i), "m", 1, 1, cost))
	}

	p, err := c.CalculateCostProjection(records, 10)
	if err != nil {
		t.Fatalf("CalculateCostProjection() error = %v", err)
	}
	if p.ObservedDays != 4 || !approx(p.DailyAverage, 5) {
		t.Errorf("ObservedDays/DailyAverage = %d/%v, want 4/5", p.ObservedDays, p.DailyAverage)
	}
	wantTrend := (7.0 - 3.0) / 3.0 * 100
	if !approx(p.TrendPercentage, wantTrend) {
		t.Errorf("TrendPercentage = %v, want %v", p.TrendPercentage, wantTrend)
	}
	if !approx(p.ProjectedCost, 50) || !approx(p.TrendAdjustedCost, 50*(1+wantTrend/100)) {
		t.Errorf("ProjectedCost/TrendAdjustedCost = %v/%v", p.ProjectedCost, p.TrendAdjustedCost)
	}

	empty, err := c.CalculateCostProjection(nil, 10)
	if err != nil || empty.ProjectedCost != 0 {
		t.Errorf("CalculateCostProjection(nil) = %+v, %v", empty, err)
	}
}
