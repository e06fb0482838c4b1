package cost

import (
	"errors"
	"testing"
	"time"

	"github.com/j-veylop/usage-analytics/internal/models"
)

func TestSummaries_EmptyInput(t *testing.T) {
	c := New(DefaultConfig())

	if _, err := c.CalculateDailySummary(nil); !errors.Is(err, models.ErrEmptyInput) {
		t.Errorf("CalculateDailySummary(nil) error = %v, want ErrEmptyInput", err)
	}
	if _, err := c.CalculateWeeklySummary(nil); !errors.Is(err, models.ErrEmptyInput) {
		t.Errorf("CalculateWeeklySummary(nil) error = %v, want ErrEmptyInput", err)
	}
	if _, err := c.CalculateMonthlySummary(nil); !errors.Is(err, models.ErrEmptyInput) {
		t.Errorf("CalculateMonthlySummary(nil) error = %v, want ErrEmptyInput", err)
	}
	if _, err := c.CalculateSessionAnalysis(nil); !errors.Is(err, models.ErrEmptyInput) {
		t.Errorf("CalculateSessionAnalysis(nil) error = %v, want ErrEmptyInput", err)
	}
}

func TestCalculateDailySummary(t *testing.T) {
	c := newTestCalculator(t, DefaultConfig())
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	records := []models.UsageRecord{
		record(day.Add(9*time.Hour), "claude-3-haiku", 1000, 1000, "a"),
		record(day.Add(9*time.Hour+time.Minute), "claude-3-sonnet", 1000, 1000, "a"),
		record(day.Add(15*time.Hour), "claude-3-sonnet", 1000, 1000, "b"),
		record(day.Add(15*time.Hour+time.Minute), "claude-3-haiku", 1000, 1000, ""),
	}

	s, err := c.CalculateDailySummary(records)
	if err != nil {
		t.Fatalf("CalculateDailySummary() error = %v", err)
	}
	if !s.Date.Equal(day) {
		t.Errorf("Date = %v, want %v", s.Date, day)
	}
	if s.TotalRequests != 4 || s.SessionCount != 2 {
		t.Errorf("TotalRequests/SessionCount = %d/%d, want 4/2", s.TotalRequests, s.SessionCount)
	}
	// Hours 9 and 15 tie; the earliest wins.
	if s.PeakHour != 9 {
		t.Errorf("PeakHour = %d, want 9", s.PeakHour)
	}
	// Both models have two requests; the smallest name wins.
	if s.MostUsedModel != "claude-3-haiku" {
		t.Errorf("MostUsedModel = %s, want claude-3-haiku", s.MostUsedModel)
	}
	sonnet := s.ModelBreakdown["claude-3-sonnet"]
	if sonnet.RequestCount != 2 || !approx(sonnet.TotalCost, 0.036) || !approx(sonnet.AvgCost, 0.018) {
		t.Errorf("sonnet usage = %+v", sonnet)
	}
	if !approx(s.TotalCost, 0.036+0.003) {
		t.Errorf("TotalCost = %v, want 0.039", s.TotalCost)
	}
}

func TestCalculateWeeklySummary(t *testing.T) {
	c := New(DefaultConfig())
	wed := time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)
	records := []models.UsageRecord{
		models.NewUsageRecord(wed.AddDate(0, 0, 2), "m", 1, 1, 5),
		models.NewUsageRecord(wed, "m", 1, 1, 2),
		models.NewUsageRecord(wed.AddDate(0, 0, 1), "m", 1, 1, 5),
	}

	s, err := c.CalculateWeeklySummary(records)
	if err != nil {
		t.Fatalf("CalculateWeeklySummary() error = %v", err)
	}
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	if !s.WeekStart.Equal(monday) || !s.WeekEnd.Equal(monday.AddDate(0, 0, 6)) {
		t.Errorf("week = %v..%v, want Monday 2024-03-04", s.WeekStart, s.WeekEnd)
	}
	if len(s.DailyBreakdown) != 3 {
		t.Fatalf("DailyBreakdown has %d days, want 3", len(s.DailyBreakdown))
	}
	for i := 1; i < len(s.DailyBreakdown); i++ {
		if !s.DailyBreakdown[i-1].Date.Before(s.DailyBreakdown[i].Date) {
			t.Error("DailyBreakdown is not sorted by date")
		}
	}
	if !approx(s.TotalCost, 12) || !approx(s.AvgDailyCost, 4) {
		t.Errorf("TotalCost/AvgDailyCost = %v/%v, want 12/4", s.TotalCost, s.AvgDailyCost)
	}
	// Thursday and Friday tie at 5; the earlier day wins.
	thursday := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	if s.MostExpensiveDay == nil || !s.MostExpensiveDay.Equal(thursday) {
		t.Errorf("MostExpensiveDay = %v, want %v", s.MostExpensiveDay, thursday)
	}
}

func TestCalculateMonthlySummary(t *testing.T) {
	c := New(DefaultConfig())
	records := []models.UsageRecord{
		models.NewUsageRecord(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), "a", 1, 1, 3), // week of Feb 26
		models.NewUsageRecord(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), "b", 1, 1, 4), // week of Mar 4
		models.NewUsageRecord(time.Date(2024, 3, 6, 11, 0, 0, 0, time.UTC), "b", 1, 1, 4),
		models.NewUsageRecord(time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC), "a", 1, 1, 1), // week of Mar 11
	}
	records[0].SessionID = "x"
	records[3].SessionID = "x"

	s, err := c.CalculateMonthlySummary(records)
	if err != nil {
		t.Fatalf("CalculateMonthlySummary() error = %v", err)
	}
	if s.Year != 2024 || s.Month != time.March {
		t.Errorf("period = %d-%v, want 2024-March", s.Year, s.Month)
	}
	if len(s.WeeklyBreakdown) != 3 {
		t.Fatalf("WeeklyBreakdown has %d weeks, want 3", len(s.WeeklyBreakdown))
	}
	if !s.WeeklyBreakdown[0].WeekStart.Equal(time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first week starts %v, want 2024-02-26", s.WeeklyBreakdown[0].WeekStart)
	}
	if !approx(s.TotalCost, 12) || !approx(s.AvgWeeklyCost, 4) {
		t.Errorf("TotalCost/AvgWeeklyCost = %v/%v, want 12/4", s.TotalCost, s.AvgWeeklyCost)
	}
	wantWeek := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	if s.MostExpensiveWeek == nil || !s.MostExpensiveWeek.Equal(wantWeek) {
		t.Errorf("MostExpensiveWeek = %v, want %v", s.MostExpensiveWeek, wantWeek)
	}
	if s.SessionCount != 1 {
		t.Errorf("SessionCount = %d, want 1", s.SessionCount)
	}
	if s.MostUsedModel != "a" {
		t.Errorf("MostUsedModel = %s, want a", s.MostUsedModel)
	}
	if s.PeakHour != 10 {
		t.Errorf("PeakHour = %d, want 10", s.PeakHour)
	}
}

func TestCalculateSessionAnalysis(t *testing.T) {
	c := New(DefaultConfig())
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	mk := func(offset time.Duration, session string) models.UsageRecord {
		r := models.NewUsageRecord(start.Add(offset), "m", 100, 50, 0.5)
		r.SessionID = session
		return r
	}

	t.Run("Valid", func(t *testing.T) {
		a, err := c.CalculateSessionAnalysis([]models.UsageRecord{
			mk(5*time.Minute, "s"), mk(0, "s"), mk(90*time.Second, "s"),
		})
		if err != nil {
			t.Fatalf("CalculateSessionAnalysis() error = %v", err)
		}
		if a.SessionID != "s" || a.RequestCount != 3 || !approx(a.TotalCost, 1.5) {
			t.Errorf("analysis = %+v", a)
		}
		if a.DurationSeconds != 300 {
			t.Errorf("DurationSeconds = %d, want 300", a.DurationSeconds)
		}
		if a.TotalInputTokens != 300 || a.TotalOutputTokens != 150 {
			t.Errorf("tokens = %d/%d, want 300/150", a.TotalInputTokens, a.TotalOutputTokens)
		}
	})

	t.Run("MissingSession", func(t *testing.T) {
		_, err := c.CalculateSessionAnalysis([]models.UsageRecord{mk(0, "")})
		if !errors.Is(err, models.ErrInvalidSessionID) {
			t.Errorf("error = %v, want ErrInvalidSessionID", err)
		}
	})

	t.Run("MixedSessions", func(t *testing.T) {
		_, err := c.CalculateSessionAnalysis([]models.UsageRecord{mk(0, "s"), mk(time.Minute, "t")})
		if !errors.Is(err, models.ErrInvalidSessionID) {
			t.Errorf("error = %v, want ErrInvalidSessionID", err)
		}
	})
}

func TestSummaries_IgnoreRecordsOutsidePeriod(t *testing.T) {
	c := New(DefaultConfig())
	at := func(y int, m time.Month, d, h int, cost float64) models.UsageRecord {
		return models.NewUsageRecord(time.Date(y, m, d, h, 0, 0, 0, time.UTC), "m", 1, 1, cost)
	}

	t.Run("Daily", func(t *testing.T) {
		s, err := c.CalculateDailySummary([]models.UsageRecord{
			at(2024, 5, 7, 23, 4), at(2024, 5, 6, 9, 1), at(2024, 5, 6, 18, 2),
		})
		if err != nil {
			t.Fatalf("CalculateDailySummary() error = %v", err)
		}
		if s.TotalRequests != 2 || !approx(s.TotalCost, 3) {
			t.Errorf("TotalRequests/TotalCost = %d/%v, want 2/3", s.TotalRequests, s.TotalCost)
		}
		if s.HourlyRequests[23] != 0 {
			t.Errorf("HourlyRequests[23] = %d, want 0", s.HourlyRequests[23])
		}
	})

	t.Run("Weekly", func(t *testing.T) {
		s, err := c.CalculateWeeklySummary([]models.UsageRecord{
			at(2024, 5, 20, 10, 7), at(2024, 5, 6, 10, 1), at(2024, 5, 12, 23, 2), at(2024, 5, 13, 0, 5),
		})
		if err != nil {
			t.Fatalf("CalculateWeeklySummary() error = %v", err)
		}
		monday := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
		if !s.WeekStart.Equal(monday) {
			t.Errorf("WeekStart = %v, want %v", s.WeekStart, monday)
		}
		if s.TotalRequests != 2 || !approx(s.TotalCost, 3) || len(s.DailyBreakdown) != 2 {
			t.Errorf("TotalRequests/TotalCost/days = %d/%v/%d, want 2/3/2",
				s.TotalRequests, s.TotalCost, len(s.DailyBreakdown))
		}
		for _, d := range s.DailyBreakdown {
			if d.Date.Before(s.WeekStart) || d.Date.After(s.WeekEnd) {
				t.Errorf("DailyBreakdown day %v outside %v..%v", d.Date, s.WeekStart, s.WeekEnd)
			}
		}
	})

	t.Run("Monthly", func(t *testing.T) {
		s, err := c.CalculateMonthlySummary([]models.UsageRecord{
			at(2024, 7, 2, 10, 9), at(2024, 5, 30, 10, 1), at(2024, 5, 31, 23, 2), at(2024, 6, 1, 0, 8),
		})
		if err != nil {
			t.Fatalf("CalculateMonthlySummary() error = %v", err)
		}
		if s.Year != 2024 || s.Month != time.May {
			t.Errorf("period = %d-%v, want 2024-May", s.Year, s.Month)
		}
		if s.TotalRequests != 2 || !approx(s.TotalCost, 3) {
			t.Errorf("TotalRequests/TotalCost = %d/%v, want 2/3", s.TotalRequests, s.TotalCost)
		}
		// May 30 and 31 share the week of Monday May 27.
		if len(s.WeeklyBreakdown) != 1 || s.WeeklyBreakdown[0].TotalRequests != 2 {
			t.Errorf("WeeklyBreakdown = %+v, want one week with both May records", s.WeeklyBreakdown)
		}
	})
}
