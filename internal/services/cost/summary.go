package cost

import (
	"fmt"
	"sort"
	"time"

	"github.com/j-veylop/usage-analytics/internal/logger"
	"github.com/j-veylop/usage-analytics/internal/models"
)

// CalculateDailySummary totals the records that fall on the UTC day of the
// earliest one. Records from later days are left out.
func (c *Calculator) CalculateDailySummary(records []models.UsageRecord) (models.DailySummary, error) {
	if len(records) == 0 {
		return models.DailySummary{}, fmt.Errorf("daily summary: %w", models.ErrEmptyInput)
	}
	day := earliestDay(records)
	return c.dailySummary(day, withinPeriod("daily", records, day, day.AddDate(0, 0, 1)))
}

// CalculateWeeklySummary totals the records that fall in the ISO week
// (starting Monday) of the earliest one, with one daily summary per day that
// has records. Records from later weeks are left out.
func (c *Calculator) CalculateWeeklySummary(records []models.UsageRecord) (models.WeeklySummary, error) {
	if len(records) == 0 {
		return models.WeeklySummary{}, fmt.Errorf("weekly summary: %w", models.ErrEmptyInput)
	}
	start := models.WeekStart(earliestDay(records))
	return c.weeklySummary(start, withinPeriod("weekly", records, start, start.AddDate(0, 0, 7)))
}

// CalculateMonthlySummary totals the records that fall in the calendar month
// of the earliest one, with one weekly summary per Monday-aligned week.
// Records from later months are left out.
func (c *Calculator) CalculateMonthlySummary(records []models.UsageRecord) (models.MonthlySummary, error) {
	if len(records) == 0 {
		return models.MonthlySummary{}, fmt.Errorf("monthly summary: %w", models.ErrEmptyInput)
	}

	first := earliestDay(records)
	monthStart := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)
	records = withinPeriod("monthly", records, monthStart, monthStart.AddDate(0, 1, 0))

	s := models.MonthlySummary{
		Year:           first.Year(),
		Month:          first.Month(),
		ModelBreakdown: make(map[string]models.ModelUsage),
		SessionCount:   countSessions(records),
	}

	byWeek := make(map[time.Time][]models.UsageRecord)
	for i := range records {
		ws := models.WeekStart(records[i].Timestamp)
		byWeek[ws] = append(byWeek[ws], records[i])
	}

	var hourly [24]int
	var costliest int
	for i, ws := range sortedTimes(byWeek) {
		w, err := c.weeklySummary(ws, byWeek[ws])
		if err != nil {
			return models.MonthlySummary{}, err
		}
		s.WeeklyBreakdown = append(s.WeeklyBreakdown, w)
		s.TotalCost += w.TotalCost
		s.TotalInputTokens += w.TotalInputTokens
		s.TotalOutputTokens += w.TotalOutputTokens
		s.TotalRequests += w.TotalRequests
		mergeModelUsage(s.ModelBreakdown, w.ModelBreakdown)
		for h, n := range w.HourlyRequests {
			hourly[h] += n
		}
		if i == 0 || w.TotalCost > s.WeeklyBreakdown[costliest].TotalCost {
			costliest = i
		}
	}

	week := s.WeeklyBreakdown[costliest].WeekStart
	s.MostExpensiveWeek = &week
	s.AvgWeeklyCost = s.TotalCost / float64(len(s.WeeklyBreakdown))
	s.PeakHour = peakHour(hourly)
	s.MostUsedModel = mostUsedModel(s.ModelBreakdown)
	return s, nil
}

// CalculateSessionAnalysis describes a single session's records. Every
// record must carry the same, non-empty session ID.
func (c *Calculator) CalculateSessionAnalysis(records []models.UsageRecord) (models.SessionAnalysis, error) {
	if len(records) == 0 {
		return models.SessionAnalysis{}, fmt.Errorf("session analysis: %w", models.ErrEmptyInput)
	}

	id := records[0].SessionID
	if id == "" {
		return models.SessionAnalysis{}, fmt.Errorf("session analysis: first record has no session: %w", models.ErrInvalidSessionID)
	}

	a := models.SessionAnalysis{SessionID: id}
	start, end := records[0].Timestamp, records[0].Timestamp
	for i := range records {
		r := &records[i]
		if r.SessionID != id {
			return models.SessionAnalysis{}, fmt.Errorf("session analysis: record %s belongs to %q, not %q: %w",
				r.ID, r.SessionID, id, models.ErrInvalidSessionID)
		}
		cost, err := c.EffectiveCost(r)
		if err != nil {
			return models.SessionAnalysis{}, err
		}
		a.TotalCost += cost
		a.TotalInputTokens += r.InputTokens
		a.TotalOutputTokens += r.OutputTokens
		a.RequestCount++
		if r.Timestamp.Before(start) {
			start = r.Timestamp
		}
		if r.Timestamp.After(end) {
			end = r.Timestamp
		}
	}
	a.DurationSeconds = int64(end.Sub(start).Seconds())
	return a, nil
}

func (c *Calculator) dailySummary(day time.Time, records []models.UsageRecord) (models.DailySummary, error) {
	s := models.DailySummary{
		Date:           day,
		ModelBreakdown: make(map[string]models.ModelUsage),
		SessionCount:   countSessions(records),
	}

	for i := range records {
		r := &records[i]
		cost, err := c.EffectiveCost(r)
		if err != nil {
			return models.DailySummary{}, err
		}
		s.TotalCost += cost
		s.TotalInputTokens += r.InputTokens
		s.TotalOutputTokens += r.OutputTokens
		s.TotalRequests++
		s.HourlyRequests[r.Timestamp.UTC().Hour()]++

		u := s.ModelBreakdown[r.Model]
		u.Model = r.Model
		u.TotalCost += cost
		u.InputTokens += r.InputTokens
		u.OutputTokens += r.OutputTokens
		u.RequestCount++
		u.AvgCost = u.TotalCost / float64(u.RequestCount)
		s.ModelBreakdown[r.Model] = u
	}

	s.PeakHour = peakHour(s.HourlyRequests)
	s.MostUsedModel = mostUsedModel(s.ModelBreakdown)
	return s, nil
}

func (c *Calculator) weeklySummary(start time.Time, records []models.UsageRecord) (models.WeeklySummary, error) {
	s := models.WeeklySummary{
		WeekStart:      start,
		WeekEnd:        start.AddDate(0, 0, 6),
		ModelBreakdown: make(map[string]models.ModelUsage),
		SessionCount:   countSessions(records),
	}

	byDay := make(map[time.Time][]models.UsageRecord)
	for i := range records {
		d := records[i].Day()
		byDay[d] = append(byDay[d], records[i])
	}

	var costliest int
	for i, d := range sortedTimes(byDay) {
		ds, err := c.dailySummary(d, byDay[d])
		if err != nil {
			return models.WeeklySummary{}, err
		}
		s.DailyBreakdown = append(s.DailyBreakdown, ds)
		s.TotalCost += ds.TotalCost
		s.TotalInputTokens += ds.TotalInputTokens
		s.TotalOutputTokens += ds.TotalOutputTokens
		s.TotalRequests += ds.TotalRequests
		mergeModelUsage(s.ModelBreakdown, ds.ModelBreakdown)
		for h, n := range ds.HourlyRequests {
			s.HourlyRequests[h] += n
		}
		if i == 0 || ds.TotalCost > s.DailyBreakdown[costliest].TotalCost {
			costliest = i
		}
	}

	if len(s.DailyBreakdown) > 0 {
		day := s.DailyBreakdown[costliest].Date
		s.MostExpensiveDay = &day
		s.AvgDailyCost = s.TotalCost / float64(len(s.DailyBreakdown))
	}
	s.PeakHour = peakHour(s.HourlyRequests)
	s.MostUsedModel = mostUsedModel(s.ModelBreakdown)
	return s, nil
}

// withinPeriod returns the records whose timestamp lies in [from, to).
func withinPeriod(kind string, records []models.UsageRecord, from, to time.Time) []models.UsageRecord {
	kept := make([]models.UsageRecord, 0, len(records))
	for i := range records {
		ts := records[i].Timestamp
		if !ts.Before(from) && ts.Before(to) {
			kept = append(kept, records[i])
		}
	}
	if dropped := len(records) - len(kept); dropped > 0 {
		logger.Debug("records outside summary period ignored",
			"summary", kind, "from", from.Format(models.DateLayout), "dropped", dropped)
	}
	return kept
}

func earliestDay(records []models.UsageRecord) time.Time {
	first := records[0].Timestamp
	for i := range records[1:] {
		if ts := records[i+1].Timestamp; ts.Before(first) {
			first = ts
		}
	}
	return models.TruncateDay(first)
}

func countSessions(records []models.UsageRecord) int {
	seen := make(map[string]struct{})
	for i := range records {
		if id := records[i].SessionID; id != "" {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

func mergeModelUsage(dst, src map[string]models.ModelUsage) {
	for name, u := range src {
		d := dst[name]
		d.Model = name
		d.TotalCost += u.TotalCost
		d.InputTokens += u.InputTokens
		d.OutputTokens += u.OutputTokens
		d.RequestCount += u.RequestCount
		if d.RequestCount > 0 {
			d.AvgCost = d.TotalCost / float64(d.RequestCount)
		}
		dst[name] = d
	}
}

// peakHour returns the busiest hour, preferring the earliest on ties.
func peakHour(hist [24]int) int {
	peak := 0
	for h := 1; h < len(hist); h++ {
		if hist[h] > hist[peak] {
			peak = h
		}
	}
	return peak
}

// mostUsedModel returns the model with the most requests, preferring the
// lexically smallest name on ties.
func mostUsedModel(breakdown map[string]models.ModelUsage) string {
	best := ""
	for _, name := range sortedKeys(breakdown) {
		if best == "" || breakdown[name].RequestCount > breakdown[best].RequestCount {
			best = name
		}
	}
	return best
}

func sortedTimes(m map[time.Time][]models.UsageRecord) []time.Time {
	keys := make([]time.Time, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys
}
