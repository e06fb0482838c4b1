package stats

import (
	"github.com/j-veylop/usage-analytics/internal/models"
)

// UsageStats summarizes records using their stored costs. Peak and lowest
// hour consider only hours with traffic and prefer the earliest hour on ties.
// Request frequency divides by the whole hours between the first and last
// record, counting at least one hour.
func UsageStats(records []models.UsageRecord) models.UsageStatistics {
	u := models.UsageStatistics{
		DailyDistribution: make(map[string]int),
		ModelStats:        make(map[string]models.ModelStats),
	}
	if len(records) == 0 {
		u.TokenSummary = Summary(nil)
		u.CostSummary = Summary(nil)
		return u
	}

	tokens := make([]float64, len(records))
	costs := make([]float64, len(records))
	first, last := records[0].Timestamp, records[0].Timestamp

	for i := range records {
		r := &records[i]
		u.TotalRequests++
		u.TotalTokens += r.TotalTokens()
		u.TotalCost += r.Cost
		u.HourlyDistribution[r.Timestamp.UTC().Hour()]++
		u.DailyDistribution[r.DateKey()]++
		tokens[i] = float64(r.TotalTokens())
		costs[i] = r.Cost

		if r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}

		ms := u.ModelStats[r.Model]
		ms.Model = r.Model
		ms.RequestCount++
		ms.TotalTokens += r.TotalTokens()
		ms.TotalCost += r.Cost
		u.ModelStats[r.Model] = ms
	}

	u.AvgTokensPerReq = float64(u.TotalTokens) / float64(u.TotalRequests)
	u.AvgCostPerReq = u.TotalCost / float64(u.TotalRequests)
	if u.TotalTokens > 0 {
		u.AvgCostPerToken = u.TotalCost / float64(u.TotalTokens)
	}

	hours := int64(last.Sub(first).Hours())
	if hours < 1 {
		hours = 1
	}
	u.RequestsPerHour = float64(u.TotalRequests) / float64(hours)

	u.PeakHour, u.LowestHour = -1, -1
	for h, n := range u.HourlyDistribution {
		if n == 0 {
			continue
		}
		if u.PeakHour == -1 || n > u.HourlyDistribution[u.PeakHour] {
			u.PeakHour = h
		}
		if u.LowestHour == -1 || n < u.HourlyDistribution[u.LowestHour] {
			u.LowestHour = h
		}
	}

	for name, ms := range u.ModelStats {
		ms.AvgTokensPerReq = float64(ms.TotalTokens) / float64(ms.RequestCount)
		ms.AvgCostPerReq = ms.TotalCost / float64(ms.RequestCount)
		ms.UsagePercentage = float64(ms.RequestCount) / float64(u.TotalRequests) * 100
		if ms.TotalTokens > 0 {
			ms.AvgCostPerThousand = ms.TotalCost / float64(ms.TotalTokens) * 1000
		}
		u.ModelStats[name] = ms
	}

	u.TokenSummary = Summary(tokens)
	u.CostSummary = Summary(costs)
	return u
}

// SessionStats summarizes sessions. Extremes keep the first session seen
// on ties. Sessions from models.BuildSessions always carry an end time;
// hand-built sessions without one have no duration and are left out of the
// longest and shortest picks.
func SessionStats(sessions []models.Session) models.SessionStatistics {
	var s models.SessionStatistics
	if len(sessions) == 0 {
		return s
	}

	s.TotalSessions = len(sessions)
	var longest, shortest, costliest, cheapest *models.Session
	for i := range sessions {
		cur := &sessions[i]
		s.TotalCost += cur.TotalCost
		s.TotalRequests += cur.RequestCount

		if cur.EndTime != nil {
			s.TotalDurationSeconds += cur.DurationSeconds
			if longest == nil || cur.DurationSeconds > longest.DurationSeconds {
				longest = cur
			}
			if shortest == nil || cur.DurationSeconds < shortest.DurationSeconds {
				shortest = cur
			}
		}
		if costliest == nil || cur.TotalCost > costliest.TotalCost {
			costliest = cur
		}
		if cheapest == nil || cur.TotalCost < cheapest.TotalCost {
			cheapest = cur
		}
	}

	n := float64(s.TotalSessions)
	s.AvgDurationSeconds = float64(s.TotalDurationSeconds) / n
	s.AvgRequests = float64(s.TotalRequests) / n
	s.AvgCost = s.TotalCost / n

	if longest != nil {
		s.LongestSession = longest.ID
		s.ShortestSession = shortest.ID
	}
	s.MostExpensiveSession = costliest.ID
	s.LeastExpensiveSession = cheapest.ID
	return s
}
