package models

import (
	"sort"
	"time"
)

// Session aggregates the records that share a session ID.
type Session struct {
	StartTime         time.Time  `json:"start_time"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	ID                string     `json:"id"`
	UserID            string     `json:"user_id,omitempty"`
	TotalCost         float64    `json:"total_cost"`
	TotalInputTokens  int64      `json:"total_input_tokens"`
	TotalOutputTokens int64      `json:"total_output_tokens"`
	RequestCount      int        `json:"request_count"`
	DurationSeconds   int64      `json:"duration_seconds"`
}

// NewSession starts a session at the given instant.
func NewSession(id string, start time.Time) *Session {
	return &Session{ID: id, StartTime: start.UTC()}
}

// AddRecord folds a record into the running totals and widens the time span.
// After the first record EndTime is always set; a one-record session ends
// when it starts.
func (s *Session) AddRecord(r *UsageRecord) {
	ts := r.Timestamp.UTC()
	if ts.Before(s.StartTime) {
		s.StartTime = ts
	}
	if s.EndTime == nil || ts.After(*s.EndTime) {
		end := ts
		s.EndTime = &end
	}
	if s.UserID == "" {
		s.UserID = r.UserID
	}
	s.TotalCost += r.Cost
	s.TotalInputTokens += r.InputTokens
	s.TotalOutputTokens += r.OutputTokens
	s.RequestCount++
}

// Finalize computes the duration once no more records are expected.
func (s *Session) Finalize() {
	if s.EndTime == nil {
		s.DurationSeconds = 0
		return
	}
	s.DurationSeconds = int64(s.EndTime.Sub(s.StartTime).Seconds())
}

// TotalTokens returns input plus output tokens.
func (s *Session) TotalTokens() int64 {
	return s.TotalInputTokens + s.TotalOutputTokens
}

// AvgCostPerRequest returns the mean cost of the session's requests.
func (s *Session) AvgCostPerRequest() float64 {
	if s.RequestCount == 0 {
		return 0
	}
	return s.TotalCost / float64(s.RequestCount)
}

// AvgTokensPerRequest returns the mean token count of the session's requests.
func (s *Session) AvgTokensPerRequest() float64 {
	if s.RequestCount == 0 {
		return 0
	}
	return float64(s.TotalTokens()) / float64(s.RequestCount)
}

// BuildSessions groups records by session ID. Records without a session ID
// are skipped. Sessions are returned finalized and sorted by ID, each with a
// non-nil EndTime.
func BuildSessions(records []UsageRecord) []Session {
	byID := make(map[string]*Session)
	for i := range records {
		r := &records[i]
		if r.SessionID == "" {
			continue
		}
		s, ok := byID[r.SessionID]
		if !ok {
			s = NewSession(r.SessionID, r.Timestamp)
			byID[r.SessionID] = s
		}
		s.AddRecord(r)
	}

	sessions := make([]Session, 0, len(byID))
	for _, s := range byID {
		s.Finalize()
		sessions = append(sessions, *s)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].ID < sessions[j].ID
	})
	return sessions
}
