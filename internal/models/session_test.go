package models

import (
	"testing"
	"time"
)

func TestBuildSessions(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	mk := func(offset time.Duration, session string, cost float64) UsageRecord {
		r := NewUsageRecord(base.Add(offset), "m", 100, 50, cost)
		r.SessionID = session
		r.UserID = "user-" + session
		return r
	}

	records := []UsageRecord{
		mk(10*time.Minute, "b", 1.0),
		mk(0, "a", 0.5),
		mk(5*time.Minute, "a", 0.25),
		mk(-2*time.Minute, "a", 0.25),
		mk(time.Hour, "", 9.0),
	}

	sessions := BuildSessions(records)
	if len(sessions) != 2 {
		t.Fatalf("BuildSessions() returned %d sessions, want 2", len(sessions))
	}

	a := sessions[0]
	if a.ID != "a" {
		t.Fatalf("sessions[0].ID = %s, want a", a.ID)
	}
	if a.RequestCount != 3 {
		t.Errorf("RequestCount = %d, want 3", a.RequestCount)
	}
	if a.TotalCost != 1.0 {
		t.Errorf("TotalCost = %v, want 1.0", a.TotalCost)
	}
	if !a.StartTime.Equal(base.Add(-2 * time.Minute)) {
		t.Errorf("StartTime = %v, want %v", a.StartTime, base.Add(-2*time.Minute))
	}
	if a.DurationSeconds != 420 {
		t.Errorf("DurationSeconds = %d, want 420", a.DurationSeconds)
	}
	if a.UserID != "user-a" {
		t.Errorf("UserID = %s, want user-a", a.UserID)
	}
	if a.TotalTokens() != 450 {
		t.Errorf("TotalTokens() = %d, want 450", a.TotalTokens())
	}
	if got := a.AvgTokensPerRequest(); got != 150 {
		t.Errorf("AvgTokensPerRequest() = %v, want 150", got)
	}

	b := sessions[1]
	if b.DurationSeconds != 0 {
		t.Errorf("single-record session duration = %d, want 0", b.DurationSeconds)
	}
	for _, s := range sessions {
		if s.EndTime == nil {
			t.Errorf("session %s has no EndTime", s.ID)
		}
	}
	if b.EndTime != nil && !b.EndTime.Equal(b.StartTime) {
		t.Errorf("single-record EndTime = %v, want %v", b.EndTime, b.StartTime)
	}
}

func TestSession_Empty(t *testing.T) {
	s := NewSession("x", time.Now())
	s.Finalize()
	if s.DurationSeconds != 0 || s.AvgCostPerRequest() != 0 || s.AvgTokensPerRequest() != 0 {
		t.Error("empty session should have zero duration and averages")
	}
}
