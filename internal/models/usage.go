// Package models defines data structures and domain types.
package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the key format used for every date-keyed map.
const DateLayout = "2006-01-02"

// UsageRecord is a single API call with its token counts and cost.
// Only Cost may be overwritten after creation.
type UsageRecord struct {
	Timestamp    time.Time      `json:"timestamp"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	ID           string         `json:"id"`
	Model        string         `json:"model"`
	SessionID    string         `json:"session_id,omitempty"`
	UserID       string         `json:"user_id,omitempty"`
	InputTokens  int64          `json:"input_tokens"`
	OutputTokens int64          `json:"output_tokens"`
	Cost         float64        `json:"cost"`
}

// recordNamespace seeds deterministic record IDs.
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("usage-analytics/record"))

// NewUsageRecord creates a record whose ID is derived from its content,
// so the same call loaded twice gets the same ID.
func NewUsageRecord(ts time.Time, model string, inputTokens, outputTokens int64, cost float64) UsageRecord {
	ts = ts.UTC()
	name := fmt.Sprintf("%s|%d|%d|%d", model, ts.UnixNano(), inputTokens, outputTokens)
	return UsageRecord{
		ID:           uuid.NewSHA1(recordNamespace, []byte(name)).String(),
		Timestamp:    ts,
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         cost,
	}
}

// TotalTokens returns input plus output tokens.
func (r *UsageRecord) TotalTokens() int64 {
	return r.InputTokens + r.OutputTokens
}

// CostPerToken returns the stored cost divided by total tokens, or 0.
func (r *UsageRecord) CostPerToken() float64 {
	total := r.TotalTokens()
	if total == 0 {
		return 0
	}
	return r.Cost / float64(total)
}

// Day returns the UTC calendar day of the record at midnight.
func (r *UsageRecord) Day() time.Time {
	return TruncateDay(r.Timestamp)
}

// DateKey returns the UTC calendar day formatted with DateLayout.
func (r *UsageRecord) DateKey() string {
	return r.Timestamp.UTC().Format(DateLayout)
}

// TruncateDay returns midnight UTC of the day containing t.
func TruncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns midnight UTC of the Monday of the ISO week containing t.
func WeekStart(t time.Time) time.Time {
	day := TruncateDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekdayIndex returns the weekday of t with Monday as 0 and Sunday as 6.
func WeekdayIndex(t time.Time) int {
	return (int(t.UTC().Weekday()) + 6) % 7
}

// IsPremiumModel reports whether a model name belongs to the most expensive
// tier, currently any "opus" model.
func IsPremiumModel(model string) bool {
	return strings.Contains(strings.ToLower(model), "opus")
}

// SortRecords orders records chronologically, keeping input order for equal timestamps.
func SortRecords(records []UsageRecord) []UsageRecord {
	sorted := make([]UsageRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// PricingInfo is one entry of a model's price history.
type PricingInfo struct {
	EffectiveDate   time.Time `json:"effective_date"`
	Model           string    `json:"model"`
	Currency        string    `json:"currency"`
	InputCostPer1K  float64   `json:"input_cost_per_1k"`
	OutputCostPer1K float64   `json:"output_cost_per_1k"`
	IsActive        bool      `json:"is_active"`
}

// Cost prices the given token counts at this entry's rates.
func (p *PricingInfo) Cost(inputTokens, outputTokens int64) float64 {
	return float64(inputTokens)/1000*p.InputCostPer1K + float64(outputTokens)/1000*p.OutputCostPer1K
}

// ValidAt reports whether this entry applies at the given instant.
func (p *PricingInfo) ValidAt(at time.Time) bool {
	return p.IsActive && !p.EffectiveDate.After(at)
}

// Default budget thresholds, in percent of the monthly limit.
const (
	DefaultWarningThreshold = 80.0
	DefaultAlertThreshold   = 95.0
)

// BudgetInfo is an externally supplied monthly spending limit.
type BudgetInfo struct {
	Currency         string  `json:"currency"`
	MonthlyLimit     float64 `json:"monthly_limit"`
	WarningThreshold float64 `json:"warning_threshold"`
	AlertThreshold   float64 `json:"alert_threshold"`
}

// NewBudgetInfo returns a budget with the default 80% / 95% thresholds.
func NewBudgetInfo(monthlyLimit float64, currency string) BudgetInfo {
	return BudgetInfo{
		MonthlyLimit:     monthlyLimit,
		Currency:         currency,
		WarningThreshold: DefaultWarningThreshold,
		AlertThreshold:   DefaultAlertThreshold,
	}
}

// UsagePercentage returns spent as a percentage of the monthly limit.
func (b *BudgetInfo) UsagePercentage(spent float64) float64 {
	if b.MonthlyLimit <= 0 {
		return 0
	}
	return spent / b.MonthlyLimit * 100
}

// IsWarningExceeded reports whether spent reached the warning threshold.
func (b *BudgetInfo) IsWarningExceeded(spent float64) bool {
	return b.MonthlyLimit > 0 && b.UsagePercentage(spent) >= b.WarningThreshold
}

// IsAlertExceeded reports whether spent reached the alert threshold.
func (b *BudgetInfo) IsAlertExceeded(spent float64) bool {
	return b.MonthlyLimit > 0 && b.UsagePercentage(spent) >= b.AlertThreshold
}
