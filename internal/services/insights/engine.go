// Package insights evaluates heuristic rules over usage records and returns
// ranked, confidence-scored recommendations.
package insights

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/usage-analytics/internal/logger"
	"github.com/j-veylop/usage-analytics/internal/models"
)

// Config controls which rule groups run and how results are trimmed.
type Config struct {
	MinConfidence         float64
	MaxInsights           int
	EnableCostInsights    bool
	EnableUsageInsights   bool
	EnableAnomalyInsights bool
	EnableTrendInsights   bool
	EnableBudgetInsights  bool
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		EnableCostInsights:    true,
		EnableUsageInsights:   true,
		EnableAnomalyInsights: true,
		EnableTrendInsights:   true,
		EnableBudgetInsights:  true,
		MinConfidence:         0.7,
		MaxInsights:           20,
	}
}

// LatencyProxy estimates a response time in seconds for a record.
type LatencyProxy func(r *models.UsageRecord) float64

// TokenLatencyProxy is a synthetic stand-in for measured latency:
// one millisecond per token. It is not telemetry.
func TokenLatencyProxy(r *models.UsageRecord) float64 {
	return float64(r.TotalTokens()) * 0.001
}

// Engine runs the insight rules. It keeps no state between calls and is
// safe for concurrent use once configured.
type Engine struct {
	config  Config
	latency LatencyProxy
	now     func() time.Time
	newID   func() string
}

// New creates an engine.
func New(cfg Config) *Engine {
	return &Engine{
		config:  cfg,
		latency: TokenLatencyProxy,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.config
}

// SetClock replaces the clock used for CreatedAt.
func (e *Engine) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// SetLatencyProxy replaces the response-time estimate used by the
// performance rule.
func (e *Engine) SetLatencyProxy(fn LatencyProxy) {
	if fn != nil {
		e.latency = fn
	}
}

// Generate evaluates every enabled rule against records, which should
// already carry costs. budget may be nil. The result holds only insights at
// or above MinConfidence, ordered by severity then confidence, and at most
// MaxInsights of them.
func (e *Engine) Generate(records []models.UsageRecord, budget *models.BudgetInfo) []models.Insight {
	out := []models.Insight{}
	if len(records) == 0 {
		return out
	}

	if e.config.EnableCostInsights {
		out = append(out, e.costConcentration(records)...)
		out = append(out, e.tokenEfficiency(records)...)
	}
	if e.config.EnableUsageInsights {
		out = append(out, e.offHours(records)...)
		out = append(out, e.shortSessions(records)...)
	}
	if e.config.EnableTrendInsights {
		out = append(out, e.rapidGrowth(records)...)
	}
	if e.config.EnableBudgetInsights && budget != nil {
		out = append(out, e.budgetAlert(records, budget)...)
	}
	if e.config.EnableAnomalyInsights {
		out = append(out, e.performanceVariability(records)...)
		out = append(out, e.spendOutliers(records)...)
	}

	generated := len(out)
	out = e.rank(out)
	logger.Debug("insights generated", "candidates", generated, "kept", len(out))
	return out
}

// rank filters by confidence, orders by severity then confidence, and
// truncates. Sorting happens before truncation, so a severe insight from a
// late rule is never cut in favour of an earlier, milder one. Equal keys keep
// rule order.
func (e *Engine) rank(list []models.Insight) []models.Insight {
	kept := list[:0]
	for _, in := range list {
		if in.Confidence >= e.config.MinConfidence {
			kept = append(kept, in)
		}
	}

	slices.SortStableFunc(kept, func(a, b models.Insight) int {
		if c := cmp.Compare(b.Severity.Rank(), a.Severity.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(b.Confidence, a.Confidence)
	})

	if e.config.MaxInsights >= 0 && len(kept) > e.config.MaxInsights {
		kept = kept[:e.config.MaxInsights]
	}
	return kept
}

// insight fills the fields every rule shares.
func (e *Engine) insight(prefix string, typ models.InsightType, sev models.Severity, cat models.InsightCategory, confidence float64) models.Insight {
	return models.Insight{
		ID:         prefix + "_" + e.newID(),
		Type:       typ,
		Severity:   sev,
		Category:   cat,
		Confidence: confidence,
		CreatedAt:  e.now().UTC(),
		Metadata:   make(map[string]any),
	}
}
