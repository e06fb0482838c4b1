// Package cost prices usage records and aggregates them into breakdowns,
// budget figures, optimization suggestions and periodic summaries.
package cost

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/j-veylop/usage-analytics/internal/logger"
	"github.com/j-veylop/usage-analytics/internal/models"
	"github.com/j-veylop/usage-analytics/internal/services/pricing"
)

// Config controls the calculator.
type Config struct {
	Currency           string
	TaxRate            float64 // percent, applied when IncludeTax is set
	EnableBreakdown    bool
	IncludeTax         bool
	EnableOptimization bool
}

// DefaultConfig returns the default calculator configuration.
func DefaultConfig() Config {
	return Config{
		EnableBreakdown:    true,
		IncludeTax:         false,
		TaxRate:            0,
		Currency:           "USD",
		EnableOptimization: true,
	}
}

// cacheKey identifies a priced record. Token counts are part of the key so
// two different calls on the same model in the same second never share a cost.
type cacheKey struct {
	model  string
	unix   int64
	input  int64
	output int64
}

// Calculator prices records against a pricing catalog and memoizes the
// results. It is safe for concurrent use; simultaneous misses on the same
// key may both compute the (identical) cost.
type Calculator struct {
	catalog *pricing.Catalog
	config  Config

	mu     sync.RWMutex
	cache  map[cacheKey]float64
	hits   atomic.Uint64
	misses atomic.Uint64

	monthRemainder MonthRemainderFunc
	repeats        RepeatDetector
	now            func() time.Time
}

// New creates a calculator with an empty pricing catalog.
func New(cfg Config) *Calculator {
	return &Calculator{
		catalog:        pricing.New(),
		config:         cfg,
		cache:          make(map[cacheKey]float64),
		monthRemainder: FixedMonthRemainder,
		repeats:        FirstRepeatedRequest,
		now:            time.Now,
	}
}

// Config returns the calculator's configuration.
func (c *Calculator) Config() Config {
	return c.config
}

// Catalog exposes the underlying pricing catalog.
func (c *Calculator) Catalog() *pricing.Catalog {
	return c.catalog
}

// SetMonthRemainder replaces the days-remaining estimate used by budget analysis.
func (c *Calculator) SetMonthRemainder(fn MonthRemainderFunc) {
	if fn != nil {
		c.monthRemainder = fn
	}
}

// SetRepeatDetector replaces the repeated-request detector used by
// optimization suggestions.
func (c *Calculator) SetRepeatDetector(fn RepeatDetector) {
	if fn != nil {
		c.repeats = fn
	}
}

// SetClock replaces the clock used for the current date.
func (c *Calculator) SetClock(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// LoadPricingData merges price history into the catalog and drops every
// cached cost, since resolution may now differ.
func (c *Calculator) LoadPricingData(entries []models.PricingInfo) {
	c.catalog.Load(entries)
	c.ClearCache()
	logger.Debug("pricing data loaded", "entries", len(entries), "models", len(c.catalog.Models()))
}

// CalculateCost prices a record at the rates in effect at its timestamp,
// ignoring any stored cost.
func (c *Calculator) CalculateCost(r *models.UsageRecord) (float64, error) {
	key := cacheKey{
		model:  r.Model,
		unix:   r.Timestamp.Unix(),
		input:  r.InputTokens,
		output: r.OutputTokens,
	}

	c.mu.RLock()
	cost, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return cost, nil
	}
	c.misses.Add(1)

	price, err := c.catalog.Resolve(r.Model, r.Timestamp)
	if err != nil {
		return 0, fmt.Errorf("failed to price record %s: %w", r.ID, err)
	}

	cost = price.Cost(r.InputTokens, r.OutputTokens)
	if c.config.IncludeTax {
		cost *= 1 + c.config.TaxRate/100
	}

	c.mu.Lock()
	c.cache[key] = cost
	c.mu.Unlock()

	return cost, nil
}

// EffectiveCost returns the record's stored cost when it is positive and
// the calculated cost otherwise.
func (c *Calculator) EffectiveCost(r *models.UsageRecord) (float64, error) {
	if r.Cost > 0 {
		return r.Cost, nil
	}
	return c.CalculateCost(r)
}

// EnrichCosts returns a copy of records with every cost filled in.
func (c *Calculator) EnrichCosts(records []models.UsageRecord) ([]models.UsageRecord, error) {
	out := make([]models.UsageRecord, len(records))
	for i := range records {
		out[i] = records[i]
		cost, err := c.EffectiveCost(&records[i])
		if err != nil {
			return nil, err
		}
		out[i].Cost = cost
	}
	return out, nil
}

// ClearCache drops all memoized costs and resets the hit counters.
func (c *Calculator) ClearCache() {
	c.mu.Lock()
	c.cache = make(map[cacheKey]float64)
	c.mu.Unlock()
	c.hits.Store(0)
	c.misses.Store(0)
}

// CacheStats reports the cache size and hit counters.
func (c *Calculator) CacheStats() models.CacheStats {
	c.mu.RLock()
	entries := len(c.cache)
	c.mu.RUnlock()

	return models.CacheStats{
		Entries: entries,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
