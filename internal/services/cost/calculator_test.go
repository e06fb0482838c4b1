package cost

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/j-veylop/usage-analytics/internal/models"
)

const eps = 1e-9

var pricingStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testPricing() []models.PricingInfo {
	return []models.PricingInfo{
		{Model: "claude-3-opus", InputCostPer1K: 0.015, OutputCostPer1K: 0.075, Currency: "USD", EffectiveDate: pricingStart, IsActive: true},
		{Model: "claude-3-sonnet", InputCostPer1K: 0.003, OutputCostPer1K: 0.015, Currency: "USD", EffectiveDate: pricingStart, IsActive: true},
		{Model: "claude-3-haiku", InputCostPer1K: 0.00025, OutputCostPer1K: 0.00125, Currency: "USD", EffectiveDate: pricingStart, IsActive: true},
	}
}

func newTestCalculator(t *testing.T, cfg Config) *Calculator {
	t.Helper()
	c := New(cfg)
	c.LoadPricingData(testPricing())
	return c
}

func record(ts time.Time, model string, in, out int64, session string) models.UsageRecord {
	r := models.NewUsageRecord(ts, model, in, out, 0)
	r.SessionID = session
	return r
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestCalculateCost(t *testing.T) {
	c := newTestCalculator(t, DefaultConfig())
	r := record(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), "claude-3-sonnet", 1000, 2000, "")

	got, err := c.CalculateCost(&r)
	if err != nil {
		t.Fatalf("CalculateCost() error = %v", err)
	}
	want := 1.0*0.003 + 2.0*0.015
	if !approx(got, want) {
		t.Errorf("CalculateCost() = %v, want %v", got, want)
	}
}

func TestCalculateCost_Tax(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IncludeTax = true
	cfg.TaxRate = 10
	c := newTestCalculator(t, cfg)
	r := record(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), "claude-3-opus", 1000, 1000, "")

	got, err := c.CalculateCost(&r)
	if err != nil {
		t.Fatalf("CalculateCost() error = %v", err)
	}
	want := (0.015 + 0.075) * 1.1
	if !approx(got, want) {
		t.Errorf("CalculateCost() = %v, want %v", got, want)
	}
}

func TestCalculateCost_NoPricing(t *testing.T) {
	c := newTestCalculator(t, DefaultConfig())

	tests := []struct {
		name string
		r    models.UsageRecord
	}{
		{"UnknownModel", record(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "gpt-4", 10, 10, "")},
		{"BeforeEffectiveDate", record(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), "claude-3-opus", 10, 10, "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CalculateCost(&tt.r)
			if !errors.Is(err, models.ErrNoPricingFound) {
				t.Errorf("CalculateCost() error = %v, want ErrNoPricingFound", err)
			}
		})
	}
}

func TestCalculateCost_CacheAndIdempotence(t *testing.T) {
	c := newTestCalculator(t, DefaultConfig())
	r := record(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), "claude-3-haiku", 500, 700, "")

	first, err := c.CalculateCost(&r)
	if err != nil {
		t.Fatalf("CalculateCost() error = %v", err)
	}
	second, err := c.CalculateCost(&r)
	if err != nil {
		t.Fatalf("CalculateCost() error = %v", err)
	}
	if first != second {
		t.Errorf("CalculateCost() not idempotent: %v then %v", first, second)
	}

	stats := c.CacheStats()
	if stats.Entries != 1 || stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("CacheStats() = %+v, want 1 entry, 1 hit, 1 miss", stats)
	}
	if stats.HitRate() != 0.5 {
		t.Errorf("HitRate() = %v, want 0.5", stats.HitRate())
	}

	// Same model and second but different tokens must not hit the cache.
	other := record(r.Timestamp, "claude-3-haiku", 1, 1, "")
	otherCost, _ := c.CalculateCost(&other)
	if otherCost == first {
		t.Error("records with different tokens shared a cached cost")
	}

	c.ClearCache()
	if stats := c.CacheStats(); stats.Entries != 0 || stats.Hits != 0 {
		t.Errorf("CacheStats() after ClearCache = %+v", stats)
	}
}

func TestLoadPricingData_InvalidatesCache(t *testing.T) {
	c := newTestCalculator(t, DefaultConfig())
	r := record(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "claude-3-haiku", 1000, 0, "")

	before, _ := c.CalculateCost(&r)
	c.LoadPricingData([]models.PricingInfo{{
		Model: "claude-3-haiku", InputCostPer1K: 1, OutputCostPer1K: 1,
		EffectiveDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), IsActive: true,
	}})
	after, err := c.CalculateCost(&r)
	if err != nil {
		t.Fatalf("CalculateCost() error = %v", err)
	}
	if before == after || !approx(after, 1) {
		t.Errorf("CalculateCost() after reload = %v, want 1 (was %v)", after, before)
	}
}

func TestCalculateCost_Concurrent(t *testing.T) {
	c := newTestCalculator(t, DefaultConfig())
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				r := record(base.Add(time.Duration(i)*time.Second), "claude-3-sonnet", int64(100+g%2), 100, "")
				if _, err := c.CalculateCost(&r); err != nil {
					t.Errorf("CalculateCost() error = %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if got := c.CacheStats().Entries; got != 100 {
		t.Errorf("cache entries = %d, want 100", got)
	}
}

func TestEffectiveCost_PrefersStoredCost(t *testing.T) {
	c := newTestCalculator(t, DefaultConfig())
	r := record(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "unknown-model", 10, 10, "")
	r.Cost = 2.5

	got, err := c.EffectiveCost(&r)
	if err != nil {
		t.Fatalf("EffectiveCost() error = %v", err)
	}
	if got != 2.5 {
		t.Errorf("EffectiveCost() = %v, want 2.5", got)
	}
}

func TestEnrichCosts(t *testing.T) {
	c := newTestCalculator(t, DefaultConfig())
	records := []models.UsageRecord{
		record(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "claude-3-opus", 1000, 0, ""),
	}
	enriched, err := c.EnrichCosts(records)
	if err != nil {
		t.Fatalf("EnrichCosts() error = %v", err)
	}
	if !approx(enriched[0].Cost, 0.015) {
		t.Errorf("enriched cost = %v, want 0.015", enriched[0].Cost)
	}
	if records[0].Cost != 0 {
		t.Error("EnrichCosts() modified its input")
	}
}
