// Package pricing holds per-model price history and resolves the price in
// effect at a given instant.
package pricing

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/j-veylop/usage-analytics/internal/models"
)

type entry struct {
	info models.PricingInfo
	seq  uint64
}

// Catalog maps each model to its price history, sorted by effective date.
type Catalog struct {
	mu      sync.RWMutex
	byModel map[string][]entry
	nextSeq uint64
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{byModel: make(map[string][]entry)}
}

// Load merges entries into the catalog. Loading the same history twice
// keeps both copies; resolution still returns the same rates.
func (c *Catalog) Load(entries []models.PricingInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	touched := make(map[string]struct{})
	for _, p := range entries {
		c.byModel[p.Model] = append(c.byModel[p.Model], entry{info: p, seq: c.nextSeq})
		c.nextSeq++
		touched[p.Model] = struct{}{}
	}

	for model := range touched {
		list := c.byModel[model]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].info.EffectiveDate.Before(list[j].info.EffectiveDate)
		})
	}
}

// Resolve returns the active entry with the latest effective date not after
// at. Among entries sharing that date the most recently loaded one wins.
func (c *Catalog) Resolve(model string, at time.Time) (models.PricingInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list, ok := c.byModel[model]
	if !ok {
		return models.PricingInfo{}, fmt.Errorf("%w: unknown model %q", models.ErrNoPricingFound, model)
	}

	best := -1
	for i := len(list) - 1; i >= 0; i-- {
		e := list[i]
		if !e.info.ValidAt(at) {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		if !e.info.EffectiveDate.Equal(list[best].info.EffectiveDate) {
			break
		}
		if e.seq > list[best].seq {
			best = i
		}
	}

	if best == -1 {
		return models.PricingInfo{}, fmt.Errorf("%w: model %q at %s",
			models.ErrNoPricingFound, model, at.UTC().Format(time.RFC3339))
	}
	return list[best].info, nil
}

// Models returns the known model names in lexical order.
func (c *Catalog) Models() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.byModel))
	for name := range c.byModel {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns a copy of a model's price history, oldest first.
func (c *Catalog) Entries(model string) []models.PricingInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list := c.byModel[model]
	out := make([]models.PricingInfo, len(list))
	for i, e := range list {
		out[i] = e.info
	}
	return out
}

// Len returns the number of entries across all models.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, list := range c.byModel {
		n += len(list)
	}
	return n
}
