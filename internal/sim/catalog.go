// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package sim

import (
	"log/slog"
	"math/rand/v2"

	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/event"
)

// CatalogEntry is one sampleable event and its weight.
type CatalogEntry struct {
	Event  event.Event
	Weight float64
}

// Catalog is the weighted set of events a driver samples from each layer.
type Catalog struct {
	entries []CatalogEntry
	total   float64
}

// BuildCatalog resolves the configured events and choices against reg.
//
// A nil list selects every registered event of that kind at the default
// weight. Names may be glob patterns. Entries that match nothing are
// dropped with a warning; a name listed twice keeps its first weight. An
// empty result, or one whose weights sum to zero, is a configuration
// error.
func BuildCatalog(reg *event.Registry, events, choices []config.CatalogItem) (*Catalog, error) {
	c := &Catalog{}
	seen := make(map[string]bool)

	add := func(ev event.Event, weight float64) {
		if seen[ev.Name] {
			slog.Warn("duplicate catalog entry ignored", "event", ev.Name)
			return
		}
		seen[ev.Name] = true
		c.entries = append(c.entries, CatalogEntry{Event: ev, Weight: weight})
		c.total += weight
	}

	resolve := func(items []config.CatalogItem, kind event.Kind) {
		if items == nil {
			for _, ev := range reg.OfKind(kind) {
				add(ev, config.DefaultProbability)
			}
			return
		}
		for _, item := range items {
			matches, err := reg.Match(item.Name)
			if err != nil {
				slog.Warn("dropping unknown catalog entry",
					"event", item.Name,
					"code", event.CodeEventUnknown,
					"error", err)
				continue
			}
			for _, ev := range matches {
				add(ev, item.Weight())
			}
		}
	}

	resolve(events, event.KindEvent)
	resolve(choices, event.KindChoice)

	if len(c.entries) == 0 {
		return nil, config.ErrInvalid("catalog", "no known events or choices are configured")
	}
	if c.total <= 0 {
		return nil, config.ErrInvalid("catalog", "event and choice probabilities sum to zero")
	}
	return c, nil
}

// Entries returns the catalog in resolution order.
func (c *Catalog) Entries() []CatalogEntry {
	return append([]CatalogEntry(nil), c.entries...)
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Sample draws one event with probability proportional to its weight.
func (c *Catalog) Sample(rng *rand.Rand) event.Event {
	target := rng.Float64() * c.total
	for _, e := range c.entries {
		if e.Weight <= 0 {
			continue
		}
		if target < e.Weight {
			return e.Event
		}
		target -= e.Weight
	}
	// Rounding can leave target just above the last positive weight.
	for i := len(c.entries) - 1; i >= 0; i-- {
		if c.entries[i].Weight > 0 {
			return c.entries[i].Event
		}
	}
	return c.entries[len(c.entries)-1].Event
}
