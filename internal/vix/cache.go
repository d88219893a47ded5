// Package vix holds the latest VIX print and derives the regime bucket the
// rest of the pipeline gates on (spec.md §3).
package vix

import (
	"sync/atomic"
	"time"

	"github.com/menthorq/tradecore/internal/types"
)

type reading struct {
	close     float64
	updatedAt time.Time
}

// Cache is a single-writer/multi-reader holder of the latest VIX point,
// following the same atomic-pointer pattern as levels.Store.
type Cache struct {
	current atomic.Pointer[reading]
}

// New creates a Cache with no reading yet (regime defaults to LOW until the
// first vix record arrives, per spec.md's warmup behavior).
func New() *Cache {
	c := &Cache{}
	c.current.Store(&reading{})
	return c
}

// Update records a new VIX point. Only the chart-8 ingestion task calls this.
func (c *Cache) Update(rec types.VixPointRecord) {
	c.current.Store(&reading{close: rec.Close, updatedAt: rec.M.Timestamp})
}

// Value returns the latest VIX close and when it was last updated.
func (c *Cache) Value() (float64, time.Time) {
	r := c.current.Load()
	return r.close, r.updatedAt
}

// Regime returns the current VixRegime bucket for the latest reading.
func (c *Cache) Regime() types.VixRegime {
	v, _ := c.Value()
	return types.RegimeFor(v)
}
