// Package correlation holds the latest externally supplied ES/NQ
// correlation reading (the Correlation Record variant, spec.md §3), using
// the same single-writer/multi-reader atomic-pointer pattern as vix.Cache
// and levels.Store.
package correlation

import (
	"sync/atomic"
	"time"

	"github.com/menthorq/tradecore/internal/types"
)

type reading struct {
	value     float64
	updatedAt time.Time
}

// Cache holds the latest ES/NQ correlation reading. Only the task ingesting
// Correlation records writes to it; every other task reads via Value.
type Cache struct {
	current atomic.Pointer[reading]
}

// New creates an empty Cache.
func New() *Cache {
	c := &Cache{}
	c.current.Store(&reading{})
	return c
}

// Update records a new correlation reading.
func (c *Cache) Update(rec types.CorrelationRecord) {
	c.current.Store(&reading{value: rec.Value, updatedAt: rec.M.Timestamp})
}

// Value returns the latest correlation value and when it was last updated.
func (c *Cache) Value() (float64, time.Time) {
	r := c.current.Load()
	return r.value, r.updatedAt
}
