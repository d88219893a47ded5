package ingest

import "github.com/menthorq/tradecore/internal/types"

// dedupeWindow is a bounded set of the last N seen DedupeKeys, implementing
// the idempotent-ingestion rule from spec.md §3/§4.1: "duplicates by
// (symbol, timestamp, bar_index, variant) are discarded... dedupe window is
// the last 10 000 events per chart." It is a ring buffer of keys plus a set
// for O(1) membership, evicting the oldest key as new ones arrive.
type dedupeWindow struct {
	capacity int
	seen     map[types.DedupeKey]struct{}
	order    []types.DedupeKey
	head     int
}

func newDedupeWindow(capacity int) *dedupeWindow {
	if capacity <= 0 {
		capacity = 10000
	}
	return &dedupeWindow{
		capacity: capacity,
		seen:     make(map[types.DedupeKey]struct{}, capacity),
		order:    make([]types.DedupeKey, 0, capacity),
	}
}

// seenOrAdd reports whether key was already present; if not, it is recorded
// and the oldest key is evicted once the window is full.
func (d *dedupeWindow) seenOrAdd(key types.DedupeKey) bool {
	if _, ok := d.seen[key]; ok {
		return true
	}
	if len(d.order) < d.capacity {
		d.order = append(d.order, key)
	} else {
		evict := d.order[d.head]
		delete(d.seen, evict)
		d.order[d.head] = key
		d.head = (d.head + 1) % d.capacity
	}
	d.seen[key] = struct{}{}
	return false
}
