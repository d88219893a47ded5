// Package levels implements the LevelStore: the latest MenthorQ LevelSet per
// symbol, upserted atomically by the single task that ingests menthorq
// records and read by every decision cycle as an immutable clone
// (spec.md §4.3).
package levels

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/menthorq/tradecore/internal/metrics"
	"github.com/menthorq/tradecore/internal/types"
)

// Store holds one atomic LevelSet pointer per symbol. Writers call Upsert;
// readers call Snapshot, which returns an immutable clone so the caller can
// hold onto it across the rest of a decision cycle without synchronization.
type Store struct {
	windows types.StalenessWindows

	mu     sync.Mutex // guards the symbols map itself, not its contents
	tables map[string]*atomic.Pointer[types.LevelSet]
}

// New creates a LevelStore using the given staleness windows.
func New(windows types.StalenessWindows) *Store {
	return &Store{
		windows: windows,
		tables:  make(map[string]*atomic.Pointer[types.LevelSet]),
	}
}

func (s *Store) tableFor(symbol string) *atomic.Pointer[types.LevelSet] {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[symbol]
	if !ok {
		t = &atomic.Pointer[types.LevelSet]{}
		empty := types.LevelSet{Symbol: symbol, Levels: map[types.LevelName]types.Level{}}
		t.Store(&empty)
		s.tables[symbol] = t
	}
	return t
}

// Upsert merges the gamma/blind-spot/swing level maps from a MenthorQLevels
// record into the symbol's LevelSet, replacing the entire table atomically
// (copy-on-write: the merge builds a new map, then swaps the pointer).
func (s *Store) Upsert(rec types.MenthorQLevelsRecord) {
	t := s.tableFor(rec.M.Symbol)
	prev := t.Load()

	next := types.LevelSet{
		Symbol: rec.M.Symbol,
		Levels: make(map[types.LevelName]types.Level, len(prev.Levels)),
	}
	for k, v := range prev.Levels {
		next.Levels[k] = v
	}
	merge := func(m map[string]float64) {
		for name, price := range m {
			ln := types.LevelName(name)
			next.Levels[ln] = types.Level{Name: ln, Price: price, UpdatedAt: rec.M.Timestamp}
		}
	}
	merge(rec.Gamma)
	merge(rec.BlindSpots)
	merge(rec.Swing)

	t.Store(&next)
}

// Snapshot returns an immutable clone of the symbol's current LevelSet.
// Unknown symbols return an empty, non-nil LevelSet.
func (s *Store) Snapshot(symbol string) types.LevelSet {
	t := s.tableFor(symbol)
	return t.Load().Clone()
}

// StalenessReport classifies every level in the snapshot and updates the
// level_staleness gauge for dashboards (spec.md §4.3). Call once per
// decision cycle, after Snapshot.
func (s *Store) StalenessReport(symbol string, ls types.LevelSet, now time.Time) map[types.StalenessClass]int {
	counts := map[types.StalenessClass]int{}
	for _, lvl := range ls.Levels {
		class := types.Staleness(now, lvl, s.windows)
		counts[class]++
	}
	metrics.LevelStaleness.WithLabelValues(symbol, types.Fresh.String()).Set(float64(counts[types.Fresh]))
	metrics.LevelStaleness.WithLabelValues(symbol, types.Stale.String()).Set(float64(counts[types.Stale]))
	metrics.LevelStaleness.WithLabelValues(symbol, types.Expired.String()).Set(float64(counts[types.Expired]))
	return counts
}
