// Package strategy implements the two directional analyzers — BattleNavale
// (pattern + orderflow) and MenthorQ-Distance (level proximity) — that feed
// the SignalFuser (spec.md §4.5, §4.6).
package strategy

import "github.com/menthorq/tradecore/internal/types"

// barHistory is a capped ring buffer of recently finalized bars, the window
// BattleNavale's pattern scan runs over (spec.md §4.5: "last K bars, default
// 20").
type barHistory struct {
	cap  int
	bars []types.Bar
}

func newBarHistory(capacity int) *barHistory {
	return &barHistory{cap: capacity}
}

func (h *barHistory) push(b types.Bar) {
	h.bars = append(h.bars, b)
	if len(h.bars) > h.cap {
		h.bars = h.bars[len(h.bars)-h.cap:]
	}
}

// last returns the n most recent bars, oldest first, or fewer if history is
// still warming up.
func (h *barHistory) last(n int) []types.Bar {
	if n > len(h.bars) {
		n = len(h.bars)
	}
	return h.bars[len(h.bars)-n:]
}

func (h *barHistory) current() (types.Bar, bool) {
	if len(h.bars) == 0 {
		return types.Bar{}, false
	}
	return h.bars[len(h.bars)-1], true
}
