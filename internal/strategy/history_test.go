package strategy

import (
	"testing"

	"github.com/menthorq/tradecore/internal/types"
)

func bar(idx int64, o, h, l, c float64) types.Bar {
	return types.Bar{BarIndex: idx, Open: o, High: h, Low: l, Close: c}
}

func TestBarHistoryCapsAtCapacity(t *testing.T) {
	h := newBarHistory(2)
	h.push(bar(1, 0, 0, 0, 0))
	h.push(bar(2, 0, 0, 0, 0))
	h.push(bar(3, 0, 0, 0, 0))

	all := h.last(10)
	if len(all) != 2 {
		t.Fatalf("expected history capped to 2, got %d", len(all))
	}
	if all[0].BarIndex != 2 || all[1].BarIndex != 3 {
		t.Fatalf("expected the oldest bar to have been evicted, got %+v", all)
	}
}

func TestBarHistoryCurrent(t *testing.T) {
	h := newBarHistory(5)
	if _, ok := h.current(); ok {
		t.Fatalf("expected no current bar before any push")
	}
	h.push(bar(1, 0, 0, 0, 0))
	h.push(bar(2, 0, 0, 0, 0))
	cur, ok := h.current()
	if !ok || cur.BarIndex != 2 {
		t.Fatalf("expected current to be the most recently pushed bar, got %+v %v", cur, ok)
	}
}

func TestBarHistoryLastFewerThanAvailable(t *testing.T) {
	h := newBarHistory(5)
	h.push(bar(1, 0, 0, 0, 0))
	got := h.last(3)
	if len(got) != 1 {
		t.Fatalf("expected last(3) to return only what's available, got %d", len(got))
	}
}
