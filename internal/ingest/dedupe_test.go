package ingest

import (
	"testing"

	"github.com/menthorq/tradecore/internal/types"
)

func key(sym string, i int64) types.DedupeKey {
	return types.RecordMeta{Symbol: sym, BarIndex: i, Variant: types.VariantBaseBar}.Key()
}

func TestDedupeWindowDetectsRepeat(t *testing.T) {
	d := newDedupeWindow(4)
	k := key("ES", 1)
	if d.seenOrAdd(k) {
		t.Fatalf("expected first occurrence to be novel")
	}
	if !d.seenOrAdd(k) {
		t.Fatalf("expected repeat to be reported as seen")
	}
}

func TestDedupeWindowEvictsOldest(t *testing.T) {
	d := newDedupeWindow(2)
	k1, k2, k3 := key("ES", 1), key("ES", 2), key("ES", 3)

	d.seenOrAdd(k1)
	d.seenOrAdd(k2)
	d.seenOrAdd(k3) // evicts k1

	if !d.seenOrAdd(k2) {
		t.Fatalf("expected k2 to still be within the window")
	}
	if d.seenOrAdd(k1) {
		t.Fatalf("expected k1 to have been evicted and treated as novel again")
	}
}
