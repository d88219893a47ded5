package feature

import "testing"

func TestVWAPAccumulatorNoVolumeIsZeroValue(t *testing.T) {
	var a vwapAccumulator
	b := a.bands()
	if b.VWAP != 0 {
		t.Fatalf("expected zero-value bands before any trade, got %+v", b)
	}
}

func TestVWAPAccumulatorSingleTradeHasZeroSpread(t *testing.T) {
	var a vwapAccumulator
	a.addTrade(5000, 100)

	b := a.bands()
	if b.VWAP != 5000 {
		t.Fatalf("expected VWAP to equal the single trade price, got %v", b.VWAP)
	}
	if b.Up1 != 5000 || b.Dn1 != 5000 {
		t.Fatalf("expected zero-width bands with a single price point, got %+v", b)
	}
}

func TestVWAPAccumulatorWeightsByVolume(t *testing.T) {
	var a vwapAccumulator
	a.addTrade(4990, 100) // heavier weight
	a.addTrade(5010, 1)

	b := a.bands()
	if b.VWAP <= 4990 || b.VWAP >= 5000 {
		t.Fatalf("expected VWAP pulled toward the heavier-volume trade, got %v", b.VWAP)
	}
}

func TestVWAPAccumulatorIgnoresNonPositiveVolume(t *testing.T) {
	var a vwapAccumulator
	a.addTrade(5000, 0)
	a.addTrade(5000, -10)

	b := a.bands()
	if b.VWAP != 0 {
		t.Fatalf("expected non-positive volume trades to be ignored, got %+v", b)
	}
}

func TestVWAPAccumulatorBandsOrdered(t *testing.T) {
	var a vwapAccumulator
	a.addTrade(4990, 10)
	a.addTrade(5010, 10)
	a.addTrade(5000, 50)

	b := a.bands()
	if !(b.Dn3 < b.Dn2 && b.Dn2 < b.Dn1 && b.Dn1 < b.VWAP && b.VWAP < b.Up1 && b.Up1 < b.Up2 && b.Up2 < b.Up3) {
		t.Fatalf("expected strictly ordered bands, got %+v", b)
	}
}
