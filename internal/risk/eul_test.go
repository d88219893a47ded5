package risk

import (
	"testing"

	"github.com/menthorq/tradecore/internal/config"
	"github.com/menthorq/tradecore/internal/types"
)

func levelSet(prices map[string]float64) types.LevelSet {
	ls := types.LevelSet{Symbol: "ES", Levels: map[types.LevelName]types.Level{}}
	for name, price := range prices {
		ls.Levels[types.LevelName(name)] = types.Level{Name: types.LevelName(name), Price: price}
	}
	return ls
}

func TestCalculateNoLevelsNoATRUsesMinStopTicks(t *testing.T) {
	cfg := config.Default()
	plan := Calculate(types.SideLong, 5000, 0, false, types.LevelSet{Symbol: "ES"}, types.VixLow, 0.25, cfg)
	if plan.Entry != 5000 {
		t.Fatalf("entry = %v, want 5000", plan.Entry)
	}
	if want := 4998.0; plan.Stop != want {
		t.Fatalf("stop = %v, want %v", plan.Stop, want)
	}
	if plan.RiskTicks != 8 {
		t.Fatalf("risk_ticks = %v, want 8", plan.RiskTicks)
	}
	if plan.Target1 != 5002.0 {
		t.Fatalf("target1 = %v, want 5002.0", plan.Target1)
	}
	if plan.Target2 != 5004.0 {
		t.Fatalf("target2 = %v, want 5004.0", plan.Target2)
	}
}

func TestCalculateStructuralStopAndAdverseCap(t *testing.T) {
	cfg := config.Default()
	cfg.Sizing.MinStopTicks = 2
	levels := levelSet(map[string]float64{
		"swing_1": 4999,  // same side for LONG, 4 ticks away
		"swing_2": 5002,  // adverse, 8 ticks away
		"swing_3": 5010,  // adverse, farther
	})
	plan := Calculate(types.SideLong, 5000, 0, false, levels, types.VixLow, 0.25, cfg)
	if plan.RiskTicks != 5 {
		t.Fatalf("risk_ticks = %v, want 5 (structural 4+1)", plan.RiskTicks)
	}
	if plan.Stop != 4998.75 {
		t.Fatalf("stop = %v, want 4998.75", plan.Stop)
	}
	if plan.Target1 != 5001.25 {
		t.Fatalf("target1 = %v, want 5001.25 (1x risk; the nearest adverse level's cap of 1.75 is wider)", plan.Target1)
	}
	if plan.Target2 != 5002.5 {
		t.Fatalf("target2 = %v, want 5002.5 (2x risk, uncapped by second adverse level)", plan.Target2)
	}
}

func TestCalculateATRStopDominatesWhenWider(t *testing.T) {
	cfg := config.Default()
	cfg.Sizing.MinStopTicks = 2
	plan := Calculate(types.SideLong, 5000, 2.0, true, types.LevelSet{Symbol: "ES"}, types.VixLow, 0.25, cfg)
	// stopAtrK[low] = 0.8, atrTicks = 0.8*2.0/0.25 = 6.4; the stop 4998.4
	// rounds to the 4998.5 tick, so risk_ticks = 1.5/0.25 = 6
	if plan.RiskTicks != 6 {
		t.Fatalf("risk_ticks = %v, want 6", plan.RiskTicks)
	}
}

func TestCalculateShortSideMirrors(t *testing.T) {
	cfg := config.Default()
	plan := Calculate(types.SideShort, 5000, 0, false, types.LevelSet{Symbol: "ES"}, types.VixLow, 0.25, cfg)
	if plan.Stop != 5002.0 {
		t.Fatalf("stop = %v, want 5002.0 (above entry for SHORT)", plan.Stop)
	}
	if plan.Target1 != 4998.0 {
		t.Fatalf("target1 = %v, want 4998.0 (below entry for SHORT)", plan.Target1)
	}
}

func TestRoundToTick(t *testing.T) {
	cases := []struct {
		price, tick, want float64
	}{
		{5000.1, 0.25, 5000.0},
		{5000.2, 0.25, 5000.25},
		{-5000.1, 0.25, -5000.0},
	}
	for _, c := range cases {
		got := roundToTick(c.price, c.tick)
		if got != c.want {
			t.Fatalf("roundToTick(%v, %v) = %v, want %v", c.price, c.tick, got, c.want)
		}
	}
}
