package fuser

import (
	"testing"
	"time"

	"github.com/menthorq/tradecore/internal/config"
	"github.com/menthorq/tradecore/internal/leadership"
	"github.com/menthorq/tradecore/internal/risk"
	"github.com/menthorq/tradecore/internal/strategy"
	"github.com/menthorq/tradecore/internal/types"
)

func emptySnap(now time.Time) types.Snapshot {
	return types.Snapshot{
		Symbol:       "ES",
		CurrentPrice: 5000,
		VixRegime:    types.VixLow,
		Levels:       types.LevelSet{Symbol: "ES", Levels: map[types.LevelName]types.Level{}},
		MiaBullish:   0.5,
		AsOf:         now,
		Bar:          types.Bar{Symbol: "ES"},
	}
}

func TestFuseNoDirectionalSignal(t *testing.T) {
	cfg := config.Default()
	f := New(cfg)
	now := time.Date(2026, 7, 31, 14, 0, 0, 0, time.UTC)
	lead := leadership.NewEngine(64)
	gate := risk.NewDailyGate(cfg)

	decision := f.Fuse(emptySnap(now), nil, strategy.OutcomeNone, strategy.Result{}, lead, gate)
	if decision.Action != types.ActionNoTrade {
		t.Fatalf("expected NO_TRADE, got %v", decision.Action)
	}
	if len(decision.BlockedBy) == 0 || decision.BlockedBy[0] != "no_directional_signal" {
		t.Fatalf("expected no_directional_signal, got %v", decision.BlockedBy)
	}
}

func TestFuseGoLongAboveEntryThreshold(t *testing.T) {
	cfg := config.Default()
	f := New(cfg)
	now := time.Date(2026, 7, 31, 14, 0, 0, 0, time.UTC)
	lead := leadership.NewEngine(64)
	gate := risk.NewDailyGate(cfg)

	mq := &strategy.MqSignal{Side: types.SideLong, Score: 1.0, LevelName: types.PutSupport, LevelPrice: 4999.5, Class: "call_put_wall"}
	bn := strategy.Result{Score: 0.5, Confidence: 0.8}

	decision := f.Fuse(emptySnap(now), mq, strategy.OutcomeFound, bn, lead, gate)
	if decision.Action != types.ActionGoLong {
		t.Fatalf("expected GO_LONG, got %v blocked_by=%v", decision.Action, decision.BlockedBy)
	}
	if decision.Quality != types.QualityStrong {
		t.Fatalf("expected STRONG quality, got %v (score=%v)", decision.Quality, decision.Score)
	}
	if want := 1.5; decision.SizeMultiplier != want {
		t.Fatalf("size_multiplier = %v, want %v", decision.SizeMultiplier, want)
	}
	if decision.EUL == nil {
		t.Fatalf("expected an EUL plan on a GO decision")
	}
	if decision.EUL.Entry != 5000 {
		t.Fatalf("EUL entry = %v, want 5000", decision.EUL.Entry)
	}
}

func TestFuseGoShortScoreIsNonNegative(t *testing.T) {
	cfg := config.Default()
	f := New(cfg)
	now := time.Date(2026, 7, 31, 14, 0, 0, 0, time.UTC)
	lead := leadership.NewEngine(64)
	gate := risk.NewDailyGate(cfg)

	snap := emptySnap(now)
	snap.MiaBullish = -0.5 // aligned with the short side so the mia gate doesn't block

	mq := &strategy.MqSignal{Side: types.SideShort, Score: -1.0, LevelName: types.CallResistance, LevelPrice: 5000.5, Class: "call_put_wall"}
	bn := strategy.Result{Score: -0.5, Confidence: 0.8}

	decision := f.Fuse(snap, mq, strategy.OutcomeFound, bn, lead, gate)
	if decision.Action != types.ActionGoShort {
		t.Fatalf("expected GO_SHORT, got %v blocked_by=%v", decision.Action, decision.BlockedBy)
	}
	if decision.Score < 0 || decision.Score > 1 {
		t.Fatalf("expected score in [0,1] per the wire schema, got %v", decision.Score)
	}
}

func TestFuseBelowEntryThresholdBlocks(t *testing.T) {
	cfg := config.Default()
	f := New(cfg)
	now := time.Date(2026, 7, 31, 14, 0, 0, 0, time.UTC)
	lead := leadership.NewEngine(64)
	gate := risk.NewDailyGate(cfg)

	snap := emptySnap(now)
	snap.MiaBullish = 0.21 // just above MiaLong so execution doesn't hard-block
	mq := &strategy.MqSignal{Side: types.SideLong, Score: 0.3, LevelName: types.Gex(1), LevelPrice: 5000.1, Class: "gex"}
	bn := strategy.Result{Score: 0.1}

	decision := f.Fuse(snap, mq, strategy.OutcomeFound, bn, lead, gate)
	if decision.Action != types.ActionNoTrade {
		t.Fatalf("expected NO_TRADE below entry threshold, got %v", decision.Action)
	}
	found := false
	for _, b := range decision.BlockedBy {
		if b == "below_entry_threshold" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected below_entry_threshold in blocked_by, got %v", decision.BlockedBy)
	}
}

func TestFuseDailyGateBlocksBeforeExecution(t *testing.T) {
	cfg := config.Default()
	cfg.Risk.DailyTradesLimit = 1
	f := New(cfg)
	now := time.Date(2026, 7, 31, 14, 0, 0, 0, time.UTC)
	lead := leadership.NewEngine(64)
	gate := risk.NewDailyGate(cfg)
	gate.RecordOutcome(risk.TradeOutcome{Ticks: 4, ClosedAt: now})

	mq := &strategy.MqSignal{Side: types.SideLong, Score: 1.0, LevelName: types.PutSupport, LevelPrice: 4999.5}
	decision := f.Fuse(emptySnap(now), mq, strategy.OutcomeFound, strategy.Result{Score: 0.5}, lead, gate)
	if decision.Action != types.ActionNoTrade {
		t.Fatalf("expected NO_TRADE, got %v", decision.Action)
	}
	if len(decision.BlockedBy) == 0 || decision.BlockedBy[0] != "daily_trades_limit" {
		t.Fatalf("expected daily_trades_limit, got %v", decision.BlockedBy)
	}
}

// baseSnapshot and strongLong back the end-to-end scenario tests below,
// mirroring the concrete setups from spec.md §8.
func baseSnapshot(now time.Time, price float64) types.Snapshot {
	return types.Snapshot{
		Symbol:       "ES",
		CurrentPrice: price,
		Bar:          types.Bar{Symbol: "ES", BarIndex: 1, Close: price, Finalized: true, FinalizedAt: now},
		Levels:       types.LevelSet{Symbol: "ES", Levels: map[types.LevelName]types.Level{}},
		VixRegime:    types.VixMid,
		MiaBullish:   0.45,
		AsOf:         now,
	}
}

func strongLong() strategy.Result {
	return strategy.Result{Score: 0.9, Confidence: 0.9, OrderflowScore: 0.8}
}

func TestFuseBlocksOnBlindSpotProximity(t *testing.T) {
	cfg := config.Default()
	cfg.SymbolSpecs = map[string]config.SymbolSpec{"ES": {TickSize: 0.25}}
	now := time.Date(2026, 1, 1, 14, 0, 0, 0, time.UTC)

	snap := baseSnapshot(now, 4510.00)
	snap.VixRegime = types.VixHigh
	// 4 ticks away, inside both the base (5) and HIGH-vix (7.5) tolerance.
	snap.Levels.Levels[types.BlindSpot(1)] = types.Level{Name: types.BlindSpot(1), Price: 4509.00, UpdatedAt: now}

	mq := &strategy.MqSignal{Side: types.SideLong, Score: 0.83}
	f := New(cfg)
	gate := risk.NewDailyGate(cfg)
	lead := leadership.NewEngine(64)

	decision := f.Fuse(snap, mq, strategy.OutcomeFound, strongLong(), lead, gate)

	if decision.Action != types.ActionNoTrade {
		t.Fatalf("expected NO_TRADE near a blind spot, got %v", decision.Action)
	}
	if len(decision.BlockedBy) != 1 || decision.BlockedBy[0] != "blind_spot_proximity" {
		t.Fatalf("expected blocked_by=[blind_spot_proximity], got %v", decision.BlockedBy)
	}
	if decision.EUL != nil {
		t.Fatalf("expected no E/U/L plan on a blocked decision")
	}
}

func TestFuseBlocksOnExpiredLevel(t *testing.T) {
	cfg := config.Default()
	cfg.SymbolSpecs = map[string]config.SymbolSpec{"ES": {TickSize: 0.25}}
	now := time.Date(2026, 1, 1, 14, 0, 0, 0, time.UTC)

	levels := types.LevelSet{Symbol: "ES", Levels: map[types.LevelName]types.Level{
		types.GammaWall0DTE: {Name: types.GammaWall0DTE, Price: 4500.00, UpdatedAt: now.Add(-45 * time.Minute)},
	}}
	// 30 min gamma window; 45 min age is past the 60 min expiry.
	mq, outcome := strategy.AnalyzeMenthorQDistance(4500.00, 0.25, levels, types.DefaultStalenessWindows(), cfg, now)
	if outcome != strategy.OutcomeExpired {
		t.Fatalf("expected the fixture to exercise OutcomeExpired, got %v (mq=%v)", outcome, mq)
	}

	snap := baseSnapshot(now, 4500.00)
	snap.Levels = levels
	f := New(cfg)
	gate := risk.NewDailyGate(cfg)
	lead := leadership.NewEngine(64)

	decision := f.Fuse(snap, mq, outcome, strongLong(), lead, gate)

	if decision.Action != types.ActionNoTrade {
		t.Fatalf("expected NO_TRADE on an expired decisive level, got %v", decision.Action)
	}
	if len(decision.BlockedBy) != 1 || decision.BlockedBy[0] != "level_expired" {
		t.Fatalf("expected blocked_by=[level_expired], got %v", decision.BlockedBy)
	}
}

func TestFuseBlocksDuringCooldown(t *testing.T) {
	cfg := config.Default()
	cfg.SymbolSpecs = map[string]config.SymbolSpec{"ES": {TickSize: 0.25}}
	now := time.Date(2026, 1, 1, 14, 0, 0, 0, time.UTC)

	gate := risk.NewDailyGate(cfg)
	gate.RecordOutcome(risk.TradeOutcome{Ticks: -10, ClosedAt: now.Add(-10 * time.Minute)})

	snap := baseSnapshot(now, 4498.00)
	mq := &strategy.MqSignal{Side: types.SideLong, Score: 0.83}
	f := New(cfg)
	lead := leadership.NewEngine(64)

	decision := f.Fuse(snap, mq, strategy.OutcomeFound, strongLong(), lead, gate)

	if decision.Action != types.ActionNoTrade {
		t.Fatalf("expected NO_TRADE inside the 15 min cooldown (stopped out 10 min ago), got %v", decision.Action)
	}
	if len(decision.BlockedBy) != 1 || decision.BlockedBy[0] != "cooldown_active" {
		t.Fatalf("expected blocked_by=[cooldown_active], got %v", decision.BlockedBy)
	}
}

func TestFuseReplayingSameSnapshotIsDeterministic(t *testing.T) {
	cfg := config.Default()
	cfg.SymbolSpecs = map[string]config.SymbolSpec{"ES": {TickSize: 0.25}}
	now := time.Date(2026, 1, 1, 14, 0, 0, 0, time.UTC)

	snap := baseSnapshot(now, 4498.00)
	snap.Levels.Levels[types.PutSupport] = types.Level{Name: types.PutSupport, Price: 4498.00, UpdatedAt: now}
	mq := &strategy.MqSignal{Side: types.SideLong, Score: 0.83, LevelName: types.PutSupport, LevelPrice: 4498.00, Class: "put_support"}

	f := New(cfg)
	d1 := f.Fuse(snap, mq, strategy.OutcomeFound, strongLong(), leadership.NewEngine(64), risk.NewDailyGate(cfg))
	d2 := f.Fuse(snap, mq, strategy.OutcomeFound, strongLong(), leadership.NewEngine(64), risk.NewDailyGate(cfg))

	if d1.Action != d2.Action || d1.Score != d2.Score || d1.SizeMultiplier != d2.SizeMultiplier {
		t.Fatalf("expected replaying an identical snapshot to produce the same decision, got %+v vs %+v", d1, d2)
	}
}
