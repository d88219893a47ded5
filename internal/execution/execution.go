// Package execution implements the hard-block and soft-modifier rules
// (spec.md §4.7) that sit between an analyzer-proposed side and the
// SignalFuser's final sizing. Every rule reads only the already-composed
// Snapshot plus the MenthorQ-Distance outcome and the LeadershipEngine's
// gate for the proposed side; it holds no state of its own.
package execution

import (
	"github.com/menthorq/tradecore/internal/config"
	"github.com/menthorq/tradecore/internal/leadership"
	"github.com/menthorq/tradecore/internal/strategy"
	"github.com/menthorq/tradecore/internal/types"
)

// blindSpotBaseTicks / blindSpotHighVixTicks are the fixed proximity
// thresholds from spec.md §4.7 step 1; the wider threshold applies in
// HIGH/EXTREME vix regimes.
const (
	blindSpotBaseTicks    = 5.0
	blindSpotHighVixTicks = 7.5
	gammaWallSoftFactor   = 2.0
	dealersBiasThreshold  = 0.3
	wideSpreadFactor      = 2.0
)

// Result is the outcome of evaluating one proposed side against the hard
// blocks and soft modifiers. Blocked decisions must emit NO_TRADE
// regardless of analyzer scores.
type Result struct {
	Blocked   bool
	BlockedBy string // hard-block rule name for the rationale trail, empty if not blocked

	// SizeMultiplier is the product of the proximity/bias/spread soft
	// modifiers (spec.md §4.7 soft modifiers 1-3, 6). The vix size cap and
	// leadership bonus are the same scalars the fuser already applies as
	// score modulators (spec.md §4.8 step 2: vix_mult, leader_bonus), so the
	// fuser folds them into the final size_multiplier itself rather than
	// applying them twice (see DESIGN.md).
	SizeMultiplier float64

	Leadership leadership.Gate
	Notes      []string
}

// Evaluate runs every hard block and soft modifier from spec.md §4.7 for a
// proposed side, in rule order, short-circuiting on the first hard block.
func Evaluate(side types.Side, snap types.Snapshot, mq *strategy.MqSignal, mqOutcome strategy.Outcome, lead *leadership.Engine, cfg *config.Config) Result {
	tickSize := tickSizeFor(cfg, snap.Symbol)

	if blocked, name := blindSpotBlock(snap, tickSize); blocked {
		return Result{Blocked: true, BlockedBy: name}
	}

	if mqOutcome == strategy.OutcomeExpired {
		return Result{Blocked: true, BlockedBy: "level_expired"}
	}

	if snap.Prior.CooldownRemaining > 0 {
		return Result{Blocked: true, BlockedBy: "cooldown_active"}
	}

	gate := lead.GateForES(side, snap.VixRegime, cfg)
	if !gate.Allow {
		return Result{Blocked: true, BlockedBy: gate.Reason, Leadership: gate}
	}

	if blocked := miaGateBlocks(side, snap, cfg); blocked {
		return Result{Blocked: true, BlockedBy: "mia_gate"}
	}

	size := 1.0
	var notes []string

	if gammaWallWithinSoftRange(snap, cfg, tickSize) {
		size *= 0.5
		notes = append(notes, "soft: gamma wall within 2x tolerance (x0.5)")
	}
	if adverseSwingWithin8Ticks(side, snap, cfg, tickSize) {
		size *= 0.7
		notes = append(notes, "soft: adverse swing level within 8 ticks (x0.7)")
	}
	if dealersBiasOpposes(side, snap) {
		size *= 0.8
		notes = append(notes, "soft: dealers_bias opposes side (x0.8)")
	}
	if wideSpread(snap) {
		size *= 0.8
		notes = append(notes, "soft: wide spread vs 60s median (x0.8)")
	}

	return Result{SizeMultiplier: size, Leadership: gate, Notes: notes}
}

func tickSizeFor(cfg *config.Config, symbol string) float64 {
	if spec, ok := cfg.SymbolSpecs[symbol]; ok {
		return spec.TickSize
	}
	return 0.25
}

// blindSpotBlock implements spec.md §4.7 step 1: any blind-spot level within
// 5 ticks (7.5 in HIGH/EXTREME vix) hard-blocks regardless of side.
func blindSpotBlock(snap types.Snapshot, tickSize float64) (bool, string) {
	if tickSize <= 0 {
		return false, ""
	}
	tol := blindSpotBaseTicks
	if snap.VixRegime == types.VixHigh || snap.VixRegime == types.VixExtreme {
		tol = blindSpotHighVixTicks
	}
	for name, lvl := range snap.Levels.Levels {
		if types.ClassOf(name) != types.ClassBlindSpot {
			continue
		}
		dist := absf(snap.CurrentPrice-lvl.Price) / tickSize
		if dist <= tol {
			return true, "blind_spot_proximity"
		}
	}
	return false, ""
}

// miaGateBlocks implements spec.md §4.7 step 5.
func miaGateBlocks(side types.Side, snap types.Snapshot, cfg *config.Config) bool {
	switch side {
	case types.SideLong:
		return snap.MiaBullish < cfg.Thresholds.MiaLong
	case types.SideShort:
		return snap.MiaBullish > cfg.Thresholds.MiaShort
	default:
		return false
	}
}

// gammaWallWithinSoftRange implements spec.md §4.7 soft modifier 1: a
// gamma-wall-class level within 2x the configured tolerance.
func gammaWallWithinSoftRange(snap types.Snapshot, cfg *config.Config, tickSize float64) bool {
	if tickSize <= 0 {
		return false
	}
	tol := cfg.Tolerances.GammaWall * gammaWallSoftFactor
	for name, lvl := range snap.Levels.Levels {
		if !isGammaWallName(name) {
			continue
		}
		dist := absf(snap.CurrentPrice-lvl.Price) / tickSize
		if dist <= tol {
			return true
		}
	}
	return false
}

func isGammaWallName(name types.LevelName) bool {
	switch name {
	case types.GammaWall0DTE, types.CallSupport0DTE, types.PutSupport0DTE, types.CallResistance, types.PutSupport:
		return true
	default:
		return false
	}
}

// adverseSwingWithin8Ticks implements spec.md §4.7 soft modifier 2: a swing
// level within 8 ticks that sits on the unfavorable side of the proposed
// move (ahead of price for LONG, behind for SHORT).
func adverseSwingWithin8Ticks(side types.Side, snap types.Snapshot, cfg *config.Config, tickSize float64) bool {
	if tickSize <= 0 {
		return false
	}
	for name, lvl := range snap.Levels.Levels {
		if types.ClassOf(name) != types.ClassSwing {
			continue
		}
		dist := absf(snap.CurrentPrice-lvl.Price) / tickSize
		if dist > cfg.Tolerances.Swing {
			continue
		}
		switch side {
		case types.SideLong:
			if lvl.Price > snap.CurrentPrice {
				return true
			}
		case types.SideShort:
			if lvl.Price < snap.CurrentPrice {
				return true
			}
		}
	}
	return false
}

// dealersBiasOpposes implements spec.md §4.7 soft modifier 3.
func dealersBiasOpposes(side types.Side, snap types.Snapshot) bool {
	switch side {
	case types.SideLong:
		return snap.DealersBias < -dealersBiasThreshold
	case types.SideShort:
		return snap.DealersBias > dealersBiasThreshold
	default:
		return false
	}
}

// wideSpread implements spec.md §4.7 soft modifier 6.
func wideSpread(snap types.Snapshot) bool {
	f := snap.Bar.Features
	if f.Spread == nil || f.SpreadMedian60s == nil || *f.SpreadMedian60s <= 0 {
		return false
	}
	return *f.Spread > wideSpreadFactor*(*f.SpreadMedian60s)
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
