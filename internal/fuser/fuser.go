// Package fuser implements the SignalFuser (spec.md §4.8): it blends the
// BattleNavale and MenthorQ-Distance analyzer outputs with the structure
// composite into final_score, applies the execution rules from
// internal/execution, and emits the fully-populated TradingDecision
// including the E/U/L plan from internal/risk.
package fuser

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/menthorq/tradecore/internal/config"
	"github.com/menthorq/tradecore/internal/execution"
	"github.com/menthorq/tradecore/internal/leadership"
	"github.com/menthorq/tradecore/internal/metrics"
	"github.com/menthorq/tradecore/internal/risk"
	"github.com/menthorq/tradecore/internal/strategy"
	"github.com/menthorq/tradecore/internal/types"
)

// Fuser holds no state of its own; every input arrives via Fuse's
// parameters so a decision cycle is a pure function of its Snapshot.
type Fuser struct {
	cfg *config.Config
}

// New builds a Fuser against the given configuration.
func New(cfg *config.Config) *Fuser {
	return &Fuser{cfg: cfg}
}

// Fuse runs one full decision cycle for a symbol: it fuses the analyzer
// votes, applies the hard blocks and score modulators, and emits the final
// TradingDecision, including E/U/L if a trade clears the entry threshold.
func (f *Fuser) Fuse(snap types.Snapshot, mq *strategy.MqSignal, mqOutcome strategy.Outcome, bn strategy.Result, lead *leadership.Engine, gate *risk.DailyGate) types.TradingDecision {
	cfg := f.cfg
	w := cfg.Weights

	mqScore := 0.0
	var mqVote types.AnalyzerVote
	if mq != nil {
		mqScore = mq.Score
		mqVote = mq.Vote()
	}
	bnVote := bn.Vote()
	structScore := structureScore(snap)

	finalScore := w.MQ*mqScore + w.OF*bnVote.Score + w.Structure*structScore

	side := types.SideNone
	switch {
	case finalScore > 0:
		side = types.SideLong
	case finalScore < 0:
		side = types.SideShort
	}

	decision := types.TradingDecision{
		DecisionID: uuid.New().String(),
		Timestamp:  snap.AsOf,
		Symbol:     snap.Symbol,
		Action:    types.ActionNoTrade,
		Components: types.Components{
			MQ: mqScore, OF: bnVote.Score, Structure: structScore, MIA: snap.MiaBullish,
		},
		Leadership: types.LeadershipInfo{
			LS: snap.Leadership.LS, Beta: snap.Leadership.Beta, Corr30s: snap.Leadership.RollCorr30s,
		},
		Rationale: append(append([]string{}, mqVote.Rationale...), bnVote.Rationale...),
	}

	if side == types.SideNone {
		decision.BlockedBy = append(decision.BlockedBy, "no_directional_signal")
		metrics.Decisions.WithLabelValues(snap.Symbol, decision.Action.String()).Inc()
		return decision
	}

	if allow, reason := gate.Allow(snap.AsOf); !allow {
		decision.BlockedBy = append(decision.BlockedBy, reason)
		metrics.BlockedBy.WithLabelValues(snap.Symbol, reason).Inc()
		metrics.Decisions.WithLabelValues(snap.Symbol, decision.Action.String()).Inc()
		return decision
	}

	cooldown := gate.CooldownRemaining(snap.AsOf)
	snap.Prior.CooldownRemaining = cooldown

	exec := execution.Evaluate(side, snap, mq, mqOutcome, lead, cfg)
	decision.Leadership.Reason = exec.Leadership.Reason
	if exec.Blocked {
		decision.BlockedBy = append(decision.BlockedBy, exec.BlockedBy)
		metrics.BlockedBy.WithLabelValues(snap.Symbol, exec.BlockedBy).Inc()
		metrics.Decisions.WithLabelValues(snap.Symbol, decision.Action.String()).Inc()
		return decision
	}

	vixMult := vixMultiplier(cfg, snap.VixRegime)
	leaderBonus := exec.Leadership.Bonus
	miaMult := miaMultiplier(side, snap.MiaBullish)

	decision.Modifiers = types.Modifiers{
		VixMult: vixMult, LeaderBonus: leaderBonus, DealersBiasAdj: snap.DealersBias,
	}

	effective := finalScore * vixMult * miaMult * leaderBonus
	absEffective := absf(effective)
	decision.Score = absEffective
	if absEffective < cfg.Thresholds.Entry {
		decision.BlockedBy = append(decision.BlockedBy, "below_entry_threshold")
		metrics.BlockedBy.WithLabelValues(snap.Symbol, "below_entry_threshold").Inc()
		metrics.Decisions.WithLabelValues(snap.Symbol, decision.Action.String()).Inc()
		return decision
	}

	quality, qualityMult := qualityBucket(absEffective)
	if quality == types.QualityWeak && !cfg.AllowWeak {
		decision.BlockedBy = append(decision.BlockedBy, "weak_signal_disallowed")
		metrics.BlockedBy.WithLabelValues(snap.Symbol, "weak_signal_disallowed").Inc()
		metrics.Decisions.WithLabelValues(snap.Symbol, decision.Action.String()).Inc()
		return decision
	}

	if side == types.SideLong {
		decision.Action = types.ActionGoLong
	} else {
		decision.Action = types.ActionGoShort
	}
	decision.Quality = quality
	decision.SizeMultiplier = qualityMult * exec.SizeMultiplier
	decision.Rationale = append(decision.Rationale, exec.Notes...)
	decision.Rationale = append(decision.Rationale, fmt.Sprintf("fuser: final=%.4f effective=%.4f quality=%s", finalScore, effective, quality))

	if mq != nil {
		decision.Level = &types.LevelRef{Name: string(mq.LevelName), Price: mq.LevelPrice, Class: mq.Class}
	}

	tickSize := 0.25
	if spec, ok := cfg.SymbolSpecs[snap.Symbol]; ok {
		tickSize = spec.TickSize
	}
	var atr float64
	var atrOK bool
	if snap.Bar.Features.ATR != nil {
		atr, atrOK = *snap.Bar.Features.ATR, true
	}
	eul := risk.Calculate(side, snap.CurrentPrice, atr, atrOK, snap.Levels, snap.VixRegime, tickSize, cfg)
	decision.EUL = &eul

	metrics.SizeMultiplier.WithLabelValues(snap.Symbol).Set(decision.SizeMultiplier)
	metrics.Decisions.WithLabelValues(snap.Symbol, decision.Action.String()).Inc()
	return decision
}

// vixMultiplier reuses the sizing vix-cap table as the score modulator
// (spec.md §4.8 step 2's vix_mult): both are the same LOW/MID/HIGH/EXTREME
// scalar set, and spec.md defines only one such table (see DESIGN.md).
func vixMultiplier(cfg *config.Config, regime types.VixRegime) float64 {
	if v, ok := cfg.Sizing.VixCaps[regime.String()]; ok {
		return v
	}
	return 1.0
}

// miaMultiplier derives the mia_mult score modulator spec.md §4.8 step 2
// names without defining: 1.0 + 0.3*(mia_bullish signed by side), clamped
// to [0.7, 1.3]. Any reading aligned with the proposed side (as the gate in
// execution.Evaluate already requires) gives a factor of at least 1.0; only
// an opposing reading scales the score down (see DESIGN.md).
func miaMultiplier(side types.Side, miaBullish float64) float64 {
	sign := 1.0
	if side == types.SideShort {
		sign = -1.0
	}
	excess := clamp(miaBullish*sign, -1, 1)
	return clamp(1.0+0.3*excess, 0.7, 1.3)
}

// qualityBucket implements spec.md §4.8 step 4.
func qualityBucket(absEffective float64) (types.QualityBucket, float64) {
	switch {
	case absEffective >= 0.85:
		return types.QualityPremium, 2.0
	case absEffective >= 0.75:
		return types.QualityStrong, 1.5
	case absEffective >= 0.70:
		return types.QualityGood, 1.0
	default:
		return types.QualityWeak, 0.5
	}
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
