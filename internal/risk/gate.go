package risk

import (
	"time"

	"github.com/menthorq/tradecore/internal/config"
)

// TradeOutcome records the realized P&L of a closed trade, in ticks, for
// the daily risk gates to consume. A negative Ticks value is a loss.
type TradeOutcome struct {
	Ticks   float64
	ClosedAt time.Time
}

// DailyGate tracks the session's trade count, realized loss, and the
// current consecutive-loss streak, resetting whenever a new session day
// begins (spec.md §6 risk config: daily_loss_limit, daily_trades_limit,
// max_consecutive_losses). Exactly one task owns a DailyGate per symbol.
type DailyGate struct {
	cfg *config.Config

	day                time.Time
	trades             int
	realizedLoss       float64
	consecutiveLosses  int
	lastStopOutAt      time.Time
}

// NewDailyGate builds a DailyGate against the given risk configuration.
func NewDailyGate(cfg *config.Config) *DailyGate {
	return &DailyGate{cfg: cfg}
}

// RecordOutcome folds a closed trade's result into the day's running
// totals, rolling over to a fresh day if the trade closed on a new
// calendar date (UTC).
func (g *DailyGate) RecordOutcome(o TradeOutcome) {
	g.rolloverIfNewDay(o.ClosedAt)
	g.trades++
	if o.Ticks < 0 {
		g.realizedLoss += -o.Ticks
		g.consecutiveLosses++
		g.lastStopOutAt = o.ClosedAt
	} else {
		g.consecutiveLosses = 0
	}
}

func (g *DailyGate) rolloverIfNewDay(now time.Time) {
	y1, m1, d1 := now.UTC().Date()
	y2, m2, d2 := g.day.UTC().Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return
	}
	g.day = now
	g.trades = 0
	g.realizedLoss = 0
	g.consecutiveLosses = 0
}

// CooldownRemaining reports how much of cooldown_after_stop is left as of
// now, or zero if no cooldown is active.
func (g *DailyGate) CooldownRemaining(now time.Time) time.Duration {
	if g.lastStopOutAt.IsZero() {
		return 0
	}
	elapsed := now.Sub(g.lastStopOutAt)
	remaining := g.cfg.Risk.CooldownAfterStop - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Allow reports whether a new trade may be opened under the day's risk
// gates: the daily trade count, daily realized loss, and consecutive-loss
// limits. A zero-valued limit in config means "no limit" (spec.md §6).
func (g *DailyGate) Allow(now time.Time) (bool, string) {
	g.rolloverIfNewDay(now)
	if g.cfg.Risk.DailyTradesLimit > 0 && g.trades >= g.cfg.Risk.DailyTradesLimit {
		return false, "daily_trades_limit"
	}
	if g.cfg.Risk.DailyLossLimit > 0 && g.realizedLoss >= g.cfg.Risk.DailyLossLimit {
		return false, "daily_loss_limit"
	}
	if g.cfg.Risk.MaxConsecutiveLosses > 0 && g.consecutiveLosses >= g.cfg.Risk.MaxConsecutiveLosses {
		return false, "max_consecutive_losses"
	}
	return true, ""
}
