package risk

import (
	"testing"
	"time"

	"github.com/menthorq/tradecore/internal/config"
)

func TestDailyGateCooldownAfterStop(t *testing.T) {
	cfg := config.Default()
	cfg.Risk.CooldownAfterStop = 10 * time.Minute
	g := NewDailyGate(cfg)

	stopAt := time.Date(2026, 7, 31, 14, 0, 0, 0, time.UTC)
	g.RecordOutcome(TradeOutcome{Ticks: -8, ClosedAt: stopAt})

	if rem := g.CooldownRemaining(stopAt.Add(4 * time.Minute)); rem != 6*time.Minute {
		t.Fatalf("cooldown remaining = %v, want 6m", rem)
	}
	if rem := g.CooldownRemaining(stopAt.Add(11 * time.Minute)); rem != 0 {
		t.Fatalf("cooldown remaining = %v, want 0 after expiry", rem)
	}
}

func TestDailyGateTradesLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Risk.DailyTradesLimit = 2
	g := NewDailyGate(cfg)
	now := time.Date(2026, 7, 31, 14, 0, 0, 0, time.UTC)

	g.RecordOutcome(TradeOutcome{Ticks: 4, ClosedAt: now})
	if allow, _ := g.Allow(now); !allow {
		t.Fatalf("expected allow after 1 trade")
	}
	g.RecordOutcome(TradeOutcome{Ticks: 4, ClosedAt: now})
	if allow, reason := g.Allow(now); allow || reason != "daily_trades_limit" {
		t.Fatalf("expected daily_trades_limit block, got allow=%v reason=%v", allow, reason)
	}
}

func TestDailyGateLossLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Risk.DailyLossLimit = 10
	g := NewDailyGate(cfg)
	now := time.Date(2026, 7, 31, 14, 0, 0, 0, time.UTC)

	g.RecordOutcome(TradeOutcome{Ticks: -12, ClosedAt: now})
	if allow, reason := g.Allow(now); allow || reason != "daily_loss_limit" {
		t.Fatalf("expected daily_loss_limit block, got allow=%v reason=%v", allow, reason)
	}
}

func TestDailyGateConsecutiveLosses(t *testing.T) {
	cfg := config.Default()
	cfg.Risk.MaxConsecutiveLosses = 2
	g := NewDailyGate(cfg)
	now := time.Date(2026, 7, 31, 14, 0, 0, 0, time.UTC)

	g.RecordOutcome(TradeOutcome{Ticks: -4, ClosedAt: now})
	g.RecordOutcome(TradeOutcome{Ticks: -4, ClosedAt: now})
	if allow, reason := g.Allow(now); allow || reason != "max_consecutive_losses" {
		t.Fatalf("expected max_consecutive_losses block, got allow=%v reason=%v", allow, reason)
	}

	// A win resets the streak.
	g.RecordOutcome(TradeOutcome{Ticks: 6, ClosedAt: now})
	if allow, _ := g.Allow(now); !allow {
		t.Fatalf("expected allow after streak reset by a win")
	}
}

func TestDailyGateZeroLimitsMeanNoLimit(t *testing.T) {
	cfg := config.Default() // DailyTradesLimit/DailyLossLimit/MaxConsecutiveLosses all 0
	g := NewDailyGate(cfg)
	now := time.Date(2026, 7, 31, 14, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		g.RecordOutcome(TradeOutcome{Ticks: -100, ClosedAt: now})
	}
	if allow, reason := g.Allow(now); !allow {
		t.Fatalf("expected no limit to apply when config values are zero, got reason=%v", reason)
	}
}

func TestDailyGateRolloverOnNewDay(t *testing.T) {
	cfg := config.Default()
	cfg.Risk.DailyTradesLimit = 1
	g := NewDailyGate(cfg)
	day1 := time.Date(2026, 7, 31, 14, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	g.RecordOutcome(TradeOutcome{Ticks: 4, ClosedAt: day1})
	if allow, reason := g.Allow(day1); allow || reason != "daily_trades_limit" {
		t.Fatalf("expected limit hit on day1, got allow=%v reason=%v", allow, reason)
	}
	if allow, _ := g.Allow(day2); !allow {
		t.Fatalf("expected a new UTC day to reset the trades count")
	}
}
