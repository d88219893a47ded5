package types

import "time"

// Leadership is the latest LeadershipEngine reading for an ES/NQ pair
// (spec.md §4.4): combined Z-momentum leadership score, the NQ/ES beta used
// to scale it, and the rolling correlation used to gate it.
type Leadership struct {
	LS          float64 // combined leadership score, weighted 3s/30s/5m
	Beta        float64 // clamped to [0.8, 1.6]
	RollCorr30s float64 // 60-sample rolling correlation
	UpdatedAt   time.Time
}

// PriorTradeState tracks the cooldown gate from the last stop-out.
type PriorTradeState struct {
	LastStopOutAt      time.Time
	CooldownRemaining  time.Duration
}

// Snapshot is the immutable, fully-composed input to one decision cycle
// (spec.md §3): a finalized Bar plus the LevelSet, VIX regime, and
// Leadership state as of that bar's close. Every field is a value or a
// defensive copy so analyzers can read it without synchronization.
type Snapshot struct {
	Symbol       string
	Bar          Bar
	CurrentPrice float64
	Levels       LevelSet
	Vix          float64
	VixRegime    VixRegime
	Leadership   Leadership
	Prior        PriorTradeState
	AsOf         time.Time

	// CorrelationESNQ is the latest externally supplied ES/NQ correlation
	// reading (distinct from Leadership.RollCorr30s, which the
	// LeadershipEngine derives internally from its own return buffers).
	CorrelationESNQ float64

	// DealersBias summarizes options-market positioning in [-1, +1]
	// (spec.md §3 glossary). The closed Record set has no dedicated
	// dealer-positioning variant, so this is derived from the MenthorQ gex
	// level cluster (see internal/levels.DealersBias and DESIGN.md).
	DealersBias float64

	// MiaBullish is the "MIA bullish" gate input spec.md §4.6/§4.7 reference
	// without defining its source; it is mapped 1:1 from DealersBias since
	// both are options-derived sentiment scalars in [-1, +1] (DESIGN.md).
	MiaBullish float64
}
