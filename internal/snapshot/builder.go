// Package snapshot composes the immutable decision-cycle input from the
// feature engine's latest Bar plus the shared LevelStore, VixCache, and
// LeadershipEngine state (spec.md §4.2: "a SnapshotBuilder composes the
// Snapshot by merging the latest Bar with LevelStore and VixCache").
package snapshot

import (
	"time"

	"github.com/menthorq/tradecore/internal/correlation"
	"github.com/menthorq/tradecore/internal/leadership"
	"github.com/menthorq/tradecore/internal/levels"
	"github.com/menthorq/tradecore/internal/types"
	"github.com/menthorq/tradecore/internal/vix"
)

// Builder reads from the shared stores; it holds no decision state of its
// own. The symbol's current-price accessor is passed to Build per call.
type Builder struct {
	Levels      *levels.Store
	Vix         *vix.Cache
	Leadership  *leadership.Engine
	Correlation *correlation.Cache
}

// PriceSource is the minimal FeatureEngine surface the builder needs for the
// current-price reading (spec.md §3); satisfied by *feature.Engine.
type PriceSource interface {
	CurrentPrice(now time.Time) (float64, bool)
}

// Build assembles the Snapshot for one finalized Bar. All component reads
// are either atomic-pointer snapshots or value copies, so the result is
// consistent for the lifetime of the decision cycle (spec.md §5).
func (b *Builder) Build(bar types.Bar, prior types.PriorTradeState, price PriceSource) types.Snapshot {
	now := bar.FinalizedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	vixVal, _ := b.Vix.Value()
	levelSet := b.Levels.Snapshot(bar.Symbol)

	currentPrice := bar.Close
	if px, ok := price.CurrentPrice(now); ok {
		currentPrice = px
	}

	corr, _ := b.Correlation.Value()
	bias := levels.DealersBias(levelSet, currentPrice)

	return types.Snapshot{
		Symbol:          bar.Symbol,
		Bar:             bar,
		CurrentPrice:    currentPrice,
		Levels:          levelSet,
		Vix:             vixVal,
		VixRegime:       b.Vix.Regime(),
		Leadership:      b.Leadership.Snapshot(),
		Prior:           prior,
		AsOf:            now,
		CorrelationESNQ: corr,
		DealersBias:     bias,
		MiaBullish:      bias,
	}
}
