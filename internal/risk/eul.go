// Package risk implements the Entry/Stop/Target (E/U/L) sizing calculator
// (spec.md §4.9) and the daily risk gates (cooldown, daily loss limit,
// consecutive-loss limit) from spec.md §6's `risk` config block.
package risk

import (
	"sort"

	"github.com/menthorq/tradecore/internal/config"
	"github.com/menthorq/tradecore/internal/types"
)

// roundToTick rounds a price to the nearest tick.
func roundToTick(price, tickSize float64) float64 {
	if tickSize <= 0 {
		return price
	}
	n := price / tickSize
	if n >= 0 {
		n = float64(int64(n + 0.5))
	} else {
		n = -float64(int64(-n + 0.5))
	}
	return n * tickSize
}

// Calculate implements spec.md §4.9's E/U/L algorithm. side must be
// SideLong or SideShort; atr may be unavailable (ok=false) during feature
// warmup, in which case only the structural and min-ticks stop distances
// are considered.
func Calculate(side types.Side, currentPrice, atr float64, atrOK bool, levels types.LevelSet, vixRegime types.VixRegime, tickSize float64, cfg *config.Config) types.EULPlan {
	entry := roundToTick(currentPrice, tickSize)
	sign := 1.0
	if side == types.SideShort {
		sign = -1.0
	}

	sameSide, adverse := splitLevelsBySide(levels, entry, side)

	structuralTicks := 0.0
	if len(sameSide) > 0 {
		nearest := sameSide[0]
		structuralTicks = absf(entry-nearest)/tickSize + 1
	}

	atrTicks := 0.0
	if atrOK {
		k := stopAtrK(cfg, vixRegime)
		atrTicks = k * atr / tickSize
	}

	minTicks := cfg.Sizing.MinStopTicks

	stopTicks := structuralTicks
	if atrTicks > stopTicks {
		stopTicks = atrTicks
	}
	if minTicks > stopTicks {
		stopTicks = minTicks
	}

	stop := roundToTick(entry-sign*stopTicks*tickSize, tickSize)
	riskDist := absf(entry - stop)

	target1Dist := riskDist
	if len(adverse) > 0 {
		cap := absf(entry-adverse[0]) - tickSize
		if cap < target1Dist {
			target1Dist = cap
		}
	}
	if target1Dist < 0 {
		target1Dist = 0
	}
	target1 := roundToTick(entry+sign*target1Dist, tickSize)

	target2Dist := 2.0 * riskDist
	capLevel := 0.0
	capSet := false
	if len(adverse) > 1 {
		capLevel, capSet = adverse[1], true
	} else if len(adverse) > 0 {
		capLevel, capSet = adverse[0], true
	}
	if capSet {
		cap := absf(entry-capLevel) - tickSize
		if cap < target2Dist {
			target2Dist = cap
		}
	}
	if target2Dist < target1Dist {
		target2Dist = target1Dist
	}
	target2 := roundToTick(entry+sign*target2Dist, tickSize)

	return types.EULPlan{
		Entry: entry, Stop: stop,
		Target1: target1, Target2: target2,
		RiskTicks: riskDist / tickSize,
	}
}

func stopAtrK(cfg *config.Config, regime types.VixRegime) float64 {
	if k, ok := cfg.Sizing.StopAtrK[regime.String()]; ok {
		return k
	}
	return 0.8
}

// splitLevelsBySide partitions every level price into "same side" (the
// structural-stop anchor: below entry for LONG, above for SHORT) and
// "adverse side" (the target cap anchor: above entry for LONG, below for
// SHORT), both sorted by distance from entry ascending.
func splitLevelsBySide(levels types.LevelSet, entry float64, side types.Side) (sameSide, adverse []float64) {
	for _, lvl := range levels.Levels {
		switch side {
		case types.SideLong:
			if lvl.Price < entry {
				sameSide = append(sameSide, lvl.Price)
			} else if lvl.Price > entry {
				adverse = append(adverse, lvl.Price)
			}
		case types.SideShort:
			if lvl.Price > entry {
				sameSide = append(sameSide, lvl.Price)
			} else if lvl.Price < entry {
				adverse = append(adverse, lvl.Price)
			}
		}
	}
	sort.Slice(sameSide, func(i, j int) bool { return absf(entry-sameSide[i]) < absf(entry-sameSide[j]) })
	sort.Slice(adverse, func(i, j int) bool { return absf(entry-adverse[i]) < absf(entry-adverse[j]) })
	return sameSide, adverse
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
