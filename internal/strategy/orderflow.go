package strategy

import "github.com/menthorq/tradecore/internal/types"

// orderflowScore computes BattleNavale's "Vikings vs Defenders" composite
// (spec.md §4.5 step 2): cumulative delta slope over the last 3 bars,
// pressure persistence across that same window, and the current bar's NBCV
// delta-ratio magnitude, folded into a single signed score in [-1, 1].
// Returns false if the current bar carries no NBCV reading at all, matching
// spec.md's "if orderflow inputs are missing, orderflow_score=0" failure mode.
func orderflowScore(history []types.Bar) (float64, bool) {
	if len(history) == 0 {
		return 0, false
	}
	cur := history[len(history)-1]
	if cur.Features.NBCV == nil {
		return 0, false
	}

	window := history
	if len(window) > 3 {
		window = window[len(window)-3:]
	}

	slopeRatio := cumulativeDeltaSlope(window)
	persistence := pressurePersistence(window, cur.Features.NBCV.Pressure)
	ratioMag := clamp(cur.Features.NBCV.DeltaRatio, -1, 1)

	score := 0.4*slopeRatio + 0.3*persistence + 0.3*ratioMag
	return clamp(score, -1, 1), true
}

// cumulativeDeltaSlope returns the change in cumulative delta across window,
// normalized by the window's total traded volume so the result sits roughly
// in [-1, 1] regardless of the bar's absolute size.
func cumulativeDeltaSlope(window []types.Bar) float64 {
	if len(window) < 2 {
		return 0
	}
	var first, last *types.NBCV
	for _, b := range window {
		if b.Features.NBCV != nil {
			if first == nil {
				first = b.Features.NBCV
			}
			last = b.Features.NBCV
		}
	}
	if first == nil || last == nil || first == last {
		return 0
	}
	delta := last.CumulativeDelta - first.CumulativeDelta

	var totalVol float64
	for _, b := range window {
		if b.Features.NBCV != nil {
			totalVol += b.Features.NBCV.AskVolume + b.Features.NBCV.BidVolume
		}
	}
	if totalVol <= 0 {
		return 0
	}
	return clamp(delta/totalVol, -1, 1)
}

// pressurePersistence is the signed fraction of window whose NBCV pressure
// matches the current bar's pressure (spec.md §4.5: "pressure persistence
// over last 3 bars").
func pressurePersistence(window []types.Bar, currentPressure int) float64 {
	if currentPressure == 0 || len(window) == 0 {
		return 0
	}
	matches := 0
	for _, b := range window {
		if b.Features.NBCV != nil && b.Features.NBCV.Pressure == currentPressure {
			matches++
		}
	}
	frac := float64(matches) / float64(len(window))
	if currentPressure < 0 {
		return -frac
	}
	return frac
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
