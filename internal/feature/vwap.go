package feature

import (
	"math"

	"github.com/menthorq/tradecore/internal/types"
)

// vwapAccumulator computes a running session VWAP and its standard-deviation
// bands from trade prints, used whenever upstream VWAP records are absent
// (spec.md §4.2: "if absent, computed as session_vwap ± k · session_price_stddev").
type vwapAccumulator struct {
	cumPV  float64 // sum(price * volume)
	cumPV2 float64 // sum(price^2 * volume), for a volume-weighted variance
	cumVol float64

	cumulativeDelta float64
}

func (a *vwapAccumulator) addTrade(price, volume float64) {
	if volume <= 0 {
		return
	}
	a.cumPV += price * volume
	a.cumPV2 += price * price * volume
	a.cumVol += volume
}

func (a *vwapAccumulator) bands() types.VWAPBands {
	if a.cumVol <= 0 {
		return types.VWAPBands{}
	}
	vwap := a.cumPV / a.cumVol
	variance := a.cumPV2/a.cumVol - vwap*vwap
	if variance < 0 {
		variance = 0
	}
	sigma := math.Sqrt(variance)
	return types.VWAPBands{
		VWAP: vwap,
		Up1:  vwap + sigma, Dn1: vwap - sigma,
		Up2: vwap + 2*sigma, Dn2: vwap - 2*sigma,
		Up3: vwap + 3*sigma, Dn3: vwap - 3*sigma,
	}
}
