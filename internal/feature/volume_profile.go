package feature

import "github.com/menthorq/tradecore/internal/types"

// filterVolumeProfile keeps only the high/low volume nodes within ±3% of
// spot (spec.md §4.2: "the engine filters to those within ±3% of spot").
func filterVolumeProfile(r types.VolumeProfileRecord, spot float64) types.VolumeProfile {
	lo, hi := spot*0.97, spot*1.03
	return types.VolumeProfile{
		VPOC: r.VPOC, VAH: r.VAH, VAL: r.VAL,
		HVN: within(r.HVN, lo, hi),
		LVN: within(r.LVN, lo, hi),
	}
}

func within(prices []float64, lo, hi float64) []float64 {
	if len(prices) == 0 {
		return nil
	}
	out := make([]float64, 0, len(prices))
	for _, p := range prices {
		if p >= lo && p <= hi {
			out = append(out, p)
		}
	}
	return out
}
